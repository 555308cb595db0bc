package main

import (
	"log"
	netHttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"coursehub/cache"
	"coursehub/config"
	"coursehub/db"
	"coursehub/http"
	"coursehub/logger"
	"coursehub/metrics"
	"coursehub/services/kafka"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := db.InitDB(); err != nil {
		logger.Fatal("Error initializing database: %v", err)
	}

	// Initialize Kafka producer (non-fatal)
	kafka.InitProducer()

	// Initialize Redis cache (non-fatal)
	cache.Init()

	// Register Prometheus collectors
	metrics.Register()

	// Setup routes
	http.SetupRoutes()

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		addr := config.AppConfig.ServerAddr
		logger.Info("Server starting on %s", addr)
		log.Fatal(netHttp.ListenAndServe(addr, nil))
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received, closing connections...")

	if err := kafka.Close(); err != nil {
		logger.Error("Error closing Kafka producer: %v", err)
	}
	cache.Close()

	logger.Info("Server shutdown complete")
}
