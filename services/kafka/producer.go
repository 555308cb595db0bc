package kafka

import (
	"context"
	"coursehub/config"
	"coursehub/logger"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event topics
const (
	TopicPayments    = "payments"
	TopicEnrollments = "enrollments"
	TopicEmails      = "emails"
)

var (
	producer      *kafka.Writer
	producerMutex sync.Mutex
	isConnected   bool
)

// InitProducer initializes a Kafka writer using brokers from the config
func InitProducer() {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if config.AppConfig.KafkaBrokers == "" {
		logger.Info("Kafka is disabled (KAFKA_BROKERS is empty)")
		return
	}

	brokers := strings.Split(config.AppConfig.KafkaBrokers, ",")

	var validBrokers []string
	for _, b := range brokers {
		if b := strings.TrimSpace(b); b != "" {
			validBrokers = append(validBrokers, b)
		}
	}

	if len(validBrokers) == 0 {
		logger.Warn("No valid Kafka brokers configured")
		return
	}

	ensureTopicsExist(validBrokers)

	producer = &kafka.Writer{
		Addr:         kafka.TCP(validBrokers...),
		Balancer:     &kafka.LeastBytes{},
		Async:        false,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("Kafka producer initialized. Brokers=%v", validBrokers)
	isConnected = true
}

// ensureTopicsExist creates Kafka topics if they don't already exist.
// Runs in a background goroutine to avoid blocking initialization.
func ensureTopicsExist(brokers []string) {
	go func() {
		maxRetries := 5
		for attempt := 0; attempt < maxRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(time.Duration(math.Pow(2, float64(attempt))) * time.Second)
			} else {
				time.Sleep(1 * time.Second)
			}

			conn, err := kafka.Dial("tcp", brokers[0])
			if err != nil {
				if attempt == maxRetries-1 {
					logger.Warn("Could not connect to Kafka broker for topic creation after %d attempts: %v", maxRetries, err)
				}
				continue
			}

			requiredTopics := []string{TopicPayments, TopicEnrollments, TopicEmails}
			if t := strings.TrimSpace(config.AppConfig.KafkaDLQTopic); t != "" {
				found := false
				for _, rt := range requiredTopics {
					if rt == t {
						found = true
						break
					}
				}
				if !found {
					requiredTopics = append(requiredTopics, t)
				}
			}

			successCount := 0
			for _, topic := range requiredTopics {
				err := conn.CreateTopics(kafka.TopicConfig{
					Topic:             topic,
					NumPartitions:     1,
					ReplicationFactor: 1,
				})
				if err != nil {
					if strings.Contains(err.Error(), "already exists") {
						successCount++
					}
				} else {
					successCount++
				}
			}

			conn.Close()

			if successCount >= len(requiredTopics) {
				return
			}
		}
	}()
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publish marshals value to JSON and publishes to the given topic with key.
// Uses exponential backoff retry logic (3 attempts). If Kafka is disabled or
// not initialized, returns nil (best-effort). Messages that exhaust their
// retries are parked in the database DLQ for later replay.
func Publish(topic, key string, value interface{}) error {
	w := activeWriter()
	if w == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("Error marshaling Kafka message: %v", err)
		return err
	}

	return deliver(w, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}

// activeWriter snapshots the producer under the lock. Writes and their
// backoff sleeps happen on the snapshot so one slow broker does not
// serialize every concurrent publisher.
func activeWriter() messageWriter {
	producerMutex.Lock()
	if producer == nil && config.AppConfig.KafkaBrokers != "" {
		producerMutex.Unlock()
		InitProducer()
		producerMutex.Lock()
	}
	w := producer
	producerMutex.Unlock()

	if w == nil || config.AppConfig.KafkaBrokers == "" {
		return nil
	}
	return w
}

func deliver(w messageWriter, msg kafka.Message) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := w.WriteMessages(ctx, msg)
		cancel()

		if err == nil {
			setConnected(true)
			return nil
		}

		lastErr = err
		logger.Warn("Kafka publish attempt %d failed: %v", attempt+1, err)

		if attempt < 2 {
			time.Sleep(time.Duration(math.Pow(2, float64(attempt))) * time.Second)
		}
		setConnected(false)
	}

	logger.Info("Sending failed message to DLQ. Topic: %s, Key: %s", msg.Topic, string(msg.Key))
	if dlqErr := StoreDLQMessage(msg.Topic, string(msg.Key), msg.Value, lastErr.Error()); dlqErr != nil {
		logger.Error("Failed to send message to DLQ: %v", dlqErr)
	}

	return lastErr
}

func setConnected(connected bool) {
	producerMutex.Lock()
	isConnected = connected
	producerMutex.Unlock()
}

// IsConnected returns true if Kafka producer is connected and ready
func IsConnected() bool {
	producerMutex.Lock()
	defer producerMutex.Unlock()
	return isConnected && producer != nil
}

// Close gracefully closes the Kafka producer
func Close() error {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if producer != nil {
		return producer.Close()
	}
	return nil
}
