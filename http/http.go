package http

import (
	"net/http"

	"coursehub/http/handlers"
	"coursehub/http/middleware"
	"coursehub/logger"
	"coursehub/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires every endpoint onto the default mux
func SetupRoutes() {
	orderService := services.NewOrderService()

	authHandler := handlers.NewAuthHandler(services.NewAuthService())
	courseService := services.NewCourseService()
	instructorHandler := handlers.NewInstructorCourseHandler(courseService)
	studentHandler := handlers.NewStudentCourseHandler(courseService)
	orderHandler := handlers.NewOrderHandler(orderService, services.NewAnalyticsService())
	webhookHandler := handlers.NewWebhookHandler(services.NewWebhookService(orderService))
	progressHandler := handlers.NewProgressHandler(services.NewProgressService())

	mediaService, err := services.NewMediaService()
	if err != nil {
		logger.Warn("Media service unavailable: %v", err)
	}

	cors := middleware.EnableCORS
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return cors(middleware.RequireAuth(h))
	}

	// Auth
	http.HandleFunc("POST /auth/register", cors(authHandler.Register))
	http.HandleFunc("POST /auth/login", cors(authHandler.Login))
	http.HandleFunc("POST /auth/google", cors(authHandler.GoogleLogin))
	http.HandleFunc("GET /auth/check-user", cors(authHandler.CheckUser))
	http.HandleFunc("GET /auth/check", auth(authHandler.CheckAuth))

	// Media
	if mediaService != nil {
		mediaHandler := handlers.NewMediaHandler(mediaService)
		http.HandleFunc("POST /media/upload", auth(mediaHandler.Upload))
		http.HandleFunc("DELETE /media/delete/{publicId}", auth(mediaHandler.Delete))
		http.HandleFunc("POST /media/bulk-upload", auth(mediaHandler.BulkUpload))
	}

	// Instructor courses
	http.HandleFunc("POST /instructor/course/add", auth(instructorHandler.Add))
	http.HandleFunc("GET /instructor/course/get", auth(instructorHandler.List))
	http.HandleFunc("GET /instructor/course/get/details/{id}", auth(instructorHandler.GetDetails))
	http.HandleFunc("PUT /instructor/course/update/{id}", auth(instructorHandler.Update))
	http.HandleFunc("GET /instructor/course/{id}/roster.xlsx", auth(instructorHandler.ExportRoster))

	// Student catalog
	http.HandleFunc("GET /student/course/get", cors(studentHandler.Browse))
	http.HandleFunc("GET /student/course/get/details/{id}", cors(studentHandler.GetDetails))
	http.HandleFunc("GET /student/course/purchase-info/{id}/{studentId}", auth(studentHandler.PurchaseInfo))
	http.HandleFunc("GET /student/courses-bought/get/{studentId}", auth(studentHandler.CoursesBought))

	// Orders & payments
	http.HandleFunc("POST /orders/create", auth(orderHandler.Create))
	http.HandleFunc("POST /orders/verify", auth(orderHandler.Verify))
	http.HandleFunc("GET /orders/order/{orderId}", auth(orderHandler.Get))
	http.HandleFunc("GET /orders/order/{orderId}/refund-info", auth(orderHandler.GetRefundInfo))
	http.HandleFunc("GET /orders/analytics", auth(orderHandler.GetAnalytics))

	// Gateway webhooks authenticate with their own shared secret, not a JWT.
	http.HandleFunc("POST /webhooks/razorpay", webhookHandler.Razorpay)

	// Course progress
	http.HandleFunc("POST /student/course-progress/mark-lecture-viewed", auth(progressHandler.MarkLectureViewed))
	http.HandleFunc("GET /student/course-progress/get/{userId}/{courseId}", auth(progressHandler.Get))
	http.HandleFunc("POST /student/course-progress/reset-progress", auth(progressHandler.Reset))

	// Operations
	http.HandleFunc("GET /admin/dlq/messages", auth(handlers.ListDLQMessages))
	http.HandleFunc("POST /admin/dlq/messages/{id}/retry", auth(handlers.RetryDLQMessage))
	http.HandleFunc("POST /admin/dlq/messages/{id}/resolve", auth(handlers.ResolveDLQMessage))
	http.Handle("GET /metrics", promhttp.Handler())
}
