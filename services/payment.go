package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"coursehub/config"
	"coursehub/db"
	apperrors "coursehub/errors"
	"coursehub/logger"
	"coursehub/metrics"
	"coursehub/models"
	"coursehub/services/kafka"
)

// OrderStore is the persistence the order service depends on
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) (int, error)
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	MarkPaid(ctx context.Context, id int, paymentID, signature string, paidAt time.Time) error
	MarkFailed(ctx context.Context, id int, paymentID string) error
}

// PaymentGateway creates remote payment intents
type PaymentGateway interface {
	CreateIntent(amountInPaise int64, currency, receipt string, notes map[string]interface{}) (string, error)
}

// AccessGranter enrolls a buyer after a successful payment
type AccessGranter interface {
	Grant(ctx context.Context, g models.CourseGrant) error
}

// OrderService orchestrates order creation and payment reconciliation
type OrderService struct {
	Orders  OrderStore
	Gateway PaymentGateway
	Access  AccessGranter

	KeyID     string
	KeySecret string

	// Publish is best-effort event delivery; nil disables it
	Publish func(topic, key string, value interface{}) error
	// Notify runs post-payment side effects (receipt, email); nil disables it
	Notify func(order *models.Order)
}

// NewOrderService wires the service with database-backed stores and the
// Razorpay gateway
func NewOrderService() *OrderService {
	return &OrderService{
		Orders:    db.NewOrderStore(db.DB),
		Gateway:   NewRazorpayGateway(),
		Access:    db.NewAccessStore(db.DB),
		KeyID:     config.AppConfig.RazorpayKeyID,
		KeySecret: config.AppConfig.RazorpayKeySecret,
		Publish:   kafka.Publish,
		Notify:    SendEnrollmentConfirmation,
	}
}

// AmountInPaise converts a major-unit price to the gateway's minor units
func AmountInPaise(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ComputeSignature returns the hex HMAC-SHA256 over "orderID|paymentID"
func ComputeSignature(razorpayOrderID, razorpayPaymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(razorpayOrderID + "|" + razorpayPaymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature compares the expected digest with the one supplied by the
// client in constant time
func VerifySignature(razorpayOrderID, razorpayPaymentID, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := ComputeSignature(razorpayOrderID, razorpayPaymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CreateOrderRequest carries everything needed to open a purchase attempt
type CreateOrderRequest struct {
	UserID         int     `json:"userId"`
	UserName       string  `json:"userName"`
	UserEmail      string  `json:"userEmail"`
	CourseID       int     `json:"courseId"`
	CourseTitle    string  `json:"courseTitle"`
	CourseImage    string  `json:"courseImage"`
	CoursePricing  float64 `json:"coursePricing"`
	InstructorID   int     `json:"instructorId"`
	InstructorName string  `json:"instructorName"`
}

func (r CreateOrderRequest) validate() error {
	switch {
	case r.UserID == 0:
		return apperrors.NewInvalidParamsError("userId is required")
	case r.UserEmail == "":
		return apperrors.NewInvalidParamsError("userEmail is required")
	case r.CourseID == 0:
		return apperrors.NewInvalidParamsError("courseId is required")
	case r.CourseTitle == "":
		return apperrors.NewInvalidParamsError("courseTitle is required")
	case r.CoursePricing <= 0:
		return apperrors.NewInvalidParamsError("coursePricing must be greater than 0")
	case r.InstructorID == 0:
		return apperrors.NewInvalidParamsError("instructorId is required")
	}
	return nil
}

// CreateOrderResponse is what the client needs to launch the payment UI
type CreateOrderResponse struct {
	RazorpayOrderID string `json:"razorpayOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Receipt         string `json:"receipt"`
	OrderID         int    `json:"orderId"`
	Key             string `json:"key"`
}

// CreateOrder creates the gateway payment intent and persists a pending order
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	amountInPaise := AmountInPaise(req.CoursePricing)
	receipt := fmt.Sprintf("receipt_%d_%d_%d", req.CourseID, req.UserID, time.Now().UnixMilli())

	notes := map[string]interface{}{
		"courseId":    req.CourseID,
		"userId":      req.UserID,
		"courseTitle": req.CourseTitle,
	}

	razorpayOrderID, err := s.Gateway.CreateIntent(amountInPaise, "INR", receipt, notes)
	if err != nil {
		logger.Error("Gateway order creation failed for user %d, course %d: %v", req.UserID, req.CourseID, err)
		return nil, apperrors.E(apperrors.Gateway, "error while creating razorpay order", err)
	}

	order := &models.Order{
		UserID:          req.UserID,
		UserName:        req.UserName,
		UserEmail:       req.UserEmail,
		CourseID:        req.CourseID,
		CourseTitle:     req.CourseTitle,
		CourseImage:     req.CourseImage,
		CoursePricing:   req.CoursePricing,
		InstructorID:    req.InstructorID,
		InstructorName:  req.InstructorName,
		OrderStatus:     models.OrderStatusCreated,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   "razorpay",
		Currency:        "INR",
		AmountInPaise:   amountInPaise,
		RazorpayOrderID: razorpayOrderID,
		Receipt:         receipt,
		OrderDate:       time.Now().UTC(),
	}

	orderID, err := s.Orders.Create(ctx, order)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error saving order", err)
	}
	order.ID = orderID

	metrics.OrdersCreated.Inc()
	logger.Info("Order %d created - user %d, course %d, amount %d paise, gateway order %s",
		orderID, req.UserID, req.CourseID, amountInPaise, razorpayOrderID)

	s.publishAsync(kafka.TopicPayments, fmt.Sprintf("order-%d", orderID), map[string]interface{}{
		"event":    "payment.initiated",
		"orderId":  orderID,
		"userId":   req.UserID,
		"courseId": req.CourseID,
		"amount":   amountInPaise,
		"currency": "INR",
		"status":   models.PaymentStatusPending,
		"ts":       time.Now().UTC().Format(time.RFC3339),
	})

	return &CreateOrderResponse{
		RazorpayOrderID: razorpayOrderID,
		Amount:          amountInPaise,
		Currency:        "INR",
		Receipt:         receipt,
		OrderID:         orderID,
		Key:             s.KeyID,
	}, nil
}

// VerifyPaymentRequest is the client-side payment confirmation
type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           int    `json:"orderId"`
}

// VerifyAndFinalize checks the gateway signature and, on the first valid
// confirmation, marks the order paid and grants course access. Safe to call
// any number of times with the same payment id: once paid, the stored order
// is returned unchanged and no second grant happens.
func (s *OrderService) VerifyAndFinalize(ctx context.Context, req VerifyPaymentRequest) (*models.Order, error) {
	if req.RazorpayPaymentID == "" || req.RazorpayOrderID == "" || req.RazorpaySignature == "" {
		return nil, apperrors.NewInvalidParamsError("payment id, order id and signature are required")
	}

	if !VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.KeySecret) {
		metrics.PaymentRejections.Inc()
		logger.Warn("Payment signature mismatch - order %d, gateway order %s, payment %s",
			req.OrderID, req.RazorpayOrderID, req.RazorpayPaymentID)
		return nil, apperrors.NewPaymentRejectedError("Payment verification failed")
	}

	order, err := s.Orders.GetByID(ctx, req.OrderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, apperrors.E(apperrors.Internal, "error loading order", err)
	}

	// A valid signature for some other checkout must not finalize this order.
	if order.RazorpayOrderID != req.RazorpayOrderID {
		metrics.PaymentRejections.Inc()
		logger.Warn("Gateway order id mismatch - order %d has %s, request carried %s",
			order.ID, order.RazorpayOrderID, req.RazorpayOrderID)
		return nil, apperrors.NewPaymentRejectedError("Payment verification failed")
	}

	if order.IsPaymentSuccessful() {
		logger.Info("Order %d already paid, returning stored state", order.ID)
		return order, nil
	}

	if err := s.finalize(ctx, order, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		return nil, err
	}
	return order, nil
}

// FinalizeGatewayPayment settles an order from a gateway-side confirmation
// (webhook). The webhook carries no checkout signature, but the signature is
// a deterministic digest of the order and payment ids, so it is recomputed
// here to keep paid orders fully populated. Idempotent like
// VerifyAndFinalize.
func (s *OrderService) FinalizeGatewayPayment(ctx context.Context, razorpayOrderID, paymentID string) (*models.Order, error) {
	order, err := s.Orders.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, apperrors.E(apperrors.Internal, "error loading order", err)
	}

	if order.IsPaymentSuccessful() {
		logger.Info("Order %d already paid, webhook confirmation is a no-op", order.ID)
		return order, nil
	}

	signature := ComputeSignature(order.RazorpayOrderID, paymentID, s.KeySecret)
	if err := s.finalize(ctx, order, paymentID, signature); err != nil {
		return nil, err
	}
	return order, nil
}

// FailGatewayPayment records a failed payment reported by the gateway. A paid
// order is never downgraded.
func (s *OrderService) FailGatewayPayment(ctx context.Context, razorpayOrderID, paymentID string) error {
	order, err := s.Orders.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NewNotFoundError("Order not found")
		}
		return apperrors.E(apperrors.Internal, "error loading order", err)
	}
	if order.IsPaymentSuccessful() {
		logger.Warn("Ignoring payment.failed for already paid order %d", order.ID)
		return nil
	}
	if err := s.Orders.MarkFailed(ctx, order.ID, paymentID); err != nil {
		return apperrors.E(apperrors.Internal, "error updating order", err)
	}
	logger.Info("Order %d marked failed - gateway order %s, payment %s", order.ID, razorpayOrderID, paymentID)
	return nil
}

// finalize marks the order paid, grants access and emits events. The caller
// has already authenticated the confirmation.
func (s *OrderService) finalize(ctx context.Context, order *models.Order, paymentID, signature string) error {
	paidAt := time.Now().UTC()
	if err := s.Orders.MarkPaid(ctx, order.ID, paymentID, signature, paidAt); err != nil {
		return apperrors.E(apperrors.Internal, "error updating order", err)
	}

	order.PaymentStatus = models.PaymentStatusPaid
	order.OrderStatus = models.OrderStatusConfirmed
	order.RazorpayPaymentID = paymentID
	order.RazorpaySignature = signature
	order.PaymentDate = &paidAt

	metrics.PaymentsVerified.Inc()
	logger.Info("Payment verified - order %d, user %d, course %d", order.ID, order.UserID, order.CourseID)

	grant := models.CourseGrant{
		UserID:         order.UserID,
		UserName:       order.UserName,
		UserEmail:      order.UserEmail,
		CourseID:       order.CourseID,
		CourseTitle:    order.CourseTitle,
		CourseImage:    order.CourseImage,
		InstructorID:   order.InstructorID,
		InstructorName: order.InstructorName,
		PricePaid:      order.CoursePricing,
		PurchaseDate:   order.OrderDate,
	}
	if err := s.Access.Grant(ctx, grant); err != nil {
		// The order is durably paid at this point. Losing the grant silently
		// would take the buyer's money without the course, so this is reported
		// loudly for manual reconciliation.
		metrics.GrantFailures.Inc()
		logger.Error("PARTIAL FAILURE: order %d is paid but access grant failed (user %d, course %d): %v",
			order.ID, order.UserID, order.CourseID, err)
	} else {
		s.publishAsync(kafka.TopicEnrollments, fmt.Sprintf("user-%d", order.UserID), map[string]interface{}{
			"event":    "enrollment.completed",
			"orderId":  order.ID,
			"userId":   order.UserID,
			"courseId": order.CourseID,
			"ts":       paidAt.Format(time.RFC3339),
		})
	}

	s.publishAsync(kafka.TopicPayments, fmt.Sprintf("order-%d", order.ID), map[string]interface{}{
		"event":     "payment.verified",
		"orderId":   order.ID,
		"userId":    order.UserID,
		"courseId":  order.CourseID,
		"paymentId": paymentID,
		"status":    models.PaymentStatusPaid,
		"ts":        paidAt.Format(time.RFC3339),
	})

	if s.Notify != nil {
		orderCopy := *order
		go s.Notify(&orderCopy)
	}

	return nil
}

// GetOrder fetches an order by its local id
func (s *OrderService) GetOrder(ctx context.Context, orderID int) (*models.Order, error) {
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, apperrors.E(apperrors.Internal, "error loading order", err)
	}
	return order, nil
}

func (s *OrderService) publishAsync(topic, key string, value map[string]interface{}) {
	if s.Publish == nil {
		return
	}
	publish := s.Publish
	go func() {
		if err := publish(topic, key, value); err != nil {
			logger.Warn("Failed to publish %s event: %v", value["event"], err)
		}
	}()
}
