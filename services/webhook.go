package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"coursehub/config"
	"coursehub/db"
	apperrors "coursehub/errors"
	"coursehub/logger"
	"coursehub/metrics"
)

// Gateway webhook event types
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
	EventPaymentFailed   = "payment.failed"
)

// WebhookAuditor records every webhook delivery and its outcome
type WebhookAuditor interface {
	Record(ctx context.Context, eventID, eventType string, payload []byte, signature string, signatureValid bool) error
	UpdateStatus(ctx context.Context, eventID, status, errMsg string) error
}

// WebhookService authenticates and applies gateway webhook deliveries
type WebhookService struct {
	Secret string
	Orders *OrderService
	Audit  WebhookAuditor
}

// NewWebhookService wires the webhook service to the order service and the
// audit table
func NewWebhookService(orders *OrderService) *WebhookService {
	return &WebhookService{
		Secret: config.AppConfig.RazorpayWebhookSecret,
		Orders: orders,
		Audit:  db.NewWebhookStore(db.DB),
	}
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw body against
// the signature header in constant time
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Method  string `json:"method"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// Handle authenticates a webhook delivery against the shared secret and
// applies its event. Unknown events are acknowledged and ignored so the
// gateway does not retry them forever.
func (s *WebhookService) Handle(ctx context.Context, eventID string, body []byte, signature string) error {
	valid := VerifyWebhookSignature(body, signature, s.Secret)

	var event webhookEvent
	parseErr := json.Unmarshal(body, &event)

	eventType := event.Event
	if eventType == "" {
		eventType = "unknown"
	}
	metrics.WebhookEvents.WithLabelValues(eventType).Inc()

	if s.Audit != nil {
		if err := s.Audit.Record(ctx, eventID, eventType, body, signature, valid); err != nil {
			logger.Warn("Failed to record webhook %s: %v", eventID, err)
		}
	}

	if !valid {
		s.conclude(ctx, eventID, db.WebhookStatusFailed, "signature mismatch")
		logger.Warn("Webhook %s rejected: signature mismatch", eventID)
		return apperrors.NewUnauthorizedError("webhook signature mismatch")
	}
	if parseErr != nil {
		s.conclude(ctx, eventID, db.WebhookStatusFailed, "malformed payload")
		return apperrors.E(apperrors.Invalid, "malformed webhook payload", parseErr)
	}

	if err := s.apply(ctx, &event); err != nil {
		s.conclude(ctx, eventID, db.WebhookStatusFailed, apperrors.MessageOf(err))
		return err
	}

	s.conclude(ctx, eventID, db.WebhookStatusCompleted, "")
	return nil
}

func (s *WebhookService) apply(ctx context.Context, event *webhookEvent) error {
	payment := event.Payload.Payment.Entity

	switch event.Event {
	case EventPaymentCaptured:
		_, err := s.Orders.FinalizeGatewayPayment(ctx, payment.OrderID, payment.ID)
		return err

	case EventOrderPaid:
		orderID := event.Payload.Order.Entity.ID
		if orderID == "" {
			orderID = payment.OrderID
		}
		if orderID == "" {
			return apperrors.NewInvalidParamsError("order.paid event missing order id")
		}
		_, err := s.Orders.FinalizeGatewayPayment(ctx, orderID, payment.ID)
		return err

	case EventPaymentFailed:
		if payment.OrderID == "" {
			return apperrors.NewInvalidParamsError("payment.failed event missing order id")
		}
		return s.Orders.FailGatewayPayment(ctx, payment.OrderID, payment.ID)

	default:
		logger.Debug("Ignoring webhook event %s", event.Event)
		return nil
	}
}

func (s *WebhookService) conclude(ctx context.Context, eventID, status, errMsg string) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.UpdateStatus(ctx, eventID, status, errMsg); err != nil {
		logger.Warn("Failed to update webhook %s status: %v", eventID, err)
	}
}
