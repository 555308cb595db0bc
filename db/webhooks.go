package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Webhook processing statuses
const (
	WebhookStatusReceived  = "RECEIVED"
	WebhookStatusCompleted = "COMPLETED"
	WebhookStatusFailed    = "FAILED"
)

// WebhookStore audits every gateway webhook delivery
type WebhookStore struct {
	db *sql.DB
}

func NewWebhookStore(database *sql.DB) *WebhookStore {
	return &WebhookStore{db: database}
}

// Record stores an incoming webhook before it is processed
func (s *WebhookStore) Record(ctx context.Context, eventID, eventType string, payload []byte, signature string, signatureValid bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO webhook_events (event_id, event_type, payload, signature, signature_valid)
		 VALUES ($1, $2, $3, $4, $5)`,
		eventID, eventType, string(payload), signature, signatureValid)
	if err != nil {
		return fmt.Errorf("error recording webhook event: %w", err)
	}
	return nil
}

// UpdateStatus records the processing outcome of a webhook
func (s *WebhookStore) UpdateStatus(ctx context.Context, eventID, status, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE webhook_events SET status = $1, error = $2 WHERE event_id = $3",
		status, errMsg, eventID)
	if err != nil {
		return fmt.Errorf("error updating webhook status: %w", err)
	}
	return nil
}
