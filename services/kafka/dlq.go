package kafka

import (
	"coursehub/db"
	"encoding/json"
	"fmt"
	"time"
)

// DLQ message statuses
const (
	DLQStatusFailed   = "FAILED"
	DLQStatusRetried  = "RETRIED"
	DLQStatusResolved = "RESOLVED"
)

// StoreDLQMessage parks a message that could not be published. Database only,
// never re-publishes, so a broken broker cannot recurse into the DLQ itself.
func StoreDLQMessage(topic, key string, payload []byte, errMsg string) error {
	if db.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	_, err := db.DB.Exec(
		"INSERT INTO dlq_messages (topic, key, payload, error, status) VALUES ($1, $2, $3, $4, $5)",
		topic, key, string(payload), errMsg, DLQStatusFailed)
	if err != nil {
		return fmt.Errorf("error storing DLQ message: %w", err)
	}
	return nil
}

// RetryDLQMessage republishes a parked message and marks it retried
func RetryDLQMessage(id int) error {
	if db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	var topic, key, payload string
	err := db.DB.QueryRow(
		"SELECT topic, key, payload FROM dlq_messages WHERE id = $1 AND status = $2",
		id, DLQStatusFailed).Scan(&topic, &key, &payload)
	if err != nil {
		return fmt.Errorf("DLQ message not found: %w", err)
	}

	if err := Publish(topic, key, json.RawMessage(payload)); err != nil {
		return fmt.Errorf("error republishing DLQ message: %w", err)
	}

	_, err = db.DB.Exec("UPDATE dlq_messages SET status = $1 WHERE id = $2", DLQStatusRetried, id)
	return err
}

// DLQMessage is one parked event
type DLQMessage struct {
	ID        int       `json:"id"`
	Topic     string    `json:"topic"`
	Key       string    `json:"key"`
	Payload   string    `json:"payload"`
	Error     string    `json:"error"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListDLQMessages returns unresolved parked messages, newest first
func ListDLQMessages(limit int) ([]DLQMessage, error) {
	if db.DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.DB.Query(
		`SELECT id, topic, key, payload, error, status, created_at FROM dlq_messages
		 WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, DLQStatusFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing DLQ messages: %w", err)
	}
	defer rows.Close()

	messages := []DLQMessage{}
	for rows.Next() {
		var m DLQMessage
		if err := rows.Scan(&m.ID, &m.Topic, &m.Key, &m.Payload, &m.Error, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ResolveDLQMessage marks a parked message as handled without republishing
func ResolveDLQMessage(id int) error {
	if db.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	res, err := db.DB.Exec("UPDATE dlq_messages SET status = $1 WHERE id = $2", DLQStatusResolved, id)
	if err != nil {
		return fmt.Errorf("error resolving DLQ message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("DLQ message %d not found", id)
	}
	return nil
}
