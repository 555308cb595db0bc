package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type blockingWriter struct {
	started chan struct{}
	release chan struct{}
}

func (w *blockingWriter) WriteMessages(_ context.Context, _ ...kafka.Message) error {
	close(w.started)
	<-w.release
	return nil
}

func TestDeliverDoesNotHoldProducerLock(t *testing.T) {
	w := &blockingWriter{started: make(chan struct{}), release: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		done <- deliver(w, kafka.Message{Topic: TopicPayments, Key: []byte("order-1"), Value: []byte("{}")})
	}()
	<-w.started

	// IsConnected takes the producer lock; it must return while a write is
	// still in flight.
	connected := make(chan bool, 1)
	go func() { connected <- IsConnected() }()
	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("producer lock held during an in-flight write")
	}

	close(w.release)
	require.NoError(t, <-done)
}
