// Package broadcast forwards coordination events to an external transport.
// It sits outside the engine core: it consumes the bus contract verbatim and
// publishes every event to a single topic, with no per-event scoping.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/swarmboard/swarmboard/internal/bus"
)

const writeTimeout = 5 * time.Second

// Forwarder publishes bus events to a Kafka topic.
type Forwarder struct {
	writer *kafka.Writer
}

// NewForwarder creates a forwarder for the given comma-separated broker list
// and topic.
func NewForwarder(brokers, topic string) *Forwarder {
	return &Forwarder{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Attach subscribes the forwarder to the bus. Delivery failures are logged
// and dropped; the engine never blocks on the broadcast transport.
func (f *Forwarder) Attach(b *bus.Bus) {
	b.Subscribe(f.forward)
}

func (f *Forwarder) forward(evt *bus.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Warn("broadcast: encode event", "type", evt.Type, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err = f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Type),
		Value: data,
		Time:  evt.Timestamp,
	})
	if err != nil {
		slog.Warn("broadcast: publish event", "type", evt.Type, "id", evt.ID, "error", err)
	}
}

// Close shuts down the underlying writer.
func (f *Forwarder) Close() error {
	return f.writer.Close()
}
