package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// Producer wraps a topic writer
type Producer struct {
	writer *kafkago.Writer
	log    *logger.Logger
}

// Publish writes one message, blocking until the broker acknowledges it
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   key,
		Value: value,
	})
}

// Close flushes pending batches and releases connections
func (p *Producer) Close() error {
	return p.writer.Close()
}
