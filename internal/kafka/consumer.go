package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// Handler processes one message. A returned error leaves the offset
// uncommitted so the message is redelivered.
type Handler func(ctx context.Context, msg kafkago.Message) error

// Consumer wraps a group reader with an at-least-once consume loop
type Consumer struct {
	reader *kafkago.Reader
	log    *logger.Logger
}

// Consume pulls messages until the context ends, committing after each
// successful handle
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if err := handler(ctx, msg); err != nil {
			c.log.Errorf("Handler failed at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Errorf("Commit failed at offset %d: %v", msg.Offset, err)
		}
	}
}

// Lag returns the consumer's current lag estimate
func (c *Consumer) Lag() int64 {
	return c.reader.Lag()
}

// Close releases the reader's connections
func (c *Consumer) Close() error {
	return c.reader.Close()
}
