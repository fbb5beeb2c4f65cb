// Package kafka carries pricing batches over Kafka: a consumer pulls
// request batches, the worker prices them, a producer publishes results.
package kafka

import (
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// Config holds the connection and topic settings
type Config struct {
	Brokers      []string
	GroupID      string
	RequestTopic string
	ResultTopic  string
	BatchSize    int
	BatchTimeout time.Duration
	MinBytes     int
	MaxBytes     int
}

// DefaultConfig returns the local development defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		GroupID:      "option-engine",
		RequestTopic: "pricing.requests",
		ResultTopic:  "pricing.results",
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
		MinBytes:     1,
		MaxBytes:     10 << 20,
	}
}

// Client builds readers and writers against a shared broker configuration
type Client struct {
	config *Config
	log    *logger.Logger
}

// NewClient creates a new Kafka client
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		config: config,
		log:    logger.GetLogger("kafka.client"),
	}
}

// NewConsumer creates a consumer on the given topic within the client's
// consumer group
func (c *Client) NewConsumer(topic string) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  c.config.Brokers,
		GroupID:  c.config.GroupID,
		Topic:    topic,
		MinBytes: c.config.MinBytes,
		MaxBytes: c.config.MaxBytes,
	})
	return &Consumer{
		reader: reader,
		log:    c.log.With("topic", topic),
	}
}

// NewProducer creates a producer on the given topic
func (c *Client) NewProducer(topic string) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(c.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchSize:    c.config.BatchSize,
		BatchTimeout: c.config.BatchTimeout,
		RequiredAcks: kafkago.RequireAll,
	}
	return &Producer{
		writer: writer,
		log:    c.log.With("topic", topic),
	}
}
