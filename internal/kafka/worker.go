package kafka

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/quantkit/option-engine/internal/engine"
	"github.com/quantkit/option-engine/pkg/metrics"
	"github.com/quantkit/option-engine/pkg/models"
	"github.com/quantkit/option-engine/pkg/utils/errors"
	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// Worker consumes pricing requests from the request topic and publishes
// results to the result topic. Malformed or invalid requests are committed
// and skipped; redelivering them cannot succeed.
type Worker struct {
	consumer *Consumer
	producer *Producer
	engine   *engine.Engine
	rec      *metrics.Recorder
	cfg      *Config
	log      *logger.Logger
}

// NewWorker wires a worker against the client's configured topics. rec may
// be nil.
func NewWorker(client *Client, eng *engine.Engine, rec *metrics.Recorder) *Worker {
	return &Worker{
		consumer: client.NewConsumer(client.config.RequestTopic),
		producer: client.NewProducer(client.config.ResultTopic),
		engine:   eng,
		rec:      rec,
		cfg:      client.config,
		log:      logger.GetLogger("kafka.worker"),
	}
}

// Run consumes until the context ends
func (w *Worker) Run(ctx context.Context) error {
	w.log.Infof("Worker consuming from %s", w.cfg.RequestTopic)
	return w.consumer.Consume(ctx, w.handle)
}

func (w *Worker) handle(ctx context.Context, msg kafkago.Message) error {
	if w.rec != nil {
		w.rec.RecordKafkaLag(w.cfg.RequestTopic, w.cfg.GroupID, w.consumer.Lag())
	}

	var req models.PriceBatchRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		w.log.Errorf("Dropping malformed request at offset %d: %v", msg.Offset, err)
		return nil
	}

	kind, in, err := req.ToBatchInput()
	if err != nil {
		w.log.Warnf("Dropping invalid request %q: %v", req.ID, err)
		return nil
	}

	res, err := w.engine.PriceBatch(ctx, kind, in, req.Greeks)
	if err != nil {
		if errors.IsValidation(err) {
			w.log.Warnf("Dropping invalid request %q: %v", req.ID, err)
			return nil
		}
		return err
	}

	out, err := json.Marshal(models.PriceBatchResponse{
		ID:     req.ID,
		Model:  kind.String(),
		Result: res,
	})
	if err != nil {
		return err
	}
	return w.producer.Publish(ctx, []byte(req.ID), out)
}

// Close releases the worker's Kafka connections
func (w *Worker) Close() error {
	cerr := w.consumer.Close()
	perr := w.producer.Close()
	if cerr != nil {
		return cerr
	}
	return perr
}
