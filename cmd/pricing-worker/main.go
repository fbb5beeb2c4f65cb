package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/quantkit/option-engine/config"
	"github.com/quantkit/option-engine/internal/engine"
	"github.com/quantkit/option-engine/internal/kafka"
	"github.com/quantkit/option-engine/pkg/metrics"
	"github.com/quantkit/option-engine/pkg/utils/logger"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger("pricing-worker.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("pricing-worker.main")
	log.Infof("Starting %s Kafka worker", cfg.App.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	eng := engine.New(engine.Config{
		Workers:             cfg.Engine.Workers,
		ChunkSize:           cfg.Engine.ChunkSize,
		SequentialThreshold: cfg.Engine.SequentialThreshold,
		VectorizedThreshold: cfg.Engine.VectorizedThreshold,
		GreekBump:           cfg.Engine.GreekBump,
		MertonLambda:        cfg.Engine.MertonLambda,
		MertonMeanJump:      cfg.Engine.MertonMeanJump,
		MertonJumpVol:       cfg.Engine.MertonJumpVol,
		AmericanTol:         cfg.Engine.AmericanTol,
		AmericanMaxIter:     cfg.Engine.AmericanMaxIter,
		IVMaxIter:           cfg.Engine.IVMaxIter,
	}, recorder)

	client := kafka.NewClient(&kafka.Config{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		RequestTopic: cfg.Kafka.RequestTopic,
		ResultTopic:  cfg.Kafka.ResultTopic,
		BatchSize:    cfg.Kafka.BatchSize,
		BatchTimeout: cfg.Kafka.BatchTimeout,
	})

	worker := kafka.NewWorker(client, eng, recorder)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		return worker.Close()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Errorf("Worker exited with error: %v", err)
	}

	engine.SharedPool().Shutdown()
	log.Info("Shutdown complete")
}
