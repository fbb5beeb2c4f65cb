package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/quantkit/option-engine/config"
	"github.com/quantkit/option-engine/internal/engine"
	"github.com/quantkit/option-engine/internal/stream"
	"github.com/quantkit/option-engine/pkg/api"
	"github.com/quantkit/option-engine/pkg/metrics"
	"github.com/quantkit/option-engine/pkg/utils/logger"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger("pricing-server.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("pricing-server.main")
	log.Infof("Starting %s API server", cfg.App.Name)

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

	hub := stream.NewHub()

	server := api.NewServer(api.ServerConfig{
		Host:           cfg.API.Host,
		Port:           cfg.API.Port,
		ReadTimeout:    cfg.API.ReadTimeout,
		WriteTimeout:   cfg.API.WriteTimeout,
		RateLimitRPS:   cfg.API.RateLimit,
		RateLimitBurst: cfg.API.RateLimitBurst,
		Environment:    cfg.App.Environment,
	}, eng, recorder, hub)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Errorf("Server exited with error: %v", err)
	}

	engine.SharedPool().Shutdown()
	log.Info("Shutdown complete")
}
