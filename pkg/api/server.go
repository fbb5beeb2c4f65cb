// Package api exposes the pricing engine over HTTP: batch pricing and
// implied-volatility endpoints, health and metrics, plus the WebSocket
// summary feed.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quantkit/option-engine/internal/engine"
	"github.com/quantkit/option-engine/internal/stream"
	"github.com/quantkit/option-engine/pkg/metrics"
	"github.com/quantkit/option-engine/pkg/utils/backpressure"
	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	Environment    string
}

// Server is the HTTP front of the engine
type Server struct {
	cfg      ServerConfig
	handlers *Handlers
	rec      *metrics.Recorder
	hub      *stream.Hub
	srv      *http.Server
	log      *logger.Logger
}

// NewServer wires the router; rec and hub may be nil
func NewServer(cfg ServerConfig, eng *engine.Engine, rec *metrics.Recorder, hub *stream.Hub) *Server {
	s := &Server{
		cfg:      cfg,
		handlers: CreateHandlers(eng, hub),
		rec:      rec,
		hub:      hub,
		log:      logger.GetLogger("api.server"),
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ErrorMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(CORSMiddleware())
	if rec != nil {
		router.Use(MetricsMiddleware(rec))
	}

	router.GET("/health", s.handlers.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			hub.ServeWS(c.Writer, c.Request)
		})
	}

	v1 := router.Group("/api/v1")
	if cfg.RateLimitRPS > 0 {
		limiter := backpressure.NewTokenBucketLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		v1.Use(RateLimitMiddleware(limiter))
	}
	v1.POST("/price/batch", s.handlers.PriceBatchHandler)
	v1.POST("/vol/implied", s.handlers.ImpliedVolHandler)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start blocks serving requests until the listener fails or Shutdown runs
func (s *Server) Start() error {
	s.log.Infof("Starting API server on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down API server")
	return s.srv.Shutdown(ctx)
}
