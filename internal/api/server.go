// Package api implements the HTTP API for the price tracker.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/pricetracker/internal/api/middleware"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/metrics"
)

const defaultShutdownTimeout = 10 * time.Second

// Config holds the HTTP server settings.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Debug        bool
}

// Server represents the API server.
type Server struct {
	config  *Config
	engine  *gin.Engine
	logger  logger.Interface
	metrics *metrics.Metrics

	products      *ProductsHandler
	alerts        *AlertsHandler
	parserConfigs *ParserConfigsHandler

	httpServer *http.Server
}

// NewServer creates a new API server instance and registers its routes.
func NewServer(
	config *Config,
	products *ProductsHandler,
	alerts *AlertsHandler,
	parserConfigs *ParserConfigsHandler,
	trackerMetrics *metrics.Metrics,
	log logger.Interface,
) *Server {
	if config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:        config,
		engine:        gin.New(),
		logger:        log.WithComponent("api"),
		metrics:       trackerMetrics,
		products:      products,
		alerts:        alerts,
		parserConfigs: parserConfigs,
	}
	s.registerRoutes()
	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.RequestLogger(s.logger))
	s.engine.Use(middleware.Recovery(s.logger))

	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", s.readMetrics)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/products", s.products.Create)
		v1.GET("/products", s.products.List)
		v1.GET("/products/:id", s.products.Get)
		v1.PUT("/products/:id", s.products.Update)
		v1.DELETE("/products/:id", s.products.Delete)
		v1.POST("/products/:id/pause", s.products.Pause)
		v1.POST("/products/:id/resume", s.products.Resume)
		v1.POST("/products/:id/check", s.products.CheckNow)
		v1.GET("/products/:id/history", s.products.History)
		v1.GET("/products/:id/stats", s.products.Stats)

		v1.GET("/alerts", s.alerts.List)
		v1.POST("/alerts/:id/read", s.alerts.MarkRead)
		v1.POST("/alerts/:id/dismiss", s.alerts.Dismiss)

		v1.GET("/parser-configs", s.parserConfigs.List)
		v1.PUT("/parser-configs/:domain", s.parserConfigs.Upsert)
		v1.DELETE("/parser-configs/:domain", s.parserConfigs.Delete)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.Read())
}

// Start runs the HTTP server until the context is cancelled, then shuts
// it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "address", s.config.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("API server stopped")
		return ctx.Err()
	}
}
