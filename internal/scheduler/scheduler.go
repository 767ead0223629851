// Package scheduler periodically finds products whose check interval
// has elapsed and dispatches checks for them with bounded concurrency.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
)

// Defaults for the scheduling loop.
const (
	DefaultTickInterval  = time.Minute
	DefaultMaxConcurrent = 5
	DefaultBatchLimit    = 50
)

// ProductSource lists products due for a check.
type ProductSource interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Product, error)
}

// Checker runs one product check end to end.
type Checker interface {
	CheckProduct(ctx context.Context, product *domain.Product, source string) error
}

// Config controls the scheduling loop.
type Config struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	BatchLimit    int           `mapstructure:"batch_limit"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		TickInterval:  DefaultTickInterval,
		MaxConcurrent: DefaultMaxConcurrent,
		BatchLimit:    DefaultBatchLimit,
	}
}

// Scheduler drives the check loop. A product is dispatched at most once
// concurrently: a slow check never piles up duplicate work for the same
// product.
type Scheduler struct {
	source  ProductSource
	checker Checker
	config  *Config
	logger  logger.Interface

	sem chan struct{}
	wg  sync.WaitGroup

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// New creates a Scheduler.
func New(source ProductSource, checker Checker, config *Config, log logger.Interface) *Scheduler {
	if config == nil {
		config = NewConfig()
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	if config.BatchLimit <= 0 {
		config.BatchLimit = DefaultBatchLimit
	}
	return &Scheduler{
		source:   source,
		checker:  checker,
		config:   config,
		logger:   log.WithComponent("scheduler"),
		sem:      make(chan struct{}, config.MaxConcurrent),
		inFlight: make(map[int64]struct{}),
	}
}

// Run executes the scheduling loop until the context is cancelled, then
// waits for in-flight checks to finish. The first pass runs immediately
// rather than after the first tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started",
		"tick_interval", s.config.TickInterval,
		"max_concurrent", s.config.MaxConcurrent)

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping, draining in-flight checks")
			s.wg.Wait()
			s.logger.Info("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick queries due products and dispatches each one that is not already
// being checked.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	products, err := s.source.ListDue(ctx, now, s.config.BatchLimit)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Failed to list due products", "error", err)
		}
		return
	}
	if len(products) == 0 {
		return
	}
	s.logger.Debug("Dispatching due products", "count", len(products))

	for _, product := range products {
		if ctx.Err() != nil {
			return
		}
		s.dispatch(ctx, product)
	}
}

// dispatch hands one check to a worker goroutine. Products already in
// flight are skipped; the next tick will pick them up if they are still
// due. The worker waits for its semaphore slot itself, so a saturated
// pool never stalls the tick loop.
func (s *Scheduler) dispatch(ctx context.Context, product *domain.Product) {
	s.mu.Lock()
	if _, busy := s.inFlight[product.ID]; busy {
		s.mu.Unlock()
		return
	}
	s.inFlight[product.ID] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(product.ID)

		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-s.sem }()

		if err := s.checker.CheckProduct(ctx, product, domain.ObservationSourceScheduler); err != nil {
			s.logger.Error("Check dispatch failed",
				"product_id", product.ID,
				"error", err)
		}
	}()
}

func (s *Scheduler) release(productID int64) {
	s.mu.Lock()
	delete(s.inFlight, productID)
	s.mu.Unlock()
}
