// Package tracker runs price checks: it resolves an extraction strategy
// for a product, fetches the page politely, extracts a snapshot with
// retries, and records the outcome as an observation and a product
// update.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/metrics"
	"github.com/jonesrussell/pricetracker/internal/parser"
)

// Default retry behavior for a check. Per-domain parser configs may
// override the attempt count.
const (
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = 2 * time.Second
	MaxRetryDelay         = 30 * time.Second

	// FailureThreshold is the consecutive-failure count at which an
	// active product is flagged as erroring.
	FailureThreshold = 5
)

// ProductStore loads products and persists check outcomes.
type ProductStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	UpdateCheckOutcome(ctx context.Context, product *domain.Product) error
}

// ObservationStore appends price observations.
type ObservationStore interface {
	Append(ctx context.Context, observation *domain.Observation) error
}

// StrategyResolver maps a normalized domain to an extraction strategy.
type StrategyResolver interface {
	Resolve(ctx context.Context, siteDomain string) (parser.Strategy, error)
}

// Fetcher retrieves page content, optionally through a browser.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, renderPage bool) ([]byte, error)
}

// Limiter spaces requests per domain. SetInterval applies a per-domain
// override from the parser configuration.
type Limiter interface {
	Acquire(ctx context.Context, siteDomain string) error
	SetInterval(siteDomain string, interval time.Duration)
}

// AlertEvaluator inspects a priced observation for alert conditions.
// Implementations handle their own failures; alerting never fails a
// check.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, product *domain.Product, observation *domain.Observation, previousPrice *float64)
}

// Config controls check execution.
type Config struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		MaxAttempts:    DefaultMaxAttempts,
		RetryBaseDelay: DefaultRetryBaseDelay,
	}
}

// Tracker coordinates a full product check from strategy resolution to
// recorded outcome.
type Tracker struct {
	executor *executor
	recorder *recorder
	products ProductStore
	metrics  *metrics.Metrics
	logger   logger.Interface
}

// New creates a Tracker.
func New(
	config *Config,
	products ProductStore,
	observations ObservationStore,
	configs parser.ConfigStore,
	resolver StrategyResolver,
	fetcher Fetcher,
	limiter Limiter,
	alerts AlertEvaluator,
	checkMetrics *metrics.Metrics,
	log logger.Interface,
) *Tracker {
	if config == nil {
		config = NewConfig()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = DefaultRetryBaseDelay
	}

	return &Tracker{
		executor: &executor{
			config:   config,
			configs:  configs,
			resolver: resolver,
			fetcher:  fetcher,
			limiter:  limiter,
			metrics:  checkMetrics,
			logger:   log.WithComponent("tracker.executor"),
		},
		recorder: &recorder{
			products:     products,
			observations: observations,
			alerts:       alerts,
			logger:       log.WithComponent("tracker.recorder"),
			now:          time.Now,
		},
		products: products,
		metrics:  checkMetrics,
		logger:   log.WithComponent("tracker"),
	}
}

// CheckProduct runs one check for an already loaded product and records
// the outcome. The returned error reflects persistence problems only; a
// failed extraction is a recorded outcome, not an error.
func (t *Tracker) CheckProduct(ctx context.Context, product *domain.Product, source string) error {
	log := t.logger.WithProduct(product.ID).WithDomain(product.Domain)
	log.Info("Checking product", "url", product.URL, "source", source)

	result := t.executor.run(ctx, product)
	if t.metrics != nil {
		t.metrics.RecordCheck(result.Err == nil, result.Duration)
	}
	if err := t.recorder.record(ctx, product, result, source); err != nil {
		return fmt.Errorf("record check for product %d: %w", product.ID, err)
	}

	if result.Err != nil {
		log.Warn("Check failed",
			"kind", string(result.Err.Kind),
			"attempts", result.Attempts,
			"error", result.Err.Err)
		return nil
	}
	log.Info("Check succeeded",
		"price", *result.Snapshot.Price,
		"currency", result.Snapshot.Currency,
		"attempts", result.Attempts,
		"duration", result.Duration)
	return nil
}

// RunCheckNow loads a product by ID and checks it immediately, bypassing
// the schedule but not the rate limiter. Used by the API and the CLI.
func (t *Tracker) RunCheckNow(ctx context.Context, productID int64) error {
	product, err := t.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %d: %w", productID, err)
	}
	return t.CheckProduct(ctx, product, domain.ObservationSourceManual)
}
