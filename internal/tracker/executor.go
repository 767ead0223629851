package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/metrics"
	"github.com/jonesrussell/pricetracker/internal/parser"
)

// checkResult is the outcome of one check: either a priced snapshot or a
// classified failure, never both.
type checkResult struct {
	Snapshot *parser.ProductSnapshot
	Attempts int
	Duration time.Duration
	Err      *CheckError
}

// executor runs the attempt loop for a single product check.
type executor struct {
	config   *Config
	configs  parser.ConfigStore
	resolver StrategyResolver
	fetcher  Fetcher
	limiter  Limiter
	metrics  *metrics.Metrics
	logger   logger.Interface
}

// run resolves a strategy and attempts fetch plus extract up to the
// attempt budget. Transient failures back off exponentially between
// attempts; permanent failures stop the loop at once.
func (e *executor) run(ctx context.Context, product *domain.Product) *checkResult {
	start := time.Now()
	result := &checkResult{}
	defer func() { result.Duration = time.Since(start) }()

	strategy, err := e.resolver.Resolve(ctx, product.Domain)
	if err != nil {
		result.Err = classify(err)
		return result
	}

	maxAttempts := e.config.MaxAttempts
	if override := e.domainConfig(ctx, product.Domain); override != nil {
		if override.MaxRetries > 0 {
			maxAttempts = override.MaxRetries
		}
		if override.RateLimitSeconds > 0 {
			e.limiter.SetInterval(product.Domain, time.Duration(override.RateLimitSeconds)*time.Second)
		}
	}

	log := e.logger.WithProduct(product.ID).WithDomain(product.Domain)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		snapshot, err := e.attempt(ctx, product, strategy)
		if err == nil {
			// A success wipes any failure a previous attempt left behind.
			result.Snapshot = snapshot
			result.Err = nil
			return result
		}

		checkErr := classify(err)
		result.Err = checkErr
		if ctx.Err() != nil || !checkErr.Retryable() || attempt == maxAttempts {
			return result
		}

		delay := retryDelay(e.config.RetryBaseDelay, attempt)
		log.Debug("Attempt failed, retrying",
			"attempt", attempt,
			"kind", string(checkErr.Kind),
			"delay", delay,
			"error", checkErr.Err)
		if err := sleepCtx(ctx, delay); err != nil {
			return result
		}
	}
	return result
}

// attempt performs one rate-limited fetch and extraction.
func (e *executor) attempt(ctx context.Context, product *domain.Product, strategy parser.Strategy) (*parser.ProductSnapshot, error) {
	waitStart := time.Now()
	if err := e.limiter.Acquire(ctx, product.Domain); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.RecordRateLimitWait(time.Since(waitStart))
	}

	body, err := e.fetcher.Fetch(ctx, product.URL, strategy.RequiresBrowser())
	if err != nil {
		return nil, err
	}

	snapshot, err := strategy.Extract(body)
	if err != nil {
		return nil, fmt.Errorf("extract with %s: %w", strategy.Name(), err)
	}
	return snapshot, nil
}

// domainConfig loads per-domain overrides. Missing configs are normal;
// other lookup errors are logged and ignored so a flaky config read
// never blocks a check.
func (e *executor) domainConfig(ctx context.Context, siteDomain string) *domain.ParserConfig {
	config, err := e.configs.GetByDomain(ctx, siteDomain)
	if err != nil {
		if !errors.Is(err, parser.ErrConfigNotFound) {
			e.logger.Warn("Failed to load parser config", "domain", siteDomain, "error", err)
		}
		return nil
	}
	return config
}

// retryDelay doubles the base delay per completed attempt, capped at
// MaxRetryDelay. Attempt 1 waits base, attempt 2 waits 2*base.
func retryDelay(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
