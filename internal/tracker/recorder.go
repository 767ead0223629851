package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
)

// recorder persists the outcome of a check. Every check, successful or
// not, produces exactly one observation row and one product update.
type recorder struct {
	products     ProductStore
	observations ObservationStore
	alerts       AlertEvaluator
	logger       logger.Interface
	now          func() time.Time
}

func (r *recorder) record(ctx context.Context, product *domain.Product, result *checkResult, source string) error {
	if result.Err == nil {
		return r.recordSuccess(ctx, product, result, source)
	}
	return r.recordFailure(ctx, product, result, source)
}

// recordSuccess stores a priced observation, refreshes the product and
// hands the observation to the alert evaluator. The previous price is
// captured before the product is mutated so alert rules compare against
// it.
func (r *recorder) recordSuccess(ctx context.Context, product *domain.Product, result *checkResult, source string) error {
	now := r.now()
	snapshot := result.Snapshot
	price := *snapshot.Price

	currency := snapshot.Currency
	if currency == "" {
		currency = product.Currency
	}

	observation := &domain.Observation{
		ProductID:       product.ID,
		Price:           &price,
		Currency:        currency,
		IsPromo:         snapshot.IsPromo,
		PromoPercentage: snapshot.PromoPercentage,
		Source:          source,
		FetchDurationMs: result.Duration.Milliseconds(),
		RecordedAt:      now,
	}
	if err := r.observations.Append(ctx, observation); err != nil {
		return fmt.Errorf("append observation: %w", err)
	}

	previousPrice := product.CurrentPrice

	product.CurrentPrice = &price
	product.Currency = currency
	if snapshot.Name != "" {
		name := snapshot.Name
		product.Name = &name
	}
	if snapshot.ImageURL != "" {
		imageURL := snapshot.ImageURL
		product.ImageURL = &imageURL
	}
	product.ConsecutiveFailures = 0
	product.LastErrorMessage = nil
	product.LastCheckedAt = &now
	product.LastSuccessAt = &now
	if product.Status == domain.StatusError {
		product.Status = domain.StatusActive
	}
	if err := r.products.UpdateCheckOutcome(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	r.alerts.Evaluate(ctx, product, observation, previousPrice)
	return nil
}

// recordFailure stores a priceless observation and advances the failure
// state. The product's name, image and current price are left as they
// were.
func (r *recorder) recordFailure(ctx context.Context, product *domain.Product, result *checkResult, source string) error {
	now := r.now()

	observation := &domain.Observation{
		ProductID:       product.ID,
		Currency:        product.Currency,
		Source:          source,
		FetchDurationMs: result.Duration.Milliseconds(),
		RecordedAt:      now,
	}
	if err := r.observations.Append(ctx, observation); err != nil {
		return fmt.Errorf("append observation: %w", err)
	}

	message := result.Err.Error()
	product.ConsecutiveFailures++
	product.LastErrorMessage = &message
	product.LastCheckedAt = &now

	switch {
	case product.Status == domain.StatusPaused:
		// A pause always holds, whatever the checks find.
	case result.Err.Kind == KindNoStrategy && product.ConsecutiveFailures > 1:
		// A single miss may be a config row that is still on its way;
		// only a repeat marks the product untrackable.
		product.Status = domain.StatusNotTrackable
	case product.ConsecutiveFailures >= FailureThreshold && product.Status == domain.StatusActive:
		product.Status = domain.StatusError
		r.logger.Warn("Product flagged as erroring",
			"product_id", product.ID,
			"consecutive_failures", product.ConsecutiveFailures)
	}

	if err := r.products.UpdateCheckOutcome(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}
