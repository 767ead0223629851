// Package alert evaluates priced observations against notification
// rules and stores the alerts they raise.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/metrics"
)

// Rule thresholds.
const (
	// DefaultDropThresholdPercent is the minimum relative drop from the
	// previous price that raises a price_drop alert.
	DefaultDropThresholdPercent = 10.0
	// DefaultCooldown suppresses repeat alerts of the same type for a
	// product.
	DefaultCooldown = 24 * time.Hour
)

// Store persists alerts and answers cooldown queries.
type Store interface {
	Create(ctx context.Context, alert *domain.Alert) error
	HasRecentAlert(ctx context.Context, productID int64, alertType domain.AlertType, since time.Time) (bool, error)
}

// History answers whether the product was already in promotion before
// the given observation.
type History interface {
	WasPromoBefore(ctx context.Context, productID int64, before time.Time) (bool, error)
}

// Config controls alert rule thresholds.
type Config struct {
	DropThresholdPercent float64       `mapstructure:"drop_threshold_percent"`
	Cooldown             time.Duration `mapstructure:"cooldown"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		DropThresholdPercent: DefaultDropThresholdPercent,
		Cooldown:             DefaultCooldown,
	}
}

// Engine evaluates the alert rules for one observation at a time. Each
// rule is independent: one rule failing to persist never blocks the
// others, and no alerting problem ever fails the check that triggered
// it.
type Engine struct {
	store   Store
	history History
	config  *Config
	metrics *metrics.Metrics
	logger  logger.Interface
	now     func() time.Time
}

// NewEngine creates an alert engine.
func NewEngine(store Store, history History, config *Config, alertMetrics *metrics.Metrics, log logger.Interface) *Engine {
	if config == nil {
		config = NewConfig()
	}
	if config.DropThresholdPercent <= 0 {
		config.DropThresholdPercent = DefaultDropThresholdPercent
	}
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultCooldown
	}
	return &Engine{
		store:   store,
		history: history,
		config:  config,
		metrics: alertMetrics,
		logger:  log.WithComponent("alert.engine"),
		now:     time.Now,
	}
}

// Evaluate runs all rules against a priced observation. Observations
// without a price are ignored.
func (e *Engine) Evaluate(ctx context.Context, product *domain.Product, observation *domain.Observation, previousPrice *float64) {
	if !observation.HasPrice() {
		return
	}
	newPrice := *observation.Price

	if alert := e.targetReached(product, newPrice, previousPrice); alert != nil {
		e.raise(ctx, alert)
	}
	if alert := e.priceDrop(product, newPrice, previousPrice); alert != nil {
		e.raise(ctx, alert)
	}
	if alert := e.promoDetected(ctx, product, observation, previousPrice); alert != nil {
		e.raise(ctx, alert)
	}
}

// targetReached fires when the price is at or below the user's target.
func (e *Engine) targetReached(product *domain.Product, newPrice float64, previousPrice *float64) *domain.Alert {
	if product.TargetPrice == nil || newPrice > *product.TargetPrice {
		return nil
	}
	return &domain.Alert{
		ProductID: product.ID,
		Type:      domain.AlertTargetReached,
		OldPrice:  previousPrice,
		NewPrice:  newPrice,
		Message: fmt.Sprintf("Price %.2f %s reached your target of %.2f %s",
			newPrice, observationCurrency(product), *product.TargetPrice, observationCurrency(product)),
	}
}

// priceDrop fires when the price fell by at least the configured
// percentage since the previous observation.
func (e *Engine) priceDrop(product *domain.Product, newPrice float64, previousPrice *float64) *domain.Alert {
	if previousPrice == nil || *previousPrice <= 0 || newPrice >= *previousPrice {
		return nil
	}
	dropPercent := (*previousPrice - newPrice) / *previousPrice * 100
	if dropPercent < e.config.DropThresholdPercent {
		return nil
	}
	return &domain.Alert{
		ProductID:      product.ID,
		Type:           domain.AlertPriceDrop,
		OldPrice:       previousPrice,
		NewPrice:       newPrice,
		DropPercentage: &dropPercent,
		Message: fmt.Sprintf("Price dropped %.1f%%: %.2f to %.2f %s",
			dropPercent, *previousPrice, newPrice, observationCurrency(product)),
	}
}

// promoDetected fires when the product newly entered a promotion.
func (e *Engine) promoDetected(ctx context.Context, product *domain.Product, observation *domain.Observation, previousPrice *float64) *domain.Alert {
	if !observation.IsPromo {
		return nil
	}
	wasPromo, err := e.history.WasPromoBefore(ctx, product.ID, observation.RecordedAt)
	if err != nil {
		e.logger.Error("Failed to load promo history",
			"product_id", product.ID,
			"error", err)
		return nil
	}
	if wasPromo {
		return nil
	}

	message := fmt.Sprintf("Promotion detected at %.2f %s", *observation.Price, observationCurrency(product))
	if observation.PromoPercentage != nil {
		message = fmt.Sprintf("Promotion detected: %.0f%% off at %.2f %s",
			*observation.PromoPercentage, *observation.Price, observationCurrency(product))
	}
	return &domain.Alert{
		ProductID:      product.ID,
		Type:           domain.AlertPromoDetected,
		OldPrice:       previousPrice,
		NewPrice:       *observation.Price,
		DropPercentage: observation.PromoPercentage,
		Message:        message,
	}
}

// raise persists an alert unless the cooldown for its type is active.
// Failures are logged and swallowed.
func (e *Engine) raise(ctx context.Context, alert *domain.Alert) {
	log := e.logger.WithProduct(alert.ProductID)

	since := e.now().Add(-e.config.Cooldown)
	recent, err := e.store.HasRecentAlert(ctx, alert.ProductID, alert.Type, since)
	if err != nil {
		log.Error("Failed to check alert cooldown", "type", string(alert.Type), "error", err)
		return
	}
	if recent {
		log.Debug("Alert suppressed by cooldown", "type", string(alert.Type))
		return
	}

	alert.Status = domain.AlertUnread
	alert.CreatedAt = e.now()
	if err := e.store.Create(ctx, alert); err != nil {
		log.Error("Failed to create alert", "type", string(alert.Type), "error", err)
		return
	}
	if e.metrics != nil {
		e.metrics.RecordAlert()
	}
	log.Info("Alert raised",
		"type", string(alert.Type),
		"new_price", alert.NewPrice,
		"message", alert.Message)
}

func observationCurrency(product *domain.Product) string {
	if product.Currency != "" {
		return product.Currency
	}
	return domain.DefaultCurrency
}
