package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/pricetracker/internal/domain"
)

// observationSelectColumns lists columns for SELECT queries on
// price_observations.
const observationSelectColumns = `id, product_id, price, currency, is_promo,
	promo_percentage, source, fetch_duration_ms, recorded_at`

// ObservationRepository handles database operations for the price
// history.
type ObservationRepository struct {
	db *sqlx.DB
}

// NewObservationRepository creates a new observation repository.
func NewObservationRepository(db *sqlx.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// Append inserts an observation and fills in its generated ID. History
// rows are never updated afterwards.
func (r *ObservationRepository) Append(ctx context.Context, observation *domain.Observation) error {
	query := `
		INSERT INTO price_observations (product_id, price, currency, is_promo,
			promo_percentage, source, fetch_duration_ms, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		observation.ProductID, observation.Price, observation.Currency,
		observation.IsPromo, observation.PromoPercentage, observation.Source,
		observation.FetchDurationMs, observation.RecordedAt,
	).Scan(&observation.ID)
	if err != nil {
		return fmt.Errorf("failed to append observation: %w", err)
	}
	return nil
}

// ListByProduct returns a product's history, newest first.
func (r *ObservationRepository) ListByProduct(ctx context.Context, productID int64, limit int) ([]*domain.Observation, error) {
	query := `
		SELECT ` + observationSelectColumns + `
		FROM price_observations
		WHERE product_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	var observations []*domain.Observation
	if err := r.db.SelectContext(ctx, &observations, query, productID, limit); err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	return observations, nil
}

// WasPromoBefore reports whether the latest priced observation strictly
// before the given time had the promo flag set. A product with no prior
// priced history was not in promotion.
func (r *ObservationRepository) WasPromoBefore(ctx context.Context, productID int64, before time.Time) (bool, error) {
	query := `
		SELECT is_promo
		FROM price_observations
		WHERE product_id = $1
		  AND recorded_at < $2
		  AND price IS NOT NULL
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var isPromo bool
	err := r.db.GetContext(ctx, &isPromo, query, productID, before)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load promo history: %w", err)
	}
	return isPromo, nil
}

// PriceRange summarizes a product's priced history.
type PriceRange struct {
	MinPrice *float64 `db:"min_price"`
	MaxPrice *float64 `db:"max_price"`
	Count    int64    `db:"count"`
}

// Stats returns the min and max observed prices and the number of
// priced observations for a product.
func (r *ObservationRepository) Stats(ctx context.Context, productID int64) (*PriceRange, error) {
	query := `
		SELECT MIN(price) AS min_price, MAX(price) AS max_price,
		       COUNT(price) AS count
		FROM price_observations
		WHERE product_id = $1
		  AND price IS NOT NULL
	`

	var stats PriceRange
	if err := r.db.GetContext(ctx, &stats, query, productID); err != nil {
		return nil, fmt.Errorf("failed to load observation stats: %w", err)
	}
	return &stats, nil
}
