package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/parser"
)

// parserConfigSelectColumns lists columns for SELECT queries on
// parser_configs.
const parserConfigSelectColumns = `id, domain, requires_browser, price_selectors,
	name_selectors, image_selectors, availability_selectors,
	rate_limit_seconds, max_retries, is_active, created_at, updated_at`

// ParserConfigRepository handles database operations for per-domain
// parser configurations.
type ParserConfigRepository struct {
	db *sqlx.DB
}

// NewParserConfigRepository creates a new parser config repository.
func NewParserConfigRepository(db *sqlx.DB) *ParserConfigRepository {
	return &ParserConfigRepository{db: db}
}

// GetByDomain fetches the configuration for a normalized domain.
// Returns parser.ErrConfigNotFound when no row exists so the registry
// can distinguish "unknown domain" from a real error.
func (r *ParserConfigRepository) GetByDomain(ctx context.Context, siteDomain string) (*domain.ParserConfig, error) {
	query := `SELECT ` + parserConfigSelectColumns + ` FROM parser_configs WHERE domain = $1`

	var config domain.ParserConfig
	err := r.db.GetContext(ctx, &config, query, siteDomain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", parser.ErrConfigNotFound, siteDomain)
		}
		return nil, fmt.Errorf("failed to get parser config: %w", err)
	}
	return &config, nil
}

// List returns all parser configurations ordered by domain.
func (r *ParserConfigRepository) List(ctx context.Context) ([]*domain.ParserConfig, error) {
	query := `SELECT ` + parserConfigSelectColumns + ` FROM parser_configs ORDER BY domain`

	var configs []*domain.ParserConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("failed to list parser configs: %w", err)
	}
	return configs, nil
}

// Upsert inserts or replaces the configuration for a domain.
func (r *ParserConfigRepository) Upsert(ctx context.Context, config *domain.ParserConfig) error {
	query := `
		INSERT INTO parser_configs (domain, requires_browser, price_selectors,
			name_selectors, image_selectors, availability_selectors,
			rate_limit_seconds, max_retries, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (domain) DO UPDATE SET
			requires_browser = EXCLUDED.requires_browser,
			price_selectors = EXCLUDED.price_selectors,
			name_selectors = EXCLUDED.name_selectors,
			image_selectors = EXCLUDED.image_selectors,
			availability_selectors = EXCLUDED.availability_selectors,
			rate_limit_seconds = EXCLUDED.rate_limit_seconds,
			max_retries = EXCLUDED.max_retries,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		config.Domain, config.RequiresBrowser, config.PriceSelectors,
		config.NameSelectors, config.ImageSelectors, config.AvailabilitySelectors,
		config.RateLimitSeconds, config.MaxRetries, config.IsActive,
	).Scan(&config.ID, &config.CreatedAt, &config.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert parser config for %s: %w", config.Domain, err)
	}
	return nil
}

// Delete removes the configuration for a domain.
func (r *ParserConfigRepository) Delete(ctx context.Context, siteDomain string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parser_configs WHERE domain = $1`, siteDomain)
	if wrapErr := execRequireRows(result, err, parser.ErrConfigNotFound); wrapErr != nil {
		return fmt.Errorf("failed to delete parser config for %s: %w", siteDomain, wrapErr)
	}
	return nil
}
