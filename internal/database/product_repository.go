package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/pricetracker/internal/domain"
)

// ErrProductNotFound is returned when no product matches the lookup.
// Callers should check with errors.Is().
var ErrProductNotFound = errors.New("product not found")

// ErrDuplicateProductURL is returned when a product with the same URL is
// already tracked.
var ErrDuplicateProductURL = errors.New("product URL already tracked")

const uniqueViolation = "23505"

// productSelectColumns lists columns for SELECT queries on products.
const productSelectColumns = `id, url, domain, name, image_url, current_price, currency,
	target_price, check_interval_hours, status, tags, notes,
	consecutive_failures, last_error_message, last_checked_at, last_success_at,
	created_at, updated_at`

// ProductRepository handles database operations for tracked products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product and fills in its generated fields.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (url, domain, name, image_url, currency, target_price,
			check_interval_hours, status, tags, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		product.URL, product.Domain, product.Name, product.ImageURL,
		product.Currency, product.TargetPrice, product.CheckIntervalHours,
		product.Status, product.Tags, product.Notes,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateProductURL, product.URL)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID fetches one product.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productSelectColumns + ` FROM products WHERE id = $1`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// List returns products, optionally filtered by status, newest first.
func (r *ProductRepository) List(ctx context.Context, status domain.ProductStatus) ([]*domain.Product, error) {
	query := `SELECT ` + productSelectColumns + ` FROM products`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var products []*domain.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListDue returns active products whose check interval has elapsed,
// oldest check first so the most overdue products go out first.
func (r *ProductRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productSelectColumns + `
		FROM products
		WHERE status = $1
		  AND (last_checked_at IS NULL
		       OR last_checked_at + (check_interval_hours * INTERVAL '1 hour') <= $2)
		ORDER BY last_checked_at ASC NULLS FIRST
		LIMIT $3
	`

	var products []*domain.Product
	if err := r.db.SelectContext(ctx, &products, query, domain.StatusActive, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list due products: %w", err)
	}
	return products, nil
}

// Update persists the user-editable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, target_price = $3, currency = $4,
		    check_interval_hours = $5, tags = $6, notes = $7,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx, query,
		product.ID, product.Name, product.TargetPrice, product.Currency,
		product.CheckIntervalHours, product.Tags, product.Notes,
	)
	if wrapErr := execRequireRows(result, err, ErrProductNotFound); wrapErr != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, wrapErr)
	}
	return nil
}

// UpdateCheckOutcome persists the fields a finished check mutates.
func (r *ProductRepository) UpdateCheckOutcome(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, image_url = $3, current_price = $4, currency = $5,
		    status = $6, consecutive_failures = $7, last_error_message = $8,
		    last_checked_at = $9, last_success_at = $10,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx, query,
		product.ID, product.Name, product.ImageURL, product.CurrentPrice,
		product.Currency, product.Status, product.ConsecutiveFailures,
		product.LastErrorMessage, product.LastCheckedAt, product.LastSuccessAt,
	)
	if wrapErr := execRequireRows(result, err, ErrProductNotFound); wrapErr != nil {
		return fmt.Errorf("failed to record check outcome for product %d: %w", product.ID, wrapErr)
	}
	return nil
}

// UpdateStatus changes a product's status. Resuming an erroring product
// also resets its failure counter so it gets a clean run.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id int64, status domain.ProductStatus) error {
	query := `
		UPDATE products
		SET status = $2,
		    consecutive_failures = CASE WHEN $2 = 'active' THEN 0 ELSE consecutive_failures END,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if wrapErr := execRequireRows(result, err, ErrProductNotFound); wrapErr != nil {
		return fmt.Errorf("failed to update status of product %d: %w", id, wrapErr)
	}
	return nil
}

// Delete removes a product and, through cascades, its observations and
// alerts.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if wrapErr := execRequireRows(result, err, ErrProductNotFound); wrapErr != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, wrapErr)
	}
	return nil
}
