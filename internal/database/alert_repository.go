package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/pricetracker/internal/domain"
)

// ErrAlertNotFound is returned when no alert matches the lookup.
var ErrAlertNotFound = errors.New("alert not found")

// alertSelectColumns lists columns for SELECT queries on alerts.
const alertSelectColumns = `id, product_id, type, status, old_price, new_price,
	drop_percentage, message, created_at, read_at`

// AlertRepository handles database operations for alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts an alert and fills in its generated ID.
func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (product_id, type, status, old_price, new_price,
			drop_percentage, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		alert.ProductID, alert.Type, alert.Status, alert.OldPrice,
		alert.NewPrice, alert.DropPercentage, alert.Message, alert.CreatedAt,
	).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// HasRecentAlert reports whether an alert of the given type was created
// for a product since the given time. Used by the engine's cooldown.
func (r *AlertRepository) HasRecentAlert(ctx context.Context, productID int64, alertType domain.AlertType, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE product_id = $1 AND type = $2 AND created_at >= $3
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, productID, alertType, since); err != nil {
		return false, fmt.Errorf("failed to check recent alerts: %w", err)
	}
	return exists, nil
}

// List returns alerts newest first, optionally filtered by status and
// product.
func (r *AlertRepository) List(ctx context.Context, status domain.AlertStatus, productID int64, limit int) ([]*domain.Alert, error) {
	query := `SELECT ` + alertSelectColumns + ` FROM alerts WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if productID > 0 {
		args = append(args, productID)
		query += fmt.Sprintf(` AND product_id = $%d`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	var alerts []*domain.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead flags an alert as read and stamps the read time.
func (r *AlertRepository) MarkRead(ctx context.Context, id int64) error {
	query := `
		UPDATE alerts
		SET status = $2, read_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.AlertRead)
	if wrapErr := execRequireRows(result, err, ErrAlertNotFound); wrapErr != nil {
		return fmt.Errorf("failed to mark alert %d read: %w", id, wrapErr)
	}
	return nil
}

// Dismiss flags an alert as dismissed.
func (r *AlertRepository) Dismiss(ctx context.Context, id int64) error {
	query := `
		UPDATE alerts
		SET status = $2, read_at = COALESCE(read_at, NOW())
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.AlertDismissed)
	if wrapErr := execRequireRows(result, err, ErrAlertNotFound); wrapErr != nil {
		return fmt.Errorf("failed to dismiss alert %d: %w", id, wrapErr)
	}
	return nil
}
