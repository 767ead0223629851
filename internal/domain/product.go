// Package domain provides domain models used across the application.
package domain

import "time"

// ProductStatus represents the lifecycle status of a tracked product.
type ProductStatus string

// Product lifecycle statuses.
const (
	// StatusActive marks a product that is checked on its regular schedule.
	StatusActive ProductStatus = "active"
	// StatusPaused marks a product explicitly paused by the user. The
	// tracker never overrides this status.
	StatusPaused ProductStatus = "paused"
	// StatusError marks a product whose checks have failed repeatedly.
	StatusError ProductStatus = "error"
	// StatusNotTrackable marks a product whose domain has no extraction
	// strategy and no parser configuration.
	StatusNotTrackable ProductStatus = "not_trackable"
)

// Valid reports whether s is one of the known product statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusError, StatusNotTrackable:
		return true
	default:
		return false
	}
}

// DefaultCheckIntervalHours is how often a product is checked when no
// interval is configured.
const DefaultCheckIntervalHours = 24

// DefaultCurrency is assumed when no currency could be detected on the page.
const DefaultCurrency = "EUR"

// Product represents a tracked e-commerce product page.
type Product struct {
	ID     int64  `db:"id"     json:"id"`
	URL    string `db:"url"    json:"url"`
	Domain string `db:"domain" json:"domain"`

	// Display data, filled in by the first successful check.
	Name     *string `db:"name"      json:"name,omitempty"`
	ImageURL *string `db:"image_url" json:"image_url,omitempty"`

	// Price state
	CurrentPrice *float64 `db:"current_price" json:"current_price,omitempty"`
	Currency     string   `db:"currency"      json:"currency"`
	TargetPrice  *float64 `db:"target_price"  json:"target_price,omitempty"`

	// Tracking configuration
	CheckIntervalHours int           `db:"check_interval_hours" json:"check_interval_hours"`
	Status             ProductStatus `db:"status"               json:"status"`

	// Metadata
	Tags  *string `db:"tags"  json:"tags,omitempty"`
	Notes *string `db:"notes" json:"notes,omitempty"`

	// Failure tracking
	ConsecutiveFailures int     `db:"consecutive_failures" json:"consecutive_failures"`
	LastErrorMessage    *string `db:"last_error_message"   json:"last_error_message,omitempty"`

	// Timestamps
	LastCheckedAt *time.Time `db:"last_checked_at" json:"last_checked_at,omitempty"`
	LastSuccessAt *time.Time `db:"last_success_at" json:"last_success_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"      json:"updated_at"`
}

// Due reports whether the product is due for a check at the given time.
// A product that has never been checked is always due.
func (p *Product) Due(now time.Time) bool {
	if p.Status != StatusActive {
		return false
	}
	if p.LastCheckedAt == nil {
		return true
	}
	interval := time.Duration(p.CheckIntervalHours) * time.Hour
	return !now.Before(p.LastCheckedAt.Add(interval))
}
