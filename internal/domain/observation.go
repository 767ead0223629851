package domain

import "time"

// Observation sources.
const (
	// ObservationSourceScheduler marks observations recorded by the
	// regular check schedule.
	ObservationSourceScheduler = "scheduler"
	// ObservationSourceManual marks observations recorded by an
	// on-demand check.
	ObservationSourceManual = "manual"
)

// Observation is one immutable recorded outcome of a price check.
// A nil Price signals a failed check; the row is still written so the
// history reflects every executed attempt.
type Observation struct {
	ID        int64 `db:"id"         json:"id"`
	ProductID int64 `db:"product_id" json:"product_id"`

	Price           *float64 `db:"price"            json:"price,omitempty"`
	Currency        string   `db:"currency"         json:"currency"`
	IsPromo         bool     `db:"is_promo"         json:"is_promo"`
	PromoPercentage *float64 `db:"promo_percentage" json:"promo_percentage,omitempty"`

	Source          string `db:"source"            json:"source"`
	FetchDurationMs int64  `db:"fetch_duration_ms" json:"fetch_duration_ms"`

	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// HasPrice reports whether the observation carries a usable price.
func (o *Observation) HasPrice() bool {
	return o.Price != nil
}
