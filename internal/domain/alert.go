package domain

import "time"

// AlertType identifies the rule that produced an alert.
type AlertType string

// Alert types.
const (
	// AlertPriceDrop is raised when the price drops by at least the
	// configured threshold from the previous observation.
	AlertPriceDrop AlertType = "price_drop"
	// AlertTargetReached is raised when the price reaches the user's
	// target price.
	AlertTargetReached AlertType = "target_reached"
	// AlertPromoDetected is raised when a product newly enters promotion.
	AlertPromoDetected AlertType = "promo_detected"
)

// AlertStatus represents the read state of an alert.
type AlertStatus string

// Alert statuses.
const (
	AlertUnread    AlertStatus = "unread"
	AlertRead      AlertStatus = "read"
	AlertDismissed AlertStatus = "dismissed"
)

// Alert is a user-facing notification tied to one product. Alerts are
// created only by the alert engine; the read state is mutated by the API.
type Alert struct {
	ID        int64 `db:"id"         json:"id"`
	ProductID int64 `db:"product_id" json:"product_id"`

	Type   AlertType   `db:"type"   json:"type"`
	Status AlertStatus `db:"status" json:"status"`

	OldPrice       *float64 `db:"old_price"       json:"old_price,omitempty"`
	NewPrice       float64  `db:"new_price"       json:"new_price"`
	DropPercentage *float64 `db:"drop_percentage" json:"drop_percentage,omitempty"`

	Message string `db:"message" json:"message"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ReadAt    *time.Time `db:"read_at"    json:"read_at,omitempty"`
}
