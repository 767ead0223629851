package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SelectorChain is a prioritized list of CSS selectors for one field:
// the primary selector is tried first, then each fallback in order.
// It is stored as JSONB in PostgreSQL and implements sql.Scanner and
// driver.Valuer for seamless conversion.
type SelectorChain struct {
	Primary  string   `json:"primary"`
	Fallback []string `json:"fallback,omitempty"`
}

// All returns the primary selector followed by the fallbacks, skipping
// empty entries.
func (c SelectorChain) All() []string {
	selectors := make([]string, 0, 1+len(c.Fallback))
	if c.Primary != "" {
		selectors = append(selectors, c.Primary)
	}
	for _, s := range c.Fallback {
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// Empty reports whether the chain has no selectors at all.
func (c SelectorChain) Empty() bool {
	return len(c.All()) == 0
}

// Scan implements the sql.Scanner interface for JSONB columns.
func (c *SelectorChain) Scan(value any) error {
	if value == nil {
		*c = SelectorChain{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported type for SelectorChain")
	}

	if len(data) == 0 {
		*c = SelectorChain{}
		return nil
	}

	return json.Unmarshal(data, c)
}

// Value implements the driver.Valuer interface for JSONB columns.
func (c SelectorChain) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// ParserConfig is a per-domain declarative extraction recipe consumed by
// the generic extraction strategy. Created and edited via the API; the
// tracker only reads it.
type ParserConfig struct {
	ID     int64  `db:"id"     json:"id"`
	Domain string `db:"domain" json:"domain"`

	RequiresBrowser bool `db:"requires_browser" json:"requires_browser"`

	PriceSelectors        SelectorChain `db:"price_selectors"        json:"price_selectors"`
	NameSelectors         SelectorChain `db:"name_selectors"         json:"name_selectors"`
	ImageSelectors        SelectorChain `db:"image_selectors"        json:"image_selectors"`
	AvailabilitySelectors SelectorChain `db:"availability_selectors" json:"availability_selectors"`

	// Per-domain overrides; zero means use the tracker defaults.
	RateLimitSeconds int `db:"rate_limit_seconds" json:"rate_limit_seconds"`
	MaxRetries       int `db:"max_retries"        json:"max_retries"`

	IsActive bool `db:"is_active" json:"is_active"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
