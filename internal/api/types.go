package api

// CreateProductRequest is the payload for POST /api/v1/products.
type CreateProductRequest struct {
	URL                string   `binding:"required" json:"url"`
	Name               *string  `json:"name"`
	TargetPrice        *float64 `json:"target_price"`
	Currency           string   `json:"currency"`
	CheckIntervalHours int      `json:"check_interval_hours"`
	Tags               *string  `json:"tags"`
	Notes              *string  `json:"notes"`
}

// UpdateProductRequest is the payload for PUT /api/v1/products/:id.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name               *string  `json:"name"`
	TargetPrice        *float64 `json:"target_price"`
	Currency           *string  `json:"currency"`
	CheckIntervalHours *int     `json:"check_interval_hours"`
	Tags               *string  `json:"tags"`
	Notes              *string  `json:"notes"`
}

// ParserConfigRequest is the payload for PUT /api/v1/parser-configs/:domain.
type ParserConfigRequest struct {
	RequiresBrowser       bool           `json:"requires_browser"`
	PriceSelectors        SelectorsInput `binding:"required" json:"price_selectors"`
	NameSelectors         SelectorsInput `json:"name_selectors"`
	ImageSelectors        SelectorsInput `json:"image_selectors"`
	AvailabilitySelectors SelectorsInput `json:"availability_selectors"`
	RateLimitSeconds      int            `json:"rate_limit_seconds"`
	MaxRetries            int            `json:"max_retries"`
	IsActive              *bool          `json:"is_active"`
}

// SelectorsInput mirrors domain.SelectorChain for request binding.
type SelectorsInput struct {
	Primary  string   `json:"primary"`
	Fallback []string `json:"fallback"`
}
