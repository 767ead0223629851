// Package parser turns raw e-commerce page content into structured product
// snapshots. Extraction strategies are resolved per normalized domain: a
// site-specific strategy when one is registered, otherwise a generic
// strategy driven by a stored per-domain selector configuration.
package parser

import "errors"

// Sentinel errors for strategy resolution and extraction.
var (
	// ErrNoStrategy is returned when a domain has neither a registered
	// site-specific strategy nor a parser configuration.
	ErrNoStrategy = errors.New("no extraction strategy available for domain")
	// ErrPriceNotFound is returned when no selector in the chain yielded a
	// parseable price. The page may still have produced a partial snapshot.
	ErrPriceNotFound = errors.New("price not found in page content")
	// ErrMalformedContent is returned when the page content could not be
	// parsed as HTML at all.
	ErrMalformedContent = errors.New("malformed page content")
)

// ProductSnapshot is the structured data extracted from one product page.
type ProductSnapshot struct {
	Name            string
	Price           *float64
	Currency        string
	ImageURL        string
	IsAvailable     bool
	IsPromo         bool
	PromoPercentage *float64
}

// HasPrice reports whether the snapshot carries a usable price.
func (s *ProductSnapshot) HasPrice() bool {
	return s != nil && s.Price != nil
}

// Strategy extracts a product snapshot from raw page content for one
// domain or domain class.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// RequiresBrowser reports whether the page needs JavaScript rendering
	// and therefore a browser-backed fetch.
	RequiresBrowser() bool
	// Extract parses page content into a snapshot. A snapshot without a
	// price is returned alongside ErrPriceNotFound: it is a partial result,
	// not an actionable observation.
	Extract(content []byte) (*ProductSnapshot, error)
}
