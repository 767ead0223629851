package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/pricetracker/internal/domain"
)

// GenericStrategy extracts product data using the selector chains from a
// per-domain parser configuration. It works for any site whose product
// pages can be described by CSS selectors.
type GenericStrategy struct {
	config *domain.ParserConfig
}

// NewGenericStrategy creates a generic strategy from a parser configuration.
func NewGenericStrategy(config *domain.ParserConfig) (*GenericStrategy, error) {
	if config == nil {
		return nil, fmt.Errorf("generic strategy: %w", ErrNoStrategy)
	}
	if config.PriceSelectors.Empty() {
		return nil, fmt.Errorf("generic strategy for %s: no price selectors configured", config.Domain)
	}
	return &GenericStrategy{config: config}, nil
}

// Name identifies the strategy in logs.
func (s *GenericStrategy) Name() string {
	return "generic:" + s.config.Domain
}

// RequiresBrowser reports whether the configured domain needs JavaScript
// rendering.
func (s *GenericStrategy) RequiresBrowser() bool {
	return s.config.RequiresBrowser
}

// Extract parses page content using the configured selector chains.
// Selectors are attempted in priority order; the first match that yields
// usable data wins.
func (s *GenericStrategy) Extract(content []byte) (*ProductSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}

	snapshot := &ProductSnapshot{
		Currency: DetectCurrency(string(content)),
	}

	snapshot.Name = selectFirstText(doc, s.config.NameSelectors)
	snapshot.ImageURL = selectFirstImage(doc, s.config.ImageSelectors)
	snapshot.IsAvailable = s.available(doc)

	if price, ok := selectFirstPrice(doc, s.config.PriceSelectors); ok {
		snapshot.Price = &price
		return snapshot, nil
	}

	return snapshot, ErrPriceNotFound
}

// available checks the configured availability selectors for
// out-of-stock phrases. Without selectors the product is assumed available.
func (s *GenericStrategy) available(doc *goquery.Document) bool {
	selectors := s.config.AvailabilitySelectors.All()
	if len(selectors) == 0 {
		return true
	}

	for _, selector := range selectors {
		text := strings.ToLower(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if containsUnavailablePhrase(text) {
			return false
		}
	}
	return true
}

// selectFirstPrice walks a selector chain and returns the first
// parseable price.
func selectFirstPrice(doc *goquery.Document, chain domain.SelectorChain) (float64, bool) {
	for _, selector := range chain.All() {
		found := 0.0
		matched := false
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if price, ok := ParsePrice(sel.Text()); ok {
				found = price
				matched = true
				return false
			}
			return true
		})
		if matched {
			return found, true
		}
	}
	return 0, false
}

// selectFirstText walks a selector chain and returns the first non-empty
// trimmed text.
func selectFirstText(doc *goquery.Document, chain domain.SelectorChain) string {
	for _, selector := range chain.All() {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// imageAttrs are tried in order on matched image elements. Lazy-loading
// sites put the real URL in a data attribute.
var imageAttrs = []string{"src", "data-src", "data-lazy-src"}

// selectFirstImage walks a selector chain and returns the first image URL.
func selectFirstImage(doc *goquery.Document, chain domain.SelectorChain) string {
	for _, selector := range chain.All() {
		element := doc.Find(selector).First()
		if element.Length() == 0 {
			continue
		}
		for _, attr := range imageAttrs {
			if imageURL, exists := element.Attr(attr); exists && imageURL != "" {
				return imageURL
			}
		}
	}
	return ""
}

// unavailablePhrases signal an out-of-stock product in the locales the
// tracker targets (French, Dutch, English).
var unavailablePhrases = []string{
	"currently unavailable",
	"out of stock",
	"actuellement indisponible",
	"en rupture de stock",
	"niet op voorraad",
}

// containsUnavailablePhrase reports whether lowercased text contains a
// known out-of-stock phrase.
func containsUnavailablePhrase(text string) bool {
	for _, phrase := range unavailablePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
