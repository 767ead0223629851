package parser

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// amazonPriceSelectors are tried in priority order. Amazon renders prices
// with several markups depending on the page template and locale.
var amazonPriceSelectors = []string{
	"span.a-price span.a-offscreen",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	"#priceblock_saleprice",
	"span.apexPriceToPay span.a-offscreen",
	"#corePrice_feature_div span.a-offscreen",
	"span.a-price-whole",
}

var amazonNameSelectors = []string{
	"#productTitle",
	"#title span",
	"h1.a-size-large",
}

var amazonImageSelectors = []string{
	"#landingImage",
	"#imgBlkFront",
	"#main-image",
}

// amazonPromoBadges mark a deal or discount on the offer block.
var amazonPromoBadges = []string{
	"span.dealBadge",
	"#dealBadge_feature_div",
	"span.savingsPercentage",
	"span.a-color-price.a-text-bold",
	"#promoPriceBlockMessage_feature_div",
}

// AmazonStrategy extracts product data from Amazon product pages. It knows
// the site's markup variants and falls back to JSON-LD structured data
// when the visible selectors miss.
type AmazonStrategy struct{}

// NewAmazonStrategy creates the Amazon site strategy.
func NewAmazonStrategy() *AmazonStrategy {
	return &AmazonStrategy{}
}

// Name identifies the strategy in logs.
func (s *AmazonStrategy) Name() string {
	return "amazon"
}

// RequiresBrowser reports that Amazon pages are parseable from static HTML.
func (s *AmazonStrategy) RequiresBrowser() bool {
	return false
}

// Extract parses an Amazon product page.
func (s *AmazonStrategy) Extract(content []byte) (*ProductSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, ErrMalformedContent
	}

	snapshot := &ProductSnapshot{
		Currency:    DetectCurrency(string(content)),
		IsAvailable: amazonAvailable(doc),
	}

	for _, selector := range amazonNameSelectors {
		if name := strings.TrimSpace(doc.Find(selector).First().Text()); name != "" {
			snapshot.Name = name
			break
		}
	}
	for _, selector := range amazonImageSelectors {
		if imageURL, exists := doc.Find(selector).First().Attr("src"); exists && imageURL != "" {
			snapshot.ImageURL = imageURL
			break
		}
	}

	price, priceFound := amazonPrice(doc)
	if !priceFound {
		price, priceFound = jsonLDPrice(doc)
	}
	if priceFound {
		snapshot.Price = &price
		snapshot.IsPromo, snapshot.PromoPercentage = amazonPromo(doc, price)
		return snapshot, nil
	}

	return snapshot, ErrPriceNotFound
}

// amazonPrice tries the visible price selectors in priority order.
func amazonPrice(doc *goquery.Document) (float64, bool) {
	for _, selector := range amazonPriceSelectors {
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

// jsonLDProduct is the subset of schema.org Product data the tracker
// reads from embedded JSON-LD blocks.
type jsonLDProduct struct {
	Type   string `json:"@type"`
	Offers struct {
		Price jsonLDNumber `json:"price"`
	} `json:"offers"`
}

// jsonLDNumber decodes a schema.org price, which sites emit as either a
// JSON number or a quoted string.
type jsonLDNumber float64

func (n *jsonLDNumber) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*n = jsonLDNumber(value)
	return nil
}

// jsonLDPrice scans script[type="application/ld+json"] blocks for a
// schema.org Product offer price.
func jsonLDPrice(doc *goquery.Document) (float64, bool) {
	found := 0.0
	matched := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var product jsonLDProduct
		if err := json.Unmarshal([]byte(sel.Text()), &product); err != nil {
			return true
		}
		if !strings.EqualFold(product.Type, "Product") {
			return true
		}
		price := float64(product.Offers.Price)
		if !IsValidPrice(price) {
			return true
		}
		found = price
		matched = true
		return false
	})
	return found, matched
}

// amazonPromo detects deal badges and strikethrough list prices. When a
// higher list price is shown, the discount percentage is computed from it.
func amazonPromo(doc *goquery.Document, currentPrice float64) (bool, *float64) {
	badged := false
	for _, selector := range amazonPromoBadges {
		if doc.Find(selector).Length() > 0 {
			badged = true
			break
		}
	}

	listPrice, hasList := amazonListPrice(doc)
	if hasList && listPrice > currentPrice {
		return true, PromoPercentage(listPrice, currentPrice)
	}
	if badged {
		return true, nil
	}
	return false, nil
}

// amazonListPriceSelectors match the struck-through original price.
var amazonListPriceSelectors = []string{
	"span.a-price.a-text-price span.a-offscreen",
	"span.basisPrice span.a-offscreen",
	"#listPrice",
	"span.priceBlockStrikePriceString",
}

func amazonListPrice(doc *goquery.Document) (float64, bool) {
	for _, selector := range amazonListPriceSelectors {
		if price, ok := ParsePrice(doc.Find(selector).First().Text()); ok {
			return price, true
		}
	}
	return 0, false
}

// amazonAvailable inspects the availability block for out-of-stock
// phrases.
func amazonAvailable(doc *goquery.Document) bool {
	text := strings.ToLower(doc.Find("#availability").First().Text())
	if text == "" {
		return true
	}
	return !containsUnavailablePhrase(text)
}
