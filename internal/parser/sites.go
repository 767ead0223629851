package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/pricetracker/internal/domain"
)

// siteStrategy is a built-in extraction recipe for a retailer whose
// markup is known ahead of time. Unlike the generic strategy its
// selector chains ship compiled in rather than loaded from the config
// store, so the sites work out of the box.
type siteStrategy struct {
	siteName string
	price    domain.SelectorChain
	title    domain.SelectorChain
	image    domain.SelectorChain
}

// minProductNameLength filters out breadcrumb fragments and icon labels
// that headline selectors sometimes match.
const minProductNameLength = 6

// Name identifies the strategy in logs.
func (s *siteStrategy) Name() string {
	return s.siteName
}

// RequiresBrowser reports that these retailers serve parseable static HTML.
func (s *siteStrategy) RequiresBrowser() bool {
	return false
}

// Extract parses a product page using the site's selector chains, with
// JSON-LD structured data as the price fallback.
func (s *siteStrategy) Extract(content []byte) (*ProductSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, ErrMalformedContent
	}

	snapshot := &ProductSnapshot{
		Currency:    DetectCurrency(string(content)),
		IsAvailable: true,
	}

	snapshot.Name = selectProductName(doc, s.title)
	snapshot.ImageURL = selectFirstImage(doc, s.image)

	price, priceFound := selectFirstPrice(doc, s.price)
	if !priceFound {
		price, priceFound = jsonLDPrice(doc)
	}
	if priceFound {
		snapshot.Price = &price
		return snapshot, nil
	}

	return snapshot, ErrPriceNotFound
}

// selectProductName walks a selector chain and returns the first text
// long enough to be a real product name.
func selectProductName(doc *goquery.Document, chain domain.SelectorChain) string {
	for _, selector := range chain.All() {
		found := ""
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := normalizeWhitespace(sel.Text())
			if len([]rune(text)) >= minProductNameLength {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
// Retailer headlines often wrap across indented markup lines.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// chain builds a selector chain from selectors in priority order.
func chain(selectors ...string) domain.SelectorChain {
	return domain.SelectorChain{Primary: selectors[0], Fallback: selectors[1:]}
}

// cdiscountStrategy covers cdiscount.com product pages.
func cdiscountStrategy() *siteStrategy {
	return &siteStrategy{
		siteName: "cdiscount",
		price: chain(
			".fpPrice",
			"span.price",
			".hideFromPro",
			".product-price",
			`span[itemprop="price"]`,
		),
		title: chain(
			`h1[itemprop="name"]`,
			".fpDesCol h1",
			"h1.product-title",
			"h1",
		),
		image: chain(
			"img.ProductMainImage",
			`img[itemprop="image"]`,
			"img.main-image",
			"img.product-image",
		),
	}
}

// fnacStrategy covers fnac.com product pages.
func fnacStrategy() *siteStrategy {
	return &siteStrategy{
		siteName: "fnac",
		price: chain(
			".f-buyBox-price-value",
			".Price--current",
			".ProductOffers-price",
			`span[itemprop="price"]`,
			".product-price",
		),
		title: chain(
			"h1.f-productHeader-Title",
			`h1[itemprop="name"]`,
			"h1.product-title",
			"h1",
		),
		image: chain(
			"img.Picture-img",
			`img[itemprop="image"]`,
			"img.main-image",
			"img.product-image",
		),
	}
}

// boulangerStrategy covers boulanger.com product pages.
func boulangerStrategy() *siteStrategy {
	return &siteStrategy{
		siteName: "boulanger",
		price: chain(
			".price-sales",
			".product-price",
			`span[itemprop="price"]`,
			".current-price",
			".sale-price",
		),
		title: chain(
			"h1.title",
			`h1[itemprop="name"]`,
			"h1.product-title",
			"h1",
		),
		image: chain(
			"img.main-image",
			`img[itemprop="image"]`,
			"img.product-image",
			"img.primary-image",
		),
	}
}

// bolStrategy covers bol.com product pages.
func bolStrategy() *siteStrategy {
	return &siteStrategy{
		siteName: "bol",
		price: chain(
			".promo-price",
			".price-block__highlight",
			`span[data-test="price"]`,
			".product-price",
			"span.price",
		),
		title: chain(
			`h1[data-test="title"]`,
			"h1.page-heading",
			`h1[itemprop="name"]`,
			"h1.product-title",
			"h1",
		),
		image: chain(
			"img.js_selected_image",
			`img[data-test="image"]`,
			`img[itemprop="image"]`,
			"img.main-image",
			"img.product-image",
		),
	}
}

// coolblueStrategy covers coolblue.be and coolblue.nl product pages.
func coolblueStrategy() *siteStrategy {
	return &siteStrategy{
		siteName: "coolblue",
		price: chain(
			".sales-price__current",
			".product-price",
			`[data-test="price"]`,
			`span[itemprop="price"]`,
			".price",
		),
		title: chain(
			"h1.product-name",
			`h1[data-test="title"]`,
			`h1[itemprop="name"]`,
			"h1.product-title",
			"h1",
		),
		image: chain(
			"img.main-image",
			`img[itemprop="image"]`,
			`img[data-test="image"]`,
			"img.product-image",
			"img.primary-image",
		),
	}
}
