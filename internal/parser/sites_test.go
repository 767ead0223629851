package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/parser"
)

// resolveSite fetches a built-in retailer strategy from a fresh registry.
func resolveSite(t *testing.T, siteDomain string) parser.Strategy {
	t.Helper()
	registry := parser.NewRegistry(&stubConfigStore{}, logger.NewNoOp())
	strategy, err := registry.Resolve(context.Background(), siteDomain)
	require.NoError(t, err)
	return strategy
}

func TestSiteStrategies_Extract(t *testing.T) {
	tests := []struct {
		name      string
		domain    string
		strategy  string
		page      string
		wantPrice float64
		wantName  string
		wantImage string
	}{
		{
			name:     "cdiscount",
			domain:   "cdiscount.com",
			strategy: "cdiscount",
			page: `<html><body>
				<div class="fpDesCol"><h1 itemprop="name">Aspirateur balai sans fil</h1></div>
				<img class="ProductMainImage" src="https://images.example.com/aspirateur.jpg">
				<span class="fpPrice">199,99 €</span>
			</body></html>`,
			wantPrice: 199.99,
			wantName:  "Aspirateur balai sans fil",
			wantImage: "https://images.example.com/aspirateur.jpg",
		},
		{
			name:     "fnac",
			domain:   "fnac.com",
			strategy: "fnac",
			page: `<html><body>
				<h1 class="f-productHeader-Title">Casque audio Bluetooth</h1>
				<img class="Picture-img" data-src="https://images.example.com/casque.jpg">
				<span class="f-buyBox-price-value">149,00 €</span>
			</body></html>`,
			wantPrice: 149.00,
			wantName:  "Casque audio Bluetooth",
			wantImage: "https://images.example.com/casque.jpg",
		},
		{
			name:     "boulanger",
			domain:   "boulanger.com",
			strategy: "boulanger",
			page: `<html><body>
				<h1 class="title">Lave-linge hublot 9 kg</h1>
				<img class="main-image" src="https://images.example.com/lavelinge.jpg">
				<span class="price-sales">449,99 €</span>
			</body></html>`,
			wantPrice: 449.99,
			wantName:  "Lave-linge hublot 9 kg",
			wantImage: "https://images.example.com/lavelinge.jpg",
		},
		{
			name:     "bol",
			domain:   "bol.com",
			strategy: "bol",
			page: `<html><body>
				<h1 data-test="title">Draadloze stofzuiger</h1>
				<img class="js_selected_image" src="https://images.example.com/stofzuiger.jpg">
				<span class="promo-price">179,99</span>
			</body></html>`,
			wantPrice: 179.99,
			wantName:  "Draadloze stofzuiger",
			wantImage: "https://images.example.com/stofzuiger.jpg",
		},
		{
			name:     "coolblue",
			domain:   "coolblue.be",
			strategy: "coolblue",
			page: `<html><body>
				<h1 class="product-name">Gaming toetsenbord RGB</h1>
				<img class="main-image" src="https://images.example.com/toetsenbord.jpg">
				<strong class="sales-price__current">89,99</strong>
			</body></html>`,
			wantPrice: 89.99,
			wantName:  "Gaming toetsenbord RGB",
			wantImage: "https://images.example.com/toetsenbord.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := resolveSite(t, tt.domain)
			assert.Equal(t, tt.strategy, strategy.Name())
			assert.False(t, strategy.RequiresBrowser())

			snapshot, err := strategy.Extract([]byte(tt.page))
			require.NoError(t, err)
			require.NotNil(t, snapshot.Price)
			assert.InDelta(t, tt.wantPrice, *snapshot.Price, 0.001)
			assert.Equal(t, tt.wantName, snapshot.Name)
			assert.Equal(t, tt.wantImage, snapshot.ImageURL)
			assert.True(t, snapshot.IsAvailable)
		})
	}
}

func TestSiteStrategies_SkipShortHeadlines(t *testing.T) {
	strategy := resolveSite(t, "fnac.com")

	page := []byte(`<html><body>
		<h1>Menu</h1>
		<h1>Enceinte portable etanche</h1>
		<span class="f-buyBox-price-value">59,99 €</span>
	</body></html>`)

	snapshot, err := strategy.Extract(page)
	require.NoError(t, err)
	assert.Equal(t, "Enceinte portable etanche", snapshot.Name,
		"navigation labels are too short to be product names")
}

func TestSiteStrategies_JSONLDFallback(t *testing.T) {
	strategy := resolveSite(t, "bol.com")

	page := []byte(`<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Koptelefoon", "offers": {"price": 64.95, "priceCurrency": "EUR"}}
		</script>
	</head><body><h1 data-test="title">Koptelefoon draadloos</h1></body></html>`)

	snapshot, err := strategy.Extract(page)
	require.NoError(t, err)
	require.NotNil(t, snapshot.Price)
	assert.InDelta(t, 64.95, *snapshot.Price, 0.001)
}

func TestSiteStrategies_PriceNotFound(t *testing.T) {
	strategy := resolveSite(t, "coolblue.nl")

	page := []byte(`<html><body>
		<h1 class="product-name">Monitor 27 inch</h1>
	</body></html>`)

	snapshot, err := strategy.Extract(page)
	require.ErrorIs(t, err, parser.ErrPriceNotFound)
	require.NotNil(t, snapshot)
	assert.Equal(t, "Monitor 27 inch", snapshot.Name)
}
