package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/pricetracker/internal/parser"
)

func TestAmazonStrategy_Extract(t *testing.T) {
	strategy := parser.NewAmazonStrategy()

	page := []byte(`<html><body>
		<span id="productTitle"> Souris sans fil </span>
		<img id="landingImage" src="https://images.example.com/souris.jpg">
		<span class="a-price"><span class="a-offscreen">34,99 €</span></span>
		<div id="availability"><span>En stock</span></div>
	</body></html>`)

	snapshot, err := strategy.Extract(page)
	require.NoError(t, err)
	require.NotNil(t, snapshot.Price)
	assert.InDelta(t, 34.99, *snapshot.Price, 0.001)
	assert.Equal(t, "EUR", snapshot.Currency)
	assert.Equal(t, "Souris sans fil", snapshot.Name)
	assert.Equal(t, "https://images.example.com/souris.jpg", snapshot.ImageURL)
	assert.True(t, snapshot.IsAvailable)
	assert.False(t, snapshot.IsPromo)
}

func TestAmazonStrategy_PromoWithStrikethrough(t *testing.T) {
	strategy := parser.NewAmazonStrategy()

	page := []byte(`<html><body>
		<span class="a-price"><span class="a-offscreen">74,99 €</span></span>
		<span class="a-price a-text-price"><span class="a-offscreen">99,99 €</span></span>
	</body></html>`)

	snapshot, err := strategy.Extract(page)
	require.NoError(t, err)
	require.NotNil(t, snapshot.Price)
	assert.InDelta(t, 74.99, *snapshot.Price, 0.001)
	assert.True(t, snapshot.IsPromo)
	require.NotNil(t, snapshot.PromoPercentage)
	assert.InDelta(t, 25.0, *snapshot.PromoPercentage, 0.01)
}

func TestAmazonStrategy_PromoBadgeWithoutListPrice(t *testing.T) {
	strategy := parser.NewAmazonStrategy()

	page := []byte(`<html><body>
		<span class="a-price"><span class="a-offscreen">59,99 €</span></span>
		<span class="savingsPercentage">-20 %</span>
	</body></html>`)

	snapshot, err := strategy.Extract(page)
	require.NoError(t, err)
	assert.True(t, snapshot.IsPromo)
	assert.Nil(t, snapshot.PromoPercentage)
}

func TestAmazonStrategy_JSONLDFallback(t *testing.T) {
	strategy := parser.NewAmazonStrategy()

	page := []byte(`<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Clavier", "offers": {"price": "89.90", "priceCurrency": "EUR"}}
		</script>
	</head><body><span id="productTitle">Clavier</span></body></html>`)

	snapshot, err := strategy.Extract(page)
	require.NoError(t, err)
	require.NotNil(t, snapshot.Price)
	assert.InDelta(t, 89.90, *snapshot.Price, 0.001)
}

func TestAmazonStrategy_Unavailable(t *testing.T) {
	strategy := parser.NewAmazonStrategy()

	page := []byte(`<html><body>
		<span id="productTitle">Ecran 27"</span>
		<div id="availability"><span>Actuellement indisponible.</span></div>
	</body></html>`)

	snapshot, err := strategy.Extract(page)
	require.ErrorIs(t, err, parser.ErrPriceNotFound)
	require.NotNil(t, snapshot)
	assert.False(t, snapshot.IsAvailable)
}
