package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/pricetracker/internal/parser"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "european format", input: "1.299,99", want: 1299.99, ok: true},
		{name: "european with euro sign", input: "€ 49,95", want: 49.95, ok: true},
		{name: "us format", input: "$1,299.99", want: 1299.99, ok: true},
		{name: "simple decimal comma", input: "19,99", want: 19.99, ok: true},
		{name: "simple decimal point", input: "19.99", want: 19.99, ok: true},
		{name: "space thousands separator", input: "1 234,56", want: 1234.56, ok: true},
		{name: "nbsp thousands separator", input: "1 234,56", want: 1234.56, ok: true},
		{name: "ungrouped european thousands", input: "1234,56", want: 1234.56, ok: true},
		{name: "ungrouped us thousands", input: "1234.56", want: 1234.56, ok: true},
		{name: "five digit european", input: "12345,67", want: 12345.67, ok: true},
		{name: "bare integer", input: "42", want: 42, ok: true},
		{name: "surrounding text", input: "Prix : 89,90 € TTC", want: 89.90, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "no digits", input: "indisponible", ok: false},
		{name: "zero rejected", input: "0,00", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.ParsePrice(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "euro symbol", input: "prix 49,95 €", want: "EUR"},
		{name: "dollar symbol", input: "price $49.95", want: "USD"},
		{name: "pound symbol", input: "price £49.95", want: "GBP"},
		{name: "usd code", input: "49.95 USD", want: "USD"},
		{name: "default", input: "49,95", want: "EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.DetectCurrency(tt.input))
		})
	}
}

func TestIsValidPrice(t *testing.T) {
	assert.True(t, parser.IsValidPrice(0.01))
	assert.True(t, parser.IsValidPrice(999999))
	assert.False(t, parser.IsValidPrice(0))
	assert.False(t, parser.IsValidPrice(-5))
	assert.False(t, parser.IsValidPrice(1000000))
}

func TestPromoPercentage(t *testing.T) {
	got := parser.PromoPercentage(100, 75)
	require.NotNil(t, got)
	assert.InDelta(t, 25.0, *got, 0.001)

	got = parser.PromoPercentage(119.99, 89.99)
	require.NotNil(t, got)
	assert.InDelta(t, 25.0, *got, 0.01)

	assert.Nil(t, parser.PromoPercentage(50, 75))
	assert.Nil(t, parser.PromoPercentage(0, 10))
}
