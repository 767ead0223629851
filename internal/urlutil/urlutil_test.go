package urlutil_test

import (
	"testing"

	"github.com/jonesrussell/pricetracker/internal/urlutil"
)

func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		// Host normalization
		{"lowercase host", "https://AMAZON.FR/dp/B000", "amazon.fr", false},
		{"strip www prefix", "https://www.amazon.fr/dp/B000", "amazon.fr", false},
		{"strip www with mixed case", "https://www.Amazon.FR/dp/B000", "amazon.fr", false},
		{"no www prefix kept as is", "https://amazon.fr/dp/B000", "amazon.fr", false},
		{"strip port", "https://shop.example.com:8443/item/1", "shop.example.com", false},
		{"subdomain preserved", "https://store.fnac.com/p/42", "store.fnac.com", false},

		// Error cases
		{"empty string", "", "", true},
		{"missing scheme", "amazon.fr/dp/B000", "", true},
		{"invalid url", "://not-a-url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := urlutil.DomainFromURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestDomainFromURL_SameBucket verifies that differently-written URLs of the
// same site resolve to one registry entry and one rate-limit bucket.
func TestDomainFromURL_SameBucket(t *testing.T) {
	first, err := urlutil.DomainFromURL("https://www.Amazon.FR/dp/B0001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := urlutil.DomainFromURL("https://amazon.fr/dp/B0002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("domains differ: %q vs %q", first, second)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"www.Amazon.FR", "amazon.fr"},
		{"amazon.fr", "amazon.fr"},
		{"  Bol.COM  ", "bol.com"},
		{"www.www.example.com", "www.example.com"},
	}

	for _, tt := range tests {
		if got := urlutil.NormalizeDomain(tt.input); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateProductURL(t *testing.T) {
	valid := []string{
		"https://amazon.fr/dp/B000",
		"http://example.com/product/1",
	}
	for _, u := range valid {
		if err := urlutil.ValidateProductURL(u); err != nil {
			t.Errorf("ValidateProductURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"ftp://example.com/file",
		"amazon.fr/dp/B000",
	}
	for _, u := range invalid {
		if err := urlutil.ValidateProductURL(u); err == nil {
			t.Errorf("ValidateProductURL(%q) = nil, want error", u)
		}
	}
}
