// Package urlutil provides URL validation and domain normalization.
// Domains are normalized before registry lookups and rate-limit bucketing
// so that the same site expressed differently maps to the same entry.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// wwwPrefix is stripped from hostnames during normalization.
const wwwPrefix = "www."

var (
	errEmptyInput          = errors.New("normalize domain: empty input")
	errMissingSchemeOrHost = errors.New("normalize domain: missing scheme or host")
	errUnsupportedScheme   = errors.New("validate url: scheme must be http or https")
)

// DomainFromURL extracts and normalizes the domain from a product URL:
// lowercased hostname without port, with a leading "www." stripped.
func DomainFromURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errEmptyInput
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize domain: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errMissingSchemeOrHost
	}

	return NormalizeDomain(parsed.Hostname()), nil
}

// NormalizeDomain lowercases a bare domain name and strips a leading
// "www." prefix. Safe to call on already-normalized input.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimPrefix(domain, wwwPrefix)
}

// ValidateProductURL checks that a URL is usable as a tracked product
// source: parseable, http(s), and carrying a hostname.
func ValidateProductURL(rawURL string) error {
	if rawURL == "" {
		return errEmptyInput
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("validate url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errUnsupportedScheme
	}

	if parsed.Hostname() == "" {
		return errMissingSchemeOrHost
	}

	return nil
}
