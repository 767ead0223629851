package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/pricetracker/internal/logger"
)

// StaticClient retrieves pages with a plain HTTP GET. It is the default
// path for sites that serve product data in the initial HTML.
type StaticClient struct {
	httpClient *http.Client
	config     *Config
	logger     logger.Interface
}

// NewStaticClient creates a static page client.
func NewStaticClient(config *Config, log logger.Interface) *StaticClient {
	config = config.withDefaults()
	return &StaticClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     log.WithComponent("fetch.static"),
	}
}

// Fetch retrieves a page body. Non-2xx responses return a *StatusError;
// bodies over the configured limit return ErrBodyTooLarge.
func (c *StaticClient) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidURL, pageURL, err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", c.config.AcceptLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", "url", pageURL, "error", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", pageURL, err)
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, ErrBodyTooLarge)
	}

	c.logger.Debug("Fetched page",
		"url", pageURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))
	return body, nil
}
