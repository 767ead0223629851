package fetch

import (
	"context"

	"github.com/jonesrussell/pricetracker/internal/logger"
)

// PageClient retrieves the body of a single page.
type PageClient interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// Client routes page retrieval to the static or rendered backend based
// on what the extraction strategy needs.
type Client struct {
	static   PageClient
	rendered PageClient
}

// NewClient creates a routing client with both backends.
func NewClient(config *Config, log logger.Interface) *Client {
	return &Client{
		static:   NewStaticClient(config, log),
		rendered: NewRenderedClient(config, log),
	}
}

// NewClientWithBackends creates a routing client with explicit backends,
// used in tests.
func NewClientWithBackends(static, rendered PageClient) *Client {
	return &Client{static: static, rendered: rendered}
}

// Fetch retrieves a page, using the browser backend when renderPage is
// set.
func (c *Client) Fetch(ctx context.Context, pageURL string, renderPage bool) ([]byte, error) {
	if renderPage {
		return c.rendered.Fetch(ctx, pageURL)
	}
	return c.static.Fetch(ctx, pageURL)
}
