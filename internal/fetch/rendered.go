package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonesrussell/pricetracker/internal/logger"
)

// RenderedClient retrieves pages through a headless Chrome instance so
// that JavaScript-rendered prices are present in the returned HTML.
type RenderedClient struct {
	config *Config
	logger logger.Interface
}

// NewRenderedClient creates a browser-backed page client.
func NewRenderedClient(config *Config, log logger.Interface) *RenderedClient {
	return &RenderedClient{
		config: config.withDefaults(),
		logger: log.WithComponent("fetch.rendered"),
	}
}

// Fetch loads a page in headless Chrome, waits for the document to
// settle, and returns the rendered HTML.
func (c *RenderedClient) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.config.RenderTimeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(c.config.UserAgent),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		// Give client-side price widgets a moment to populate.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	if int64(len(html)) > c.config.MaxBodyBytes {
		return nil, fmt.Errorf("render %s: %w", pageURL, ErrBodyTooLarge)
	}

	c.logger.Debug("Rendered page",
		"url", pageURL,
		"bytes", len(html),
		"duration", time.Since(start))
	return []byte(html), nil
}
