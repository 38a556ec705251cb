package base

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeRenderer loads pages in headless Chrome through the DevTools protocol.
type ChromeRenderer struct {
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
}

// NewChromeRenderer creates a renderer that sends the storefront's headers
func NewChromeRenderer(headers map[string]string) *ChromeRenderer {
	return &ChromeRenderer{UserAgent: defaultUserAgent, Headers: headers, Timeout: 2 * time.Minute}
}

func (c *ChromeRenderer) Name() string { return "ChromeDP" }

// settleDelay maps r in [0,1) to a wait between 2s and 5s after the body is ready
func settleDelay(r float64) time.Duration {
	return time.Duration((2 + r*3) * float64(time.Second))
}

// Render fetches the URL using ChromeDP and returns the page content as a string
func (c *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.UserAgent(c.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	headers := make(network.Headers, len(c.Headers))
	for k, v := range c.Headers {
		// Chrome manages these itself and rejects overrides.
		if k == "Host" || k == "Accept-Encoding" {
			continue
		}
		headers[k] = v
	}
	if err := chromedp.Run(taskCtx, network.SetExtraHTTPHeaders(headers)); err != nil {
		return "", fmt.Errorf("chromedp header error: %w", err)
	}

	var htmlContent string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay(rand.Float64())),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp navigation error: %w", err)
	}

	return htmlContent, nil
}
