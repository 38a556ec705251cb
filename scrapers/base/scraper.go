package base

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrFetch is returned once every attempt for a URL has failed.
	ErrFetch = errors.New("fetch failed")
	// ErrPageStructure means a page was fetched but lacks an element the parser needs.
	ErrPageStructure = errors.New("unexpected page structure")
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.6045.199 Safari/537.36"

// Options configures a BaseScraper.
type Options struct {
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
	// RPS caps outgoing requests per second; zero disables pacing.
	RPS     float64
	Headers map[string]string
	Cookies map[string]string
	// Observe, when set, sees the final status of every request; 0 for transport errors.
	Observe func(statusCode int)
}

// Renderer produces page HTML through a browser when the plain body is unusable.
type Renderer interface {
	Name() string
	Render(ctx context.Context, url string) (string, error)
}

// BaseScraper handles common fetching logic for storefronts
type BaseScraper struct {
	Client    *resty.Client
	limiter   *rate.Limiter
	renderers []Renderer
	observe   func(statusCode int)
}

// NewBaseScraper creates a new BaseScraper instance
func NewBaseScraper(opts Options, renderers ...Renderer) *BaseScraper {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryDelay).
		SetRetryMaxWaitTime(opts.RetryDelay).
		SetHeader("User-Agent", defaultUserAgent).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusBadRequest
		})
	client.SetHeaders(opts.Headers)
	for name, value := range opts.Cookies {
		client.SetCookie(cookie(name, value))
	}

	b := &BaseScraper{Client: client, renderers: renderers, observe: opts.Observe}
	if opts.RPS > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return b
}

// Get fetches url and returns the body of the first successful attempt.
func (b *BaseScraper) Get(ctx context.Context, url string) ([]byte, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
		}
	}

	resp, err := b.Client.R().SetContext(ctx).Get(url)
	if b.observe != nil {
		if err != nil {
			b.observe(0)
		} else {
			b.observe(resp.StatusCode())
		}
	}
	if err != nil {
		fmt.Printf("[BaseScraper] HTTP Failed: %s: %v\n", url, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	if resp.IsError() {
		fmt.Printf("[BaseScraper] HTTP Failed: %s: status %d\n", url, resp.StatusCode())
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode())
	}
	return resp.Body(), nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (b *BaseScraper) GetJSON(ctx context.Context, url string, v any) error {
	body, err := b.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := b.Client.JSONUnmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetPage fetches url and returns its HTML, trying each renderer when the plain
// body fails or does not satisfy valid.
func (b *BaseScraper) GetPage(ctx context.Context, url string, valid func(html string) bool) (string, error) {
	body, err := b.Get(ctx, url)
	if err == nil {
		html := string(body)
		if valid == nil || valid(html) {
			return html, nil
		}
		fmt.Printf("[BaseScraper] HTTP yielded invalid content (validator failed), trying fallbacks...\n")
	}
	lastErr := err

	for _, r := range b.renderers {
		fmt.Printf("[BaseScraper] Trying %s: %s\n", r.Name(), url)
		html, rerr := r.Render(ctx, url)
		if rerr != nil {
			fmt.Printf("[BaseScraper] %s Failed: %v\n", r.Name(), rerr)
			lastErr = rerr
			continue
		}
		if valid == nil || valid(html) {
			fmt.Printf("[BaseScraper] %s Success\n", r.Name())
			return html, nil
		}
	}

	if lastErr != nil && errors.Is(lastErr, ErrFetch) {
		return "", lastErr
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, url, lastErr)
	}
	return "", fmt.Errorf("%w: all strategies failed for %s", ErrPageStructure, url)
}

// GetDocument is GetPage parsed with goquery.
func (b *BaseScraper) GetDocument(ctx context.Context, url string, valid func(html string) bool) (string, *goquery.Document, error) {
	html, err := b.GetPage(ctx, url, valid)
	if err != nil {
		return "", nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return html, doc, nil
}

// Warmup requests url so the storefront's session cookies land in the client jar,
// then sets extra cookies on top.
func (b *BaseScraper) Warmup(ctx context.Context, url string, extra map[string]string) error {
	if _, err := b.Get(ctx, url); err != nil {
		return err
	}
	for name, value := range extra {
		b.Client.SetCookie(cookie(name, value))
	}
	return nil
}

func cookie(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value}
}
