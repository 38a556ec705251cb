package base

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/resale-catalog-parser/config"
	"github.com/raushankrgupta/resale-catalog-parser/models"
)

// Site is a storefront profile bound to a scraper. Storefront packages embed it
// for the behaviour every store shares.
type Site struct {
	*BaseScraper
	Profile config.Storefront
}

// NewSite creates a Site whose client sends the profile's headers
func NewSite(profile config.Storefront, opts Options, renderers ...Renderer) *Site {
	headers := make(map[string]string, len(opts.Headers)+len(profile.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}
	for k, v := range profile.Headers {
		headers[k] = v
	}
	opts.Headers = headers
	return &Site{BaseScraper: NewBaseScraper(opts, renderers...), Profile: profile}
}

func (s *Site) Name() string  { return s.Profile.Name }
func (s *Site) Brand() string { return s.Profile.Brand }

// Warmup visits the profile's warmup page, if any, and installs its cookies.
func (s *Site) Warmup(ctx context.Context) error {
	if s.Profile.WarmupURL == "" {
		for name, value := range s.Profile.Cookies {
			s.Client.SetCookie(cookie(name, value))
		}
		return nil
	}
	fmt.Printf("[%s] Warming up session: %s\n", s.Profile.Name, s.Profile.WarmupURL)
	return s.BaseScraper.Warmup(ctx, s.Profile.WarmupURL, s.Profile.Cookies)
}

// FetchStock reads the availability feed of article.
func (s *Site) FetchStock(ctx context.Context, article string) (*models.StockFeed, error) {
	if s.Profile.StockURL == "" {
		return nil, fmt.Errorf("storefront %s has no stock_url", s.Profile.Name)
	}
	var feed models.StockFeed
	if err := s.GetJSON(ctx, fmt.Sprintf(s.Profile.StockURL, article), &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// ProductPageURL builds the page URL of a full article+color+size id.
func (s *Site) ProductPageURL(fullID string) (string, error) {
	if len(fullID) <= 3 || s.Profile.ProductPageURL == "" {
		return "", fmt.Errorf("cannot build product page for id %q", fullID)
	}
	return fmt.Sprintf(s.Profile.ProductPageURL, fullID[:len(fullID)-3]), nil
}

// Download fetches a raw resource such as an image.
func (s *Site) Download(ctx context.Context, url string) ([]byte, error) {
	return s.Get(ctx, url)
}
