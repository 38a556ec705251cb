package scrapers

import (
	"context"

	"github.com/raushankrgupta/resale-catalog-parser/catalog"
	"github.com/raushankrgupta/resale-catalog-parser/pricing"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/base"
)

// ErrPageStructure is returned when a fetched page lacks an element the parser needs.
var ErrPageStructure = base.ErrPageStructure

// Storefront defines what the pipeline needs from a source store
type Storefront interface {
	catalog.StockSource

	// Name is the storefront key, e.g. "hm"
	Name() string
	// Brand is written to every record of this storefront
	Brand() string
	Formula() pricing.Formula
	MaterialMode() catalog.MaterialMode
	HexMode() catalog.HexMode

	// Warmup prepares the session before the first request
	Warmup(ctx context.Context) error
	// ListProductURLs returns de-duplicated product links of a category page
	ListProductURLs(ctx context.Context, categoryURL string) ([]string, error)
	// ScrapeProduct fetches and parses one product page
	ScrapeProduct(ctx context.Context, url string) (*catalog.Page, error)
	// ParsePage parses an already fetched product page
	ParsePage(url, html string) (*catalog.Page, error)
	// Download fetches a raw resource such as an image
	Download(ctx context.Context, url string) ([]byte, error)
}
