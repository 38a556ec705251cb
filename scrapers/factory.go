package scrapers

import (
	"fmt"
	"strings"

	"github.com/raushankrgupta/resale-catalog-parser/config"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/base"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/cos"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/hm"
)

// GetStorefront returns the storefront implementation for profile
func GetStorefront(profile config.Storefront, opts base.Options, renderers ...base.Renderer) (Storefront, error) {
	// Register storefronts here
	switch profile.Name {
	case "hm":
		return hm.NewHMScraper(profile, opts, renderers...), nil
	case "cos":
		return cos.NewCOSScraper(profile, opts, renderers...), nil
	}
	return nil, fmt.Errorf("no scraper found for storefront: %s", profile.Name)
}

// Renderers builds the browser fallbacks named in a comma separated list,
// e.g. "chromedp,selenium". Unknown names are reported and skipped.
func Renderers(list string, headers map[string]string, chromeDriverPath string) []base.Renderer {
	var out []base.Renderer
	for _, name := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "chromedp":
			out = append(out, base.NewChromeRenderer(headers))
		case "selenium":
			out = append(out, base.NewSeleniumRenderer(chromeDriverPath))
		default:
			fmt.Printf("[Scrapers] Unknown fetch fallback %q, skipping\n", name)
		}
	}
	return out
}
