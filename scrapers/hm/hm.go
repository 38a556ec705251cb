package hm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/resale-catalog-parser/catalog"
	"github.com/raushankrgupta/resale-catalog-parser/config"
	"github.com/raushankrgupta/resale-catalog-parser/extract"
	"github.com/raushankrgupta/resale-catalog-parser/pricing"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/base"
	"github.com/raushankrgupta/resale-catalog-parser/utils"
	"github.com/shopspring/decimal"
)

const (
	listingSelector     = "div.c02f13 a"
	priceSelector       = "span.price-value"
	descriptionSelector = "div#section-descriptionAccordion p"
	materialSelector    = "div#section-materialsAndSuppliersAccordion p"

	clubPriceMarker = "Cena dla Klubowiczów"
)

// Extractor repairs the productArticleDetails literal of H&M product pages.
var Extractor = extract.New("productArticleDetails",
	extract.ReplaceAll("quotes", "'", `"`),
	extract.Replace("materials", `"materials": \[([^\[\]]*)\],`, `"materials": [""],`),
	extract.Replace("url", `"url":[^\n]*`, `"url": "",`),
	extract.Replace("thumbnail", `"thumbnail":[^\n]*`, `"thumbnail": "",`),
	extract.Replace("image", `"image":\s*isDesktop\s*\?\s*"(.*)"\s*:\s*"(.*)"`, `"image": "${1}"`),
	extract.Replace("fullscreen", `"fullscreen":[^\n]*`, `"fullscreen": "",`),
	extract.Replace("recommendedDelivery", `"recommendedDelivery":[^\n]*`, `"recommendedDelivery": ""`),
	extract.Replace("brandPagePath", `"brandPagePath":[^\n]*`, `"brandPagePath": ""`),
	extract.Replace("zoom", `"zoom":[^\n]*`, `"zoom": ""`),
	extract.Replace("deliveryBulkyText", `"deliveryBulkyText":[^\n]*`, `,"deliveryBulkyText": ""`),
)

// PriceFormula converts PLN list prices through USD into roubles.
var PriceFormula = pricing.Formula{
	ListChain: []pricing.Step{
		{Key: "КУРС_USD_ЗЛОТЫ", Op: pricing.Div},
		{Key: "КОЭФ_КОНВЕРТАЦИИ", Op: pricing.Mul},
		{Key: "КУРС_USD_RUB", Op: pricing.Mul},
	},
	DeliveryChain: []pricing.Step{
		{Key: pricing.KeyBYNToRUB, Op: pricing.Mul},
		{Key: pricing.KeyEURToBYN, Op: pricing.Mul},
	},
	Offset: 1,
}

type variant struct {
	Name   string `json:"name"`
	RGB    string `json:"rgb"`
	Images []struct {
		Image string `json:"image"`
	} `json:"images"`
	Sizes []struct {
		Name string `json:"name"`
		Size string `json:"size"`
	} `json:"sizes"`
}

type HMScraper struct {
	*base.Site
}

func NewHMScraper(profile config.Storefront, opts base.Options, renderers ...base.Renderer) *HMScraper {
	return &HMScraper{Site: base.NewSite(profile, opts, renderers...)}
}

func (s *HMScraper) Formula() pricing.Formula { return PriceFormula }

func (s *HMScraper) MaterialMode() catalog.MaterialMode { return catalog.MaterialFromPage }

func (s *HMScraper) HexMode() catalog.HexMode { return catalog.HexFromPage }

func (s *HMScraper) ListProductURLs(ctx context.Context, categoryURL string) ([]string, error) {
	_, doc, err := s.GetDocument(ctx, categoryURL, func(html string) bool {
		return strings.Contains(html, "c02f13")
	})
	if err != nil {
		return nil, err
	}
	return base.ListingLinks(doc, listingSelector, s.Profile.Host), nil
}

func (s *HMScraper) ScrapeProduct(ctx context.Context, url string) (*catalog.Page, error) {
	html, err := s.GetPage(ctx, url, Extractor.Contains)
	if err != nil {
		return nil, err
	}
	return s.ParsePage(url, html)
}

func (s *HMScraper) ParsePage(url, html string) (*catalog.Page, error) {
	id, ok := base.ProductID(url)
	if !ok {
		return nil, fmt.Errorf("%w: no product id in %s", base.ErrPageStructure, url)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	name, err := base.Text(doc, "h1")
	if err != nil {
		return nil, err
	}
	price, err := listPrice(doc)
	if err != nil {
		return nil, err
	}

	lit, err := Extractor.Extract(html)
	if err != nil {
		return nil, err
	}

	page := &catalog.Page{
		URL:         url,
		Article:     id[:7],
		Name:        name,
		Description: strings.TrimSpace(doc.Find(descriptionSelector).First().Text()),
		Material:    strings.TrimSpace(doc.Find(materialSelector).First().Text()),
		ListPrice:   price,
	}

	for _, entry := range lit.Variants() {
		var v variant
		if err := json.Unmarshal(entry.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: variant %s: %v", base.ErrPageStructure, entry.Key, err)
		}

		color := catalog.RawColor{
			Key:    entry.Key,
			Code:   entry.Key[len(entry.Key)-3:],
			Name:   v.Name,
			Hex:    v.RGB,
			Images: []string{},
			Sizes:  make([]catalog.RawSize, 0, len(v.Sizes)),
		}
		for _, img := range v.Images {
			if img.Image == "" {
				continue
			}
			ref, err := utils.ResolveURL(s.Profile.Host, img.Image)
			if err != nil {
				continue
			}
			color.Images = append(color.Images, ref)
		}
		for _, size := range v.Sizes {
			color.Sizes = append(color.Sizes, catalog.RawSize{Name: size.Name, Code: size.Size})
		}
		page.Colors = append(page.Colors, color)
	}

	return page, nil
}

// FetchListPrice reads the current price from the product page of fullID.
func (s *HMScraper) FetchListPrice(ctx context.Context, fullID string) (decimal.Decimal, error) {
	url, err := s.ProductPageURL(fullID)
	if err != nil {
		return decimal.Zero, err
	}
	fmt.Printf("[%s] Parse URL: %s\n", s.Name(), url)

	_, doc, err := s.GetDocument(ctx, url, func(html string) bool {
		return strings.Contains(html, "price-value")
	})
	if err != nil {
		return decimal.Zero, err
	}
	return listPrice(doc)
}

func listPrice(doc *goquery.Document) (decimal.Decimal, error) {
	text, err := base.Text(doc, priceSelector)
	if err != nil {
		return decimal.Zero, err
	}
	if i := strings.Index(text, clubPriceMarker); i >= 0 {
		text = text[:i]
	}
	return base.ParsePrice(text)
}
