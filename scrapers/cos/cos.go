package cos

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
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
	listingSelector     = "div.image-if-hover a"
	priceSelector       = "span.productPrice"
	descriptionSelector = "div#description p"
)

var productID = regexp.MustCompile(`[0-9]{10}`)

// Extractor repairs the productArticleDetails literal of COS product pages.
var Extractor = extract.New("productArticleDetails",
	extract.ReplaceAll("quotes", "'", `"`),
	extract.Replace("sizeName", `"sizeName" : "(.*)",`, `"sizeName" : "${1}"`),
	extract.Replace("materials", `"materials": \[([^\[\]]*)\],`, `"materials": [""],`),
	extract.Replace("url", `"url":[^\n]*`, `"url": "",`),
	extract.Replace("url-last", `"url": "",\s*}`, `"url": ""}`),
	extract.Replace("image", `"image":\s*isDesktop\s*\?\s*"(.*)"\s*:\s*"(.*)"`, `"image": "${1}"`),
	extract.Replace("recommendedDelivery", `"recommendedDelivery":[^\n]*`, `"recommendedDelivery": ""`),
	extract.Replace("compositions", `(?s)"compositions": \[.*?\],`, `"compositions": [],`),
	extract.Replace("zoom", `"zoom":[^\n]*`, `"zoom": ""`),
)

// PriceFormula converts EUR list prices into roubles.
var PriceFormula = pricing.Formula{
	ListChain: []pricing.Step{
		{Key: "КУРС_EUR_RUB", Op: pricing.Mul},
	},
	DeliveryChain: []pricing.Step{
		{Key: pricing.KeyBYNToRUB, Op: pricing.Mul},
		{Key: pricing.KeyEURToBYN, Op: pricing.Mul},
	},
	Offset: 10,
}

type variant struct {
	Name    string `json:"name"`
	VAssets []struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"vAssets"`
	Variants []struct {
		SizeName string `json:"sizeName"`
		SizeCode string `json:"sizeCode"`
	} `json:"variants"`
}

type COSScraper struct {
	*base.Site
}

func NewCOSScraper(profile config.Storefront, opts base.Options, renderers ...base.Renderer) *COSScraper {
	return &COSScraper{Site: base.NewSite(profile, opts, renderers...)}
}

func (s *COSScraper) Formula() pricing.Formula { return PriceFormula }

func (s *COSScraper) MaterialMode() catalog.MaterialMode { return catalog.MaterialFromDescription }

func (s *COSScraper) HexMode() catalog.HexMode { return catalog.HexFromTable }

func (s *COSScraper) ListProductURLs(ctx context.Context, categoryURL string) ([]string, error) {
	_, doc, err := s.GetDocument(ctx, categoryURL, func(html string) bool {
		return strings.Contains(html, "image-if-hover")
	})
	if err != nil {
		return nil, err
	}
	return base.ListingLinks(doc, listingSelector, s.Profile.Host), nil
}

func (s *COSScraper) ScrapeProduct(ctx context.Context, url string) (*catalog.Page, error) {
	html, err := s.GetPage(ctx, url, Extractor.Contains)
	if err != nil {
		return nil, err
	}
	return s.ParsePage(url, html)
}

func (s *COSScraper) ParsePage(url, html string) (*catalog.Page, error) {
	id := productID.FindString(url)
	if id == "" {
		return nil, fmt.Errorf("%w: no product id in %s", base.ErrPageStructure, url)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
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
	var name string
	if err := lit.Field("name", &name); err != nil {
		return nil, fmt.Errorf("%w: %v", base.ErrPageStructure, err)
	}

	var paragraphs []string
	doc.Find(descriptionSelector).Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	page := &catalog.Page{
		URL:         url,
		Article:     id[:7],
		Name:        name,
		Description: strings.Join(paragraphs, " "),
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
			Images: []string{},
			Sizes:  make([]catalog.RawSize, 0, len(v.Variants)),
		}
		for _, asset := range v.VAssets {
			if asset.Thumbnail == "" {
				continue
			}
			ref, err := utils.ResolveURL(s.Profile.Host, asset.Thumbnail)
			if err != nil {
				continue
			}
			color.Images = append(color.Images, ref)
		}
		for _, size := range v.Variants {
			color.Sizes = append(color.Sizes, catalog.RawSize{Name: size.SizeName, Code: size.SizeCode})
		}
		page.Colors = append(page.Colors, color)
	}

	return page, nil
}

// FetchListPrice reads the current price from the product page of fullID.
func (s *COSScraper) FetchListPrice(ctx context.Context, fullID string) (decimal.Decimal, error) {
	url, err := s.ProductPageURL(fullID)
	if err != nil {
		return decimal.Zero, err
	}
	fmt.Printf("[%s] Parse URL: %s\n", s.Name(), url)

	_, doc, err := s.GetDocument(ctx, url, func(html string) bool {
		return strings.Contains(html, "productPrice")
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
	return base.ParsePrice(text)
}
