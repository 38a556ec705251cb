package hm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/raushankrgupta/resale-catalog-parser/config"
	"github.com/raushankrgupta/resale-catalog-parser/extract"
	"github.com/raushankrgupta/resale-catalog-parser/pricing"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/base"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productURL = "https://www2.hm.com/pl_pl/productpage.1218159628.html"

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(b)
}

func newTestScraper(host string) *HMScraper {
	profile := config.Storefront{
		Name:           "hm",
		Brand:          "h&m",
		Host:           host,
		StockURL:       host + "/hmwebservices/service/product/pl/availability/%s.json",
		ProductPageURL: host + "/pl_pl/productpage.%s.html",
	}
	return NewHMScraper(profile, base.Options{Retries: 1, RetryDelay: time.Millisecond, Timeout: 5 * time.Second})
}

func TestParsePage_Golden(t *testing.T) {
	s := newTestScraper("https://www2.hm.com")
	page, err := s.ParsePage(productURL, readFile(t, "product.html"))
	require.NoError(t, err)

	got, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, readFile(t, "product.golden.json"), string(got))
}

func TestParsePage_Deterministic(t *testing.T) {
	s := newTestScraper("https://www2.hm.com")
	html := readFile(t, "product.html")

	first, err := s.ParsePage(productURL, html)
	require.NoError(t, err)
	second, err := s.ParsePage(productURL, html)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParsePage_Errors(t *testing.T) {
	s := newTestScraper("https://www2.hm.com")
	html := readFile(t, "product.html")

	tests := []struct {
		name string
		url  string
		html string
		want error
	}{
		{
			name: "no literal",
			url:  productURL,
			html: strings.Replace(html, "var productArticleDetails", "var productDetails", 1),
			want: extract.ErrNotFound,
		},
		{
			name: "broken literal",
			url:  productURL,
			html: strings.Replace(html, "'rgb': '#f5f5dc',", "'rgb': '#f5f5dc',,", 1),
			want: extract.ErrMalformedJSON,
		},
		{
			name: "no price",
			url:  productURL,
			html: strings.Replace(html, `class="price-value"`, `class="price"`, 1),
			want: base.ErrPageStructure,
		},
		{
			name: "no product id",
			url:  "https://www2.hm.com/pl_pl/ona.html",
			html: html,
			want: base.ErrPageStructure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ParsePage(tt.url, tt.html)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestExtractorRuleOrder(t *testing.T) {
	names := make([]string, 0, len(Extractor.Rules()))
	for _, r := range Extractor.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, "quotes", names[0])
	assert.Equal(t, "deliveryBulkyText", names[len(names)-1])
}

func TestLiveEndpoints(t *testing.T) {
	product := readFile(t, "product.html")
	listing := readFile(t, "listing.html")

	mux := http.NewServeMux()
	mux.HandleFunc("/pl_pl/ona/koszule.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listing))
	})
	mux.HandleFunc("/pl_pl/productpage.1218159628.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(product))
	})
	mux.HandleFunc("/hmwebservices/service/product/pl/availability/1218159.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"availability":["1218159628004"],"fewPieceLeft":["1218159628005"]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newTestScraper(srv.URL)
	ctx := context.Background()

	links, err := s.ListProductURLs(ctx, srv.URL+"/pl_pl/ona/koszule.html")
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/pl_pl/productpage.1218159628.html",
		"https://www2.hm.com/pl_pl/productpage.0975846001.html",
		srv.URL + "/pl_pl/productpage.1190207003.html",
	}, links)

	page, err := s.ScrapeProduct(ctx, links[0])
	require.NoError(t, err)
	assert.Equal(t, "1218159", page.Article)
	assert.Len(t, page.Colors, 2)

	feed, err := s.FetchStock(ctx, "1218159")
	require.NoError(t, err)
	assert.Equal(t, []string{"1218159628004", "1218159628005"}, feed.Purchasable())

	price, err := s.FetchListPrice(ctx, "1218159628004")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("129.99")), price.String())

	_, err = s.FetchStock(ctx, "7777777")
	assert.True(t, errors.Is(err, base.ErrFetch))
}

func TestPriceFormula(t *testing.T) {
	one := decimal.NewFromInt(1)
	e, err := pricing.NewEngine(PriceFormula, map[string]decimal.Decimal{
		"КУРС_USD_ЗЛОТЫ":     one,
		"КОЭФ_КОНВЕРТАЦИИ":   one,
		"КУРС_USD_RUB":       one,
		pricing.KeyBYNToRUB:  one,
		pricing.KeyEURToBYN:  decimal.RequireFromString("2.002"),
		pricing.KeyMarkup:    decimal.RequireFromString("0.2"),
		pricing.KeyTax:       decimal.RequireFromString("0.1"),
		pricing.KeyAcquiring: decimal.RequireFromString("0.1"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(199), e.Price(decimal.RequireFromString("49.99"), decimal.RequireFromString("5.0")))
}
