package cos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
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

const productURL = "https://www.cos.com/en_eur/men/shirts/product.relaxed-linen-shirt-white.1218159628.html"

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(b)
}

func newTestScraper(host string) *COSScraper {
	profile := config.Storefront{
		Name:           "cos",
		Brand:          "cos",
		Host:           host,
		WarmupURL:      host + "/",
		StockURL:       host + "/webservices_cos/service/product/cos-europe/availability/%s.json",
		ProductPageURL: host + "/en_eur/women/womenswear/tops/product.oversized-t-shirt-black.%s.html",
		Headers:        map[string]string{"Accept-Language": "ru-RU,ru;q=0.9"},
		Cookies:        map[string]string{"HMCORP_currency": "EUR", "countryId": "PL"},
	}
	return NewCOSScraper(profile, base.Options{Retries: 1, RetryDelay: time.Millisecond, Timeout: 5 * time.Second})
}

func TestParsePage_Golden(t *testing.T) {
	page, err := newTestScraper("https://www.cos.com").ParsePage(productURL, readFile(t, "product.html"))
	require.NoError(t, err)

	got, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, readFile(t, "product.golden.json"), string(got))
}

func TestParsePage_Errors(t *testing.T) {
	s := newTestScraper("https://www.cos.com")
	html := readFile(t, "product.html")

	tests := []struct {
		name string
		html string
		want error
	}{
		{
			name: "no literal",
			html: strings.Replace(html, "var productArticleDetails", "let productArticleDetails", 1),
			want: extract.ErrNotFound,
		},
		{
			name: "unrepaired trailing comma",
			html: strings.Replace(html, "'sizeName' : 'S',", "'sizeName': 'S',", 1),
			want: extract.ErrMalformedJSON,
		},
		{
			name: "no price",
			html: strings.Replace(html, `<span class="productPrice">€ 79,99</span>`, "", 1),
			want: base.ErrPageStructure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ParsePage(productURL, tt.html)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestLiveEndpoints(t *testing.T) {
	product := readFile(t, "product.html")
	listing := readFile(t, "listing.html")
	var warmedUp int32

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&warmedUp, 1)
		http.SetCookie(w, &http.Cookie{Name: "akavpau_www_cos", Value: "1", Path: "/"})
	})
	requireSession := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			_, sessionErr := r.Cookie("akavpau_www_cos")
			country, _ := r.Cookie("countryId")
			if sessionErr != nil || country == nil || country.Value != "PL" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/en_eur/men/shirts.html", requireSession(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listing))
	}))
	mux.HandleFunc("/en_eur/women/womenswear/tops/product.oversized-t-shirt-black.1218159628.html", requireSession(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(product))
	}))
	mux.HandleFunc("/webservices_cos/service/product/cos-europe/availability/1218159.json", requireSession(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"availability":[],"fewPieceLeft":["1218159628003"]}`))
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newTestScraper(srv.URL)
	ctx := context.Background()
	require.NoError(t, s.Warmup(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&warmedUp))

	links, err := s.ListProductURLs(ctx, srv.URL+"/en_eur/men/shirts.html")
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/en_eur/men/shirts/product.relaxed-linen-shirt-white.1218159628.html",
		srv.URL + "/en_eur/men/shirts/product.boxy-shirt-black.1187442001.html",
	}, links)

	feed, err := s.FetchStock(ctx, "1218159")
	require.NoError(t, err)
	assert.Equal(t, []string{"1218159628003"}, feed.Purchasable())

	price, err := s.FetchListPrice(ctx, "1218159628003")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("79.99")), price.String())
}

func TestPriceFormula(t *testing.T) {
	one := decimal.NewFromInt(1)
	e, err := pricing.NewEngine(PriceFormula, map[string]decimal.Decimal{
		"КУРС_EUR_RUB":       one,
		pricing.KeyBYNToRUB:  one,
		pricing.KeyEURToBYN:  decimal.RequireFromString("2.002"),
		pricing.KeyMarkup:    decimal.RequireFromString("0.2"),
		pricing.KeyTax:       decimal.RequireFromString("0.1"),
		pricing.KeyAcquiring: decimal.RequireFromString("0.1"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(190), e.Price(decimal.RequireFromString("49.99"), decimal.RequireFromString("5.0")))
}
