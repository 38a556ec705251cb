package base

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/resale-catalog-parser/utils"
	"github.com/shopspring/decimal"
)

var (
	priceNumber = regexp.MustCompile(`\d[\d \x{00a0}\x{202f}]*(?:[.,]\d+)?`)
	listingID   = regexp.MustCompile(`.*\.([0-9]{10})\.html`)
)

// ParsePrice reads the first number in text, accepting a decimal comma and
// space-grouped thousands ("1 299,90 PLN", "€ 49,99").
func ParsePrice(text string) (decimal.Decimal, error) {
	m := priceNumber.FindString(text)
	if m == "" {
		return decimal.Zero, fmt.Errorf("%w: no price in %q", ErrPageStructure, strings.TrimSpace(text))
	}
	m = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(m)
	return decimal.NewFromString(m)
}

// ListingLinks collects href values for selector, resolved against host and
// de-duplicated by the 7-digit article prefix of their 10-digit id.
// Links without an id are dropped.
func ListingLinks(doc *goquery.Document, selector, host string) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := listingID.FindStringSubmatch(href)
		if m == nil {
			return
		}
		prefix := m[1][:7]
		if _, dup := seen[prefix]; dup {
			return
		}
		link, err := utils.ResolveURL(host, href)
		if err != nil {
			return
		}
		seen[prefix] = struct{}{}
		links = append(links, link)
	})
	return links
}

// ProductID returns the 10-digit article+color id embedded in a product URL.
func ProductID(url string) (string, bool) {
	m := listingID.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Text returns the trimmed text of the first match, or ErrPageStructure.
func Text(doc *goquery.Document, selector string) (string, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s not found", ErrPageStructure, selector)
	}
	return strings.TrimSpace(sel.Text()), nil
}
