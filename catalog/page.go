// Package catalog turns raw storefront pages into catalog records and keeps
// stored records in line with live stock.
package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Page is what a storefront parser pulls out of one product page.
type Page struct {
	URL         string          `json:"url"`
	Article     string          `json:"article"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Material    string          `json:"material,omitempty"`
	ListPrice   decimal.Decimal `json:"listPrice"`
	Colors      []RawColor      `json:"colors"`
}

// RawColor is one color variant exactly as the page describes it.
type RawColor struct {
	Key    string    `json:"key"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Hex    string    `json:"hex,omitempty"`
	Images []string  `json:"images"`
	Sizes  []RawSize `json:"sizes"`
}

// RawSize is a size label and its storefront code.
type RawSize struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Translator renders source-language text in the catalog language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ImageKey addresses the images of one color of one article.
type ImageKey struct {
	Brand   string
	Article string
	Color   string
}

// String is the flat key used for staged file names and upload paths.
func (k ImageKey) String() string {
	return k.Brand + "_" + k.Article + "_" + strings.ReplaceAll(k.Color, "/", "_")
}

// ImageSink stores the images of a color and reports how many it kept.
type ImageSink interface {
	Publish(ctx context.Context, key ImageKey, refs []string) (int, error)
}

// MaterialMode selects where a storefront's material line comes from.
type MaterialMode int

const (
	// MaterialFromPage translates the page's own composition text.
	MaterialFromPage MaterialMode = iota
	// MaterialFromDescription scans the description against the material table.
	MaterialFromDescription
)

// HexMode selects which hex code of a color wins.
type HexMode int

const (
	// HexFromTable prefers the color table, then the page value, then white.
	HexFromTable HexMode = iota
	// HexFromPage keeps the page's own value and only falls back to the table.
	HexFromPage
)
