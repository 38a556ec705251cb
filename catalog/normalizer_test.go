package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raushankrgupta/resale-catalog-parser/models"
	"github.com/raushankrgupta/resale-catalog-parser/reference"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefixTranslator struct{ fail bool }

func (u prefixTranslator) Translate(ctx context.Context, text string) (string, error) {
	if u.fail {
		return "", errors.New("quota exceeded")
	}
	return "ru:" + text, nil
}

type recordingSink struct {
	keys []ImageKey
	refs [][]string
	err  error
}

func (r *recordingSink) Publish(ctx context.Context, key ImageKey, refs []string) (int, error) {
	r.keys = append(r.keys, key)
	r.refs = append(r.refs, refs)
	if r.err != nil {
		return 0, r.err
	}
	return len(refs), nil
}

func testTables() *reference.Tables {
	return &reference.Tables{
		Colors: reference.ColorTable{
			"BLACK":     {Name: "черный", HexCode: "#000000"},
			"OFF-WHITE": {Name: "молочный"},
			"NAVY/BLUE": {Name: "темно/синий"},
		},
		Materials: reference.NewMaterialTable(map[string]string{
			"cotton":         "хлопок",
			"organic cotton": "органический хлопок",
			"elastane":       "эластан",
		}),
	}
}

func testCategory() reference.Category {
	return reference.Category{
		URL:           "https://www.cos.com/en_eur/men/t-shirts.html",
		ParseType:     "cos",
		DeliveryPrice: decimal.RequireFromString("5.0"),
		Category:      "Футболки",
		Subcategory:   "Базовые",
		Gender:        "male",
	}
}

func testPage() *Page {
	return &Page{
		URL:         "https://www.cos.com/en_eur/men/product.regular-t-shirt.1218159628.html",
		Article:     "1218159",
		Name:        "Regular T-shirt",
		Description: "Relaxed fit. 95% organic cotton, 5% elastane. Lining: 100% cotton.",
		ListPrice:   decimal.RequireFromString("49.99"),
		Colors: []RawColor{
			{
				Key: "1218159628", Code: "628", Name: "Off-white", Hex: "f5f5dc",
				Images: []string{"http://img/a.jpg", "http://img/b.jpg"},
				Sizes:  []RawSize{{Name: "S", Code: "003"}, {Name: "M", Code: "004"}},
			},
			{
				Key: "1218159001", Code: "001", Name: "Dusty lilac", Hex: "not-a-hex",
				Images: []string{"http://img/c.jpg"},
				Sizes:  []RawSize{{Name: "S", Code: "003"}},
			},
			{
				Key: "1218159002", Code: "002", Name: "navy/blue",
				Sizes: []RawSize{},
			},
		},
	}
}

func TestNormalize_Record(t *testing.T) {
	sink := &recordingSink{}
	n := &Normalizer{
		Brand:      "cos",
		Tables:     testTables(),
		Translator: prefixTranslator{},
		Images:     sink,
		Materials:  MaterialFromDescription,
	}

	var log strings.Builder
	rec, err := n.Normalize(context.Background(), testPage(), testCategory(), &log)
	require.NoError(t, err)

	assert.Equal(t, "ru:Regular T-shirt", rec.Name)
	assert.Equal(t, "1218159", rec.Article)
	assert.Equal(t, "cos_1218159", rec.UniqueArticle)
	assert.Equal(t, "cos", rec.ParseType)
	assert.Equal(t, "Футболки", rec.Category)
	assert.Equal(t, "male", rec.Gender)
	assert.Equal(t, "органический хлопок;эластан;хлопок", rec.Material)
	assert.Equal(t, 49.99, rec.OriginalPrice)
	assert.Equal(t, 5.0, rec.DeliveryPrice)
	assert.Equal(t, models.DefaultCare, rec.Care)

	require.Len(t, rec.Colors, 3)
	assert.Equal(t, models.ColorVariant{
		Name: "молочный", OriginalName: "Off-white", Code: "628", HexCode: "#f5f5dc",
		Sizes: []models.SizeVariant{{Name: "S", Code: "003"}, {Name: "M", Code: "004"}},
	}, rec.Colors[0])

	assert.Equal(t, models.MulticolorName, rec.Colors[1].Name)
	assert.Equal(t, "Dusty lilac", rec.Colors[1].OriginalName)
	assert.Equal(t, models.DefaultHexCode, rec.Colors[1].HexCode)
	assert.Contains(t, log.String(), `"Dusty lilac" not in color table`)

	assert.Equal(t, "темно/синий", rec.Colors[2].Name)
	assert.NotNil(t, rec.Colors[2].Sizes)

	require.Len(t, sink.keys, 3)
	assert.Equal(t, "cos_1218159_молочный", sink.keys[0].String())
	assert.Equal(t, "cos_1218159_"+models.MulticolorName, sink.keys[1].String())
	assert.Equal(t, "cos_1218159_темно_синий", sink.keys[2].String())
	assert.Equal(t, []string{"http://img/a.jpg", "http://img/b.jpg"}, sink.refs[0])
	assert.Empty(t, sink.refs[2])
}

func TestNormalize_Degrades(t *testing.T) {
	n := &Normalizer{
		Brand:      "h&m",
		Tables:     testTables(),
		Translator: prefixTranslator{fail: true},
		Images:     &recordingSink{err: errors.New("upload refused")},
		Materials:  MaterialFromPage,
	}
	page := testPage()
	page.Material = "Bawełna 100%"

	var log strings.Builder
	rec, err := n.Normalize(context.Background(), page, testCategory(), &log)
	require.NoError(t, err)

	assert.Empty(t, rec.Name)
	assert.Empty(t, rec.Description)
	assert.Empty(t, rec.Material)
	assert.Len(t, rec.Colors, 3)
	assert.Contains(t, log.String(), "Translation failed")
	assert.Contains(t, log.String(), "upload refused")
}

func TestNormalize_Idempotent(t *testing.T) {
	n := &Normalizer{Brand: "cos", Tables: testTables(), Translator: prefixTranslator{}, Materials: MaterialFromDescription}

	first, err := n.Normalize(context.Background(), testPage(), testCategory(), &strings.Builder{})
	require.NoError(t, err)
	second, err := n.Normalize(context.Background(), testPage(), testCategory(), &strings.Builder{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalize_EmptyArticle(t *testing.T) {
	n := &Normalizer{Brand: "cos", Tables: testTables()}
	page := testPage()
	page.Article = ""
	_, err := n.Normalize(context.Background(), page, testCategory(), &strings.Builder{})
	assert.Error(t, err)
}

func TestResolveColor(t *testing.T) {
	table := testTables().Colors
	tests := []struct {
		label, hex       string
		mode             HexMode
		wantName, wantHx string
		known            bool
	}{
		{"Black", "#111111", HexFromTable, "черный", "#000000", true},
		{"Black", "#111111", HexFromPage, "черный", "#111111", true},
		{"Black", "", HexFromPage, "черный", "#000000", true},
		{"off-white", "#F5F5DC", HexFromTable, "молочный", "#F5F5DC", true},
		{"off-white", "", HexFromTable, "молочный", models.DefaultHexCode, true},
		{"Sage", "abc", HexFromTable, models.MulticolorName, "#abc", false},
		{"Sage", "", HexFromPage, models.MulticolorName, models.DefaultHexCode, false},
	}
	for _, tt := range tests {
		name, hex, known := ResolveColor(table, tt.label, tt.hex, tt.mode)
		assert.Equal(t, tt.wantName, name, tt.label)
		assert.Equal(t, tt.wantHx, hex, tt.label)
		assert.Equal(t, tt.known, known, tt.label)
	}
}

func TestScanMaterials(t *testing.T) {
	table := testTables().Materials
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "longest prefix", in: "100% Organic cotton", want: "органический хлопок"},
		{name: "dedupe keeps first seen", in: "60% cotton, 40% elastane. Rib: 98% cotton 2% elastane", want: "хлопок;эластан"},
		{name: "decimal percent", in: "97,5 % cotton", want: "хлопок"},
		{name: "unknown material", in: "100% yak", want: ""},
		{name: "no percentages", in: "Cotton jersey", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanMaterials(tt.in, table))
		})
	}
}
