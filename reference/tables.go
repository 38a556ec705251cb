// Package reference loads the externally maintained lookup tables a run needs:
// categories, colors, materials and the price table.
package reference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raushankrgupta/resale-catalog-parser/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	CategoriesFile = "categories.json"
	ColorsFile     = "colors.json"
	MaterialsFile  = "materials.json"
	PriceTableFile = "priceTable.json"
)

// ConfigError marks a setup defect; the run must stop.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return "reference: " + e.Msg + ": " + e.Err.Error()
	}
	return "reference: " + e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Category is one entry of categories.json.
type Category struct {
	URL           string          `json:"url" validate:"required,url"`
	ParseType     string          `json:"type_pars" validate:"required"`
	DeliveryPrice decimal.Decimal `json:"ЦЕНА_ДОСТАВКИ_В_КАТЕГОРИИ"`
	Category      string          `json:"category" validate:"required"`
	Subcategory   string          `json:"subcategory"`
	Gender        string          `json:"gender"`
}

// ColorEntry is a canonical color. Tables may store either a bare name or {"name", "hexCode"}.
type ColorEntry struct {
	Name    string `json:"name"`
	HexCode string `json:"hexCode"`
}

func (c *ColorEntry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		c.HexCode = ""
		return json.Unmarshal(b, &c.Name)
	}
	type plain ColorEntry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = ColorEntry(p)
	return nil
}

// ColorTable maps upper-cased source labels to canonical colors.
type ColorTable map[string]ColorEntry

// NormalizeLabel upper-cases a source color label for lookup.
func NormalizeLabel(label string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(label))
}

// Lookup finds label ignoring case.
func (t ColorTable) Lookup(label string) (ColorEntry, bool) {
	e, ok := t[NormalizeLabel(label)]
	return e, ok
}

// MaterialEntry maps a lower-case source prefix to a canonical material name.
type MaterialEntry struct {
	Prefix string
	Name   string
}

// MaterialTable is ordered longest prefix first so the most specific entry wins.
type MaterialTable []MaterialEntry

// Match returns the canonical name for the first entry that prefixes candidate.
func (t MaterialTable) Match(candidate string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(candidate))
	for _, e := range t {
		if strings.HasPrefix(c, e.Prefix) {
			return e.Name, true
		}
	}
	return "", false
}

// NewMaterialTable builds an ordered table from raw prefix -> name pairs.
func NewMaterialTable(raw map[string]string) MaterialTable {
	t := make(MaterialTable, 0, len(raw))
	for k, v := range raw {
		t = append(t, MaterialEntry{Prefix: strings.ToLower(strings.TrimSpace(k)), Name: v})
	}
	sort.Slice(t, func(i, j int) bool {
		if len(t[i].Prefix) != len(t[j].Prefix) {
			return len(t[i].Prefix) > len(t[j].Prefix)
		}
		return t[i].Prefix < t[j].Prefix
	})
	return t
}

// PriceTable holds currency rates and fee fractions.
type PriceTable map[string]decimal.Decimal

// Tables is everything one run reads from disk.
type Tables struct {
	Categories map[string]Category
	Colors     ColorTable
	Materials  MaterialTable
	Prices     PriceTable
}

// Category resolves a category id, failing the run when it is unknown or incomplete.
func (t *Tables) Category(id string) (Category, error) {
	c, ok := t.Categories[id]
	if !ok {
		return Category{}, &ConfigError{Msg: fmt.Sprintf("category %q not found in %s", id, CategoriesFile)}
	}
	if err := utils.ValidationError(c); err != nil {
		return Category{}, &ConfigError{Msg: fmt.Sprintf("category %q in %s is invalid", id, CategoriesFile), Err: err}
	}
	return c, nil
}

// LoadOptions selects which tables a run needs.
type LoadOptions struct {
	Categories bool
	Colors     bool
	Materials  bool
	// MaterialsOptional tolerates a missing materials.json.
	MaterialsOptional bool
}

// CreateRun is what the create run loads.
var CreateRun = LoadOptions{Categories: true, Colors: true, Materials: true, MaterialsOptional: true}

// UpdateRun only needs prices.
var UpdateRun = LoadOptions{}

// Load reads the tables under dir. The price table is always loaded.
func Load(dir string, opts LoadOptions) (*Tables, error) {
	t := &Tables{}

	if err := readJSON(filepath.Join(dir, PriceTableFile), &t.Prices); err != nil {
		return nil, err
	}

	if opts.Categories {
		if err := readJSON(filepath.Join(dir, CategoriesFile), &t.Categories); err != nil {
			return nil, err
		}
	}

	if opts.Colors {
		var raw map[string]ColorEntry
		if err := readJSON(filepath.Join(dir, ColorsFile), &raw); err != nil {
			return nil, err
		}
		t.Colors = make(ColorTable, len(raw))
		for k, v := range raw {
			t.Colors[NormalizeLabel(k)] = v
		}
	}

	if opts.Materials {
		var raw map[string]string
		err := readJSON(filepath.Join(dir, MaterialsFile), &raw)
		switch {
		case err == nil:
			t.Materials = NewMaterialTable(raw)
		case opts.MaterialsOptional && errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	return t, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Msg: "failed to read " + filepath.Base(path), Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ConfigError{Msg: "failed to decode " + filepath.Base(path), Err: err}
	}
	return nil
}
