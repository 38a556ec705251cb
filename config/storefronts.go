package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed storefronts.yaml
var defaultStorefronts []byte

// Storefront describes how to talk to one retail site.
type Storefront struct {
	Name           string            `yaml:"name"`
	Brand          string            `yaml:"brand"`
	Host           string            `yaml:"host"`
	TablesDir      string            `yaml:"tables_dir"`
	WarmupURL      string            `yaml:"warmup_url"`
	StockURL       string            `yaml:"stock_url"`
	ProductPageURL string            `yaml:"product_page_url"`
	Headers        map[string]string `yaml:"headers"`
	Cookies        map[string]string `yaml:"cookies"`
}

type storefrontsFile struct {
	Storefronts []Storefront `yaml:"storefronts"`
}

// LoadStorefronts reads storefront profiles from path, or the embedded defaults when path is empty.
func LoadStorefronts(path string) (map[string]Storefront, error) {
	data := defaultStorefronts
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read storefronts file: %w", err)
		}
		data = b
	}
	return ParseStorefronts(data)
}

// ParseStorefronts decodes a yaml storefronts document keyed by storefront name.
func ParseStorefronts(data []byte) (map[string]Storefront, error) {
	var f storefrontsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode storefronts: %w", err)
	}

	out := make(map[string]Storefront, len(f.Storefronts))
	for _, s := range f.Storefronts {
		if s.Name == "" || s.Brand == "" || s.Host == "" {
			return nil, fmt.Errorf("storefront entry is missing name, brand or host: %+v", s)
		}
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("duplicate storefront %q", s.Name)
		}
		out[s.Name] = s
	}
	return out, nil
}
