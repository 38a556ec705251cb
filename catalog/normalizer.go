package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/raushankrgupta/resale-catalog-parser/models"
	"github.com/raushankrgupta/resale-catalog-parser/reference"
	"github.com/raushankrgupta/resale-catalog-parser/utils"
)

// Normalizer builds canonical records for one brand.
type Normalizer struct {
	Brand      string
	Tables     *reference.Tables
	Translator Translator
	Images     ImageSink
	Materials  MaterialMode
	Hex        HexMode
}

// Normalize converts page into a record for category. Prices are left for the
// caller; translation and image failures degrade fields instead of failing.
func (n *Normalizer) Normalize(ctx context.Context, page *Page, category reference.Category, log *strings.Builder) (*models.ProductRecord, error) {
	if page.Article == "" {
		return nil, fmt.Errorf("normalize %s: empty article", page.URL)
	}

	record := &models.ProductRecord{
		Name:          n.translate(ctx, page.Name, log),
		Article:       page.Article,
		UniqueArticle: models.UniqueArticleFor(n.Brand, page.Article),
		Brand:         n.Brand,
		ParseType:     category.ParseType,
		Category:      category.Category,
		Subcategory:   category.Subcategory,
		Gender:        category.Gender,
		Description:   n.translate(ctx, page.Description, log),
		Material:      n.material(ctx, page, log),
		OriginalPrice: page.ListPrice.InexactFloat64(),
		DeliveryPrice: category.DeliveryPrice.InexactFloat64(),
		Care:          models.DefaultCare,
	}

	record.Colors = make([]models.ColorVariant, 0, len(page.Colors))
	for _, raw := range page.Colors {
		record.Colors = append(record.Colors, n.color(ctx, page.Article, raw, log))
	}
	return record, nil
}

func (n *Normalizer) color(ctx context.Context, article string, raw RawColor, log *strings.Builder) models.ColorVariant {
	name, hex, known := ResolveColor(n.Tables.Colors, raw.Name, raw.Hex, n.Hex)
	if !known {
		utils.AddToLogMessage(log, fmt.Sprintf("Color %q not in color table, using %s", raw.Name, name))
	}

	if n.Images != nil {
		key := ImageKey{Brand: n.Brand, Article: article, Color: name}
		kept, err := n.Images.Publish(ctx, key, raw.Images)
		if err != nil {
			utils.AddToLogMessage(log, fmt.Sprintf("Image publish failed for %s: %v", key, err))
		} else {
			utils.AddToLogMessage(log, fmt.Sprintf("Published %d of %d images for %s", kept, len(raw.Images), key))
		}
	}

	sizes := make([]models.SizeVariant, 0, len(raw.Sizes))
	for _, s := range raw.Sizes {
		sizes = append(sizes, models.SizeVariant{Name: s.Name, Code: s.Code, Availability: models.AvailabilityUnset})
	}

	return models.ColorVariant{
		Name:         name,
		OriginalName: raw.Name,
		Code:         raw.Code,
		HexCode:      hex,
		Sizes:        sizes,
	}
}

func (n *Normalizer) material(ctx context.Context, page *Page, log *strings.Builder) string {
	switch n.Materials {
	case MaterialFromDescription:
		return ScanMaterials(page.Description, n.Tables.Materials)
	default:
		return n.translate(ctx, page.Material, log)
	}
}

func (n *Normalizer) translate(ctx context.Context, text string, log *strings.Builder) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if n.Translator == nil {
		return text
	}
	out, err := n.Translator.Translate(ctx, text)
	if err != nil {
		utils.AddToLogMessage(log, fmt.Sprintf("Translation failed: %v", err))
		return ""
	}
	return out
}
