package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/raushankrgupta/resale-catalog-parser/models"
	"github.com/raushankrgupta/resale-catalog-parser/pricing"
	"github.com/shopspring/decimal"
)

var (
	// ErrStockUnavailable means the availability feed could not be fetched or decoded.
	ErrStockUnavailable = errors.New("stock feed unavailable")
	// ErrPriceUnavailable means the representative product page yielded no price.
	ErrPriceUnavailable = errors.New("current price unavailable")
)

// StockSource reads live stock and price data from a storefront.
type StockSource interface {
	FetchStock(ctx context.Context, article string) (*models.StockFeed, error)
	// FetchListPrice returns the list price shown on the page of the full
	// article+color+size id.
	FetchListPrice(ctx context.Context, fullID string) (decimal.Decimal, error)
}

// Reconciler computes availability updates for stored products.
type Reconciler struct {
	Source StockSource
	Engine *pricing.Engine
}

// Reconcile fetches the article's feed and returns the fields to overwrite.
// An empty feed marks every size out of stock and leaves the price alone.
func (r *Reconciler) Reconcile(ctx context.Context, p models.StoredProduct) (*models.AvailabilityUpdate, error) {
	feed, err := r.Source.FetchStock(ctx, p.Article)
	if err != nil {
		return nil, fmt.Errorf("%w: article %s: %w", ErrStockUnavailable, p.Article, err)
	}

	purchasable := feed.Purchasable()
	if len(purchasable) == 0 {
		return &models.AvailabilityUpdate{Colors: MarkAll(p.Colors, models.OutOfStock)}, nil
	}

	listPrice, err := r.Source.FetchListPrice(ctx, purchasable[0])
	if err != nil {
		return nil, fmt.Errorf("%w: article %s: %w", ErrPriceUnavailable, p.Article, err)
	}

	original := listPrice.InexactFloat64()
	price := r.Engine.Price(listPrice, decimal.NewFromFloat(p.DeliveryPrice))
	return &models.AvailabilityUpdate{
		Colors:        ApplyAvailability(p.Article, p.Colors, purchasable),
		OriginalPrice: &original,
		Price:         &price,
	}, nil
}

// ApplyAvailability returns a copy of colors where each size is in stock
// exactly when article+color code+size code is in purchasable.
func ApplyAvailability(article string, colors []models.ColorVariant, purchasable []string) []models.ColorVariant {
	set := make(map[string]struct{}, len(purchasable))
	for _, id := range purchasable {
		set[id] = struct{}{}
	}

	out := copyColors(colors)
	for i := range out {
		for j := range out[i].Sizes {
			fullID := article + out[i].Code + out[i].Sizes[j].Code
			if _, ok := set[fullID]; ok {
				out[i].Sizes[j].Availability = models.InStock
			} else {
				out[i].Sizes[j].Availability = models.OutOfStock
			}
		}
	}
	return out
}

// MarkAll returns a copy of colors with every size set to state.
func MarkAll(colors []models.ColorVariant, state models.Availability) []models.ColorVariant {
	out := copyColors(colors)
	for i := range out {
		for j := range out[i].Sizes {
			out[i].Sizes[j].Availability = state
		}
	}
	return out
}

func copyColors(colors []models.ColorVariant) []models.ColorVariant {
	out := make([]models.ColorVariant, len(colors))
	for i, c := range colors {
		out[i] = c
		out[i].Sizes = make([]models.SizeVariant, len(c.Sizes))
		copy(out[i].Sizes, c.Sizes)
	}
	return out
}
