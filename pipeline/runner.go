// Package pipeline drives the create and update runs of one storefront.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/raushankrgupta/resale-catalog-parser/catalog"
	"github.com/raushankrgupta/resale-catalog-parser/models"
	"github.com/raushankrgupta/resale-catalog-parser/pricing"
	"github.com/raushankrgupta/resale-catalog-parser/reference"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers"
	"github.com/raushankrgupta/resale-catalog-parser/utils"
)

const (
	ModeCreate = "create"
	ModeUpdate = "update"
)

// Store is the catalog collection a run reads and writes
type Store interface {
	Insert(ctx context.Context, record *models.ProductRecord) (string, error)
	FindByBrand(ctx context.Context, brand string) ([]models.StoredProduct, error)
	UpdateAvailability(ctx context.Context, brand, article string, update *models.AvailabilityUpdate) (bool, error)
}

// Recorder receives one call per processed item
type Recorder interface {
	RecordItem(status, reason string)
}

// Runner holds everything one run needs. Normalizer is only used by Create.
type Runner struct {
	Storefront scrapers.Storefront
	Store      Store
	Tables     *reference.Tables
	Engine     *pricing.Engine
	Normalizer *catalog.Normalizer
	Metrics    Recorder
}

// Create scrapes every product of the category and inserts one record per page.
// Per-product failures are counted, never returned.
func (r *Runner) Create(ctx context.Context, categoryID string) (*Summary, error) {
	category, err := r.Tables.Category(categoryID)
	if err != nil {
		return nil, err
	}

	if err := r.Storefront.Warmup(ctx); err != nil {
		fmt.Printf("[Pipeline] Warmup failed, continuing without session: %v\n", err)
	}

	urls, err := r.Storefront.ListProductURLs(ctx, category.URL)
	if err != nil {
		return nil, fmt.Errorf("list category %s: %w", categoryID, err)
	}
	fmt.Printf("[Pipeline] %d products found in category %s\n", len(urls), categoryID)

	summary := NewSummary(ModeCreate)
	for i, url := range urls {
		fmt.Printf("[Pipeline] %d of %d: %s\n", i+1, len(urls), url)
		r.record(summary, r.createOne(ctx, url, category))
	}

	fmt.Printf("Inserted: %d\n", summary.Counts[StatusInserted])
	return summary, nil
}

func (r *Runner) createOne(ctx context.Context, url string, category reference.Category) Result {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessages("Pipeline", url, &logMessageBuilder)

	page, err := r.Storefront.ScrapeProduct(ctx, url)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Skipping %s: %v", url, err))
		return skipped(url, scrapeReason(err), err)
	}

	record, err := r.Normalizer.Normalize(ctx, page, category, &logMessageBuilder)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Skipping %s: %v", url, err))
		return skipped(url, ReasonNormalize, err)
	}
	record.Price = r.Engine.Price(page.ListPrice, category.DeliveryPrice)

	if err := utils.ValidationError(record); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Invalid record %s: %v", record.UniqueArticle, err))
		return skipped(url, ReasonInvalidRecord, err)
	}

	id, err := r.Store.Insert(ctx, record)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Store write failed: %v", err))
		return Result{Item: url, Status: StatusFailed, Reason: ReasonStoreWrite, Err: err}
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Inserted %s (%s), price %d", record.UniqueArticle, id, record.Price))
	return Result{Item: url, Status: StatusInserted}
}

// Update reconciles stock and price of every stored product of the storefront's brand.
func (r *Runner) Update(ctx context.Context) (*Summary, error) {
	brand := r.Storefront.Brand()
	products, err := r.Store.FindByBrand(ctx, brand)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[Pipeline] %d stored products of %s\n", len(products), brand)

	if err := r.Storefront.Warmup(ctx); err != nil {
		fmt.Printf("[Pipeline] Warmup failed, continuing without session: %v\n", err)
	}

	reconciler := &catalog.Reconciler{Source: r.Storefront, Engine: r.Engine}
	summary := NewSummary(ModeUpdate)
	for i, p := range products {
		fmt.Printf("[Pipeline] %d of %d: %s\n", i+1, len(products), p.Article)
		r.record(summary, r.updateOne(ctx, reconciler, p))
	}

	fmt.Printf("Updated: %d\n", summary.Counts[StatusUpdated])
	return summary, nil
}

func (r *Runner) updateOne(ctx context.Context, reconciler *catalog.Reconciler, p models.StoredProduct) Result {
	upd, err := reconciler.Reconcile(ctx, p)
	if err != nil {
		fmt.Printf("[Pipeline] Skipping %s: %v\n", p.Article, err)
		return skipped(p.Article, reconcileReason(err), err)
	}

	changed, err := r.Store.UpdateAvailability(ctx, p.Brand, p.Article, upd)
	if err != nil {
		fmt.Printf("[Pipeline] Store write failed for %s: %v\n", p.Article, err)
		return Result{Item: p.Article, Status: StatusFailed, Reason: ReasonStoreWrite, Err: err}
	}
	if !changed {
		return Result{Item: p.Article, Status: StatusUnchanged}
	}
	return Result{Item: p.Article, Status: StatusUpdated}
}

func (r *Runner) record(summary *Summary, res Result) {
	summary.Add(res)
	if r.Metrics != nil {
		r.Metrics.RecordItem(string(res.Status), string(res.Reason))
	}
}
