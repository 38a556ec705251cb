package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/raushankrgupta/resale-catalog-parser/catalog"
	"github.com/raushankrgupta/resale-catalog-parser/extract"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/base"
)

// Status is the outcome of one item
type Status string

const (
	StatusInserted  Status = "inserted"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Reason says why an item was skipped or failed
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonFetch            Reason = "fetch"
	ReasonLiteralNotFound  Reason = "literal_not_found"
	ReasonMalformedLiteral Reason = "malformed_literal"
	ReasonPageStructure    Reason = "page_structure"
	ReasonNormalize        Reason = "normalize"
	ReasonInvalidRecord    Reason = "invalid_record"
	ReasonStockUnavailable Reason = "stock_unavailable"
	ReasonPriceUnavailable Reason = "price_unavailable"
	ReasonStoreWrite       Reason = "store_write"
)

// Result is the typed outcome of processing one product URL or stored article
type Result struct {
	Item   string
	Status Status
	Reason Reason
	Err    error
}

func skipped(item string, reason Reason, err error) Result {
	return Result{Item: item, Status: StatusSkipped, Reason: reason, Err: err}
}

// scrapeReason maps a fetch or parse error onto its skip reason
func scrapeReason(err error) Reason {
	switch {
	case errors.Is(err, extract.ErrNotFound):
		return ReasonLiteralNotFound
	case errors.Is(err, extract.ErrMalformedJSON):
		return ReasonMalformedLiteral
	case errors.Is(err, base.ErrPageStructure):
		return ReasonPageStructure
	case errors.Is(err, base.ErrFetch):
		return ReasonFetch
	}
	return ReasonPageStructure
}

func reconcileReason(err error) Reason {
	if errors.Is(err, catalog.ErrPriceUnavailable) {
		return ReasonPriceUnavailable
	}
	return ReasonStockUnavailable
}

// Summary aggregates results of one run
type Summary struct {
	Mode    string
	Total   int
	Counts  map[Status]int
	Reasons map[Reason]int
}

func NewSummary(mode string) *Summary {
	return &Summary{Mode: mode, Counts: map[Status]int{}, Reasons: map[Reason]int{}}
}

func (s *Summary) Add(r Result) {
	s.Total++
	s.Counts[r.Status]++
	if r.Reason != ReasonNone {
		s.Reasons[r.Reason]++
	}
}

// Lines renders the summary, headline count first and reasons in name order
func (s *Summary) Lines() []string {
	var lines []string
	if s.Mode == ModeUpdate {
		lines = append(lines, fmt.Sprintf("Updated: %d", s.Counts[StatusUpdated]))
		lines = append(lines, fmt.Sprintf("Unchanged: %d", s.Counts[StatusUnchanged]))
	} else {
		lines = append(lines, fmt.Sprintf("Inserted: %d", s.Counts[StatusInserted]))
	}

	reasons := make([]string, 0, len(s.Reasons))
	for r := range s.Reasons {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		label := "Skipped"
		if Reason(r) == ReasonStoreWrite {
			label = "Failed"
		}
		lines = append(lines, fmt.Sprintf("%s (%s): %d", label, r, s.Reasons[Reason(r)]))
	}
	lines = append(lines, fmt.Sprintf("Total: %d", s.Total))
	return lines
}
