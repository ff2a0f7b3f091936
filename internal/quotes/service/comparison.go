package service

import (
	"fmt"
	"sort"

	"github.com/cargodesk/cargodesk/internal/quotes/model"
)

// DocumentComparison is one document's row in the comparison report.
type DocumentComparison struct {
	DocumentID string               `json:"documentId"`
	FileName   string               `json:"fileName"`
	Forwarder  model.Forwarder      `json:"forwarder"`
	PriceCount int                  `json:"priceCount"`
	BestPrice  *model.DetectedPrice `json:"bestPrice,omitempty"`
}

// ForwarderSummary aggregates one forwarder's documents in the selection.
type ForwarderSummary struct {
	Forwarder     model.Forwarder      `json:"forwarder"`
	DocumentCount int                  `json:"documentCount"`
	BestPrice     *model.DetectedPrice `json:"bestPrice,omitempty"`
}

// ComparisonReport is the full multi-document comparison.
type ComparisonReport struct {
	Documents       []DocumentComparison `json:"documents"`
	Forwarders      []ForwarderSummary   `json:"forwarders"`
	Cheapest        *DocumentComparison  `json:"cheapest,omitempty"`
	Recommendations []string             `json:"recommendations"`
}

// BuildComparison derives the comparison report from completed analyses. It
// is a pure function of its input; documents without detected prices still
// appear in the report but never win.
func BuildComparison(docs []model.QuoteDocument) ComparisonReport {
	report := ComparisonReport{
		Documents:       make([]DocumentComparison, 0, len(docs)),
		Recommendations: []string{},
	}

	byForwarder := make(map[model.Forwarder]*ForwarderSummary)
	currencies := make(map[string]struct{})
	for _, doc := range docs {
		for _, price := range doc.DetectedPrices {
			currencies[price.Currency] = struct{}{}
		}
		row := DocumentComparison{
			DocumentID: doc.ID.String(),
			FileName:   doc.FileName,
			Forwarder:  doc.Forwarder,
			PriceCount: len(doc.DetectedPrices),
			BestPrice:  bestPrice(doc.DetectedPrices),
		}
		report.Documents = append(report.Documents, row)

		summary, ok := byForwarder[doc.Forwarder]
		if !ok {
			summary = &ForwarderSummary{Forwarder: doc.Forwarder}
			byForwarder[doc.Forwarder] = summary
		}
		summary.DocumentCount++
		if row.BestPrice != nil && (summary.BestPrice == nil || row.BestPrice.Amount < summary.BestPrice.Amount) {
			summary.BestPrice = row.BestPrice
		}
	}

	// Forwarder summaries keep the fixed tab order
	for _, f := range model.KnownForwarders {
		if summary, ok := byForwarder[f]; ok {
			report.Forwarders = append(report.Forwarders, *summary)
		}
	}

	for i := range report.Documents {
		row := &report.Documents[i]
		if row.BestPrice == nil {
			continue
		}
		if report.Cheapest == nil || row.BestPrice.Amount < report.Cheapest.BestPrice.Amount {
			report.Cheapest = row
		}
	}

	if report.Cheapest != nil {
		report.Recommendations = append(report.Recommendations, fmt.Sprintf(
			"%s (%s) has the lowest detected price: %s %.2f",
			report.Cheapest.FileName, report.Cheapest.Forwarder,
			report.Cheapest.BestPrice.Currency, report.Cheapest.BestPrice.Amount,
		))
	}
	for _, row := range report.Documents {
		if row.PriceCount == 0 {
			report.Recommendations = append(report.Recommendations, fmt.Sprintf(
				"No prices were detected in %s; review it manually before deciding.",
				row.FileName,
			))
		}
	}
	if len(report.Forwarders) > 1 && report.Cheapest != nil {
		report.Recommendations = append(report.Recommendations, fmt.Sprintf(
			"Quotes from %d forwarders compared; confirm service levels match before choosing on price alone.",
			len(report.Forwarders),
		))
	}
	// Amounts are ranked as quoted, so a cross-currency ranking is not a
	// like-for-like comparison.
	if len(currencies) > 1 {
		report.Recommendations = append(report.Recommendations,
			"Detected prices use more than one currency; convert to a common currency before comparing amounts.",
		)
	}

	return report
}

// bestPrice returns the lowest detected amount, ties broken by the earlier
// occurrence in the document.
func bestPrice(prices []model.DetectedPrice) *model.DetectedPrice {
	if len(prices) == 0 {
		return nil
	}
	sorted := make([]model.DetectedPrice, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount < sorted[j].Amount
	})
	best := sorted[0]
	return &best
}
