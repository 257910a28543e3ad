package pipeline

import (
	"github.com/mvandervelden/invoice-engine/internal/fields"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
)

// Bucket weights for the overall document confidence.
const (
	supplierWeight = 0.3
	itemsWeight    = 0.4
	totalsWeight   = 0.3
)

// overallConfidence combines three weighted buckets into one score. The
// supplier and totals buckets are all-or-nothing; the items bucket
// contributes the mean per-item confidence and is excluded entirely when
// no items exist, so the result stays in [0,1] even for empty input.
func overallConfidence(bestSupplierScore, supplierThreshold float64, items []invoice.LineItem, set fields.Set) float64 {
	score := 0.0
	weights := 0.0

	weights += supplierWeight
	if bestSupplierScore >= supplierThreshold && bestSupplierScore > 0 {
		score += supplierWeight
	}

	if len(items) > 0 {
		weights += itemsWeight
		sum := 0.0
		for _, item := range items {
			sum += item.Confidence
		}
		score += sum / float64(len(items)) * itemsWeight
	}

	weights += totalsWeight
	if set.TotalIncl.Present && set.VATAmount.Present {
		score += totalsWeight
	}

	return score / weights
}
