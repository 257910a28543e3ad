// Package lineitems recovers invoice line items from the line_items
// section using three strategies in fixed precedence: structured-table
// column split, a strict one-line pattern, and a currency-token
// heuristic. A failed strategy lets the next one run; a line that defeats
// all three is not an item.
package lineitems

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/mvandervelden/invoice-engine/constants"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
	"github.com/mvandervelden/invoice-engine/internal/layout"
	"github.com/mvandervelden/invoice-engine/internal/segment"
)

// Per-strategy confidence tiers.
const (
	tableConfidence     = 0.8
	strictConfidence    = 0.8
	heuristicConfidence = 0.6
	genericConfidence   = 0.5
)

// minDescriptionLen rejects descriptions of 3 characters or fewer.
const minDescriptionLen = 3

var (
	itemHeader   = regexp.MustCompile(`(?i)Omschrijving|Description|Product|Service`)
	totalsMarker = regexp.MustCompile(`(?i)Subtotaal|Totaal|BTW|VAT|Te betalen`)
	columnSplit  = regexp.MustCompile(`\s{2,}`)
	strictLine   = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s+[€$£]\s*([\d,]+\.\d{2})\s*[€$£]\s*([\d,]+\.\d{2})$`)
	qtyPrefix    = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*x\s*(.+)`)
	amountsFirst = regexp.MustCompile(`[€$£]\s*([\d,]+\.\d{2})\s*[€$£]\s*([\d,]+\.\d{2})\s*([^€$£\n]+)`)
)

// Extractor parses line items. Stateless across documents.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract scans the line_items section. The internal sub-state starts
// closed: lines are candidates only after the item-header trigger, until a
// totals marker ends the section. When nothing is recovered but a positive
// excl-tax total exists, one generic item spanning the full amount is
// synthesized.
func (e *Extractor) Extract(doc *segment.Document, part segment.Partition, hints layout.Hints, supplierName string, totalExcl float64) []invoice.LineItem {
	var items []invoice.LineItem
	inItemSection := false

	for _, sl := range part[constants.SectionLineItems] {
		if itemHeader.MatchString(sl.Line) && !layout.HasCurrencyToken(sl.Line) {
			// Pure header row (no amounts): opens the item region.
			inItemSection = true
			continue
		}
		if !inItemSection {
			if itemHeader.MatchString(sl.Line) {
				// Header keyword with amounts on the same line: the region
				// opens and the line itself is a candidate.
				inItemSection = true
			} else {
				continue
			}
		}
		if totalsMarker.MatchString(sl.Line) && !itemHeader.MatchString(sl.Line) {
			inItemSection = false
			continue
		}

		raw := sl.Line
		if ln, ok := doc.LineAt(sl.Index); ok {
			raw = ln.Raw
		}

		if hints.HasTableStructure {
			if item, ok := fromTableStructure(raw); ok {
				item.Confidence = tableConfidence
				item.Source = constants.SourceTableStructured
				items = append(items, item)
				continue
			}
		}
		if item, ok := fromStrictPattern(sl.Line); ok {
			item.Confidence = strictConfidence
			item.Source = constants.SourceStrictPattern
			items = append(items, item)
			continue
		}
		if item, ok := fromCurrencyHeuristic(sl.Line); ok {
			item.Confidence = heuristicConfidence
			item.Source = constants.SourceCurrencyHeuristic
			items = append(items, item)
		}
	}

	if len(items) == 0 && totalExcl > 0 {
		items = append(items, syntheticItem(supplierName, totalExcl))
	}

	e.logger.Debug("lineitems.extract.ok", "items", len(items), "table_structure", hints.HasTableStructure)
	return items
}

// fromTableStructure splits the original (non-trimmed) line on runs of 2+
// spaces. It needs at least 3 columns, a non-trivial first column, and at
// least one currency token among the rest.
func fromTableStructure(raw string) (invoice.LineItem, bool) {
	parts := columnSplit.Split(strings.TrimRight(raw, " \t"), -1)
	if len(parts) < 3 {
		return invoice.LineItem{}, false
	}
	description := strings.TrimSpace(parts[0])
	if len(description) < minDescriptionLen {
		return invoice.LineItem{}, false
	}

	var amounts []float64
	for _, part := range parts[1:] {
		for _, tok := range layout.CurrencyTokens(part) {
			amt, err := invoice.ParseAmount(tok)
			if err != nil {
				continue
			}
			amounts = append(amounts, amt)
		}
	}
	if len(amounts) == 0 {
		return invoice.LineItem{}, false
	}

	if len(amounts) == 1 {
		// One amount: treat it as the line total with quantity 1.
		return invoice.LineItem{
			Description: description,
			Quantity:    1,
			UnitPrice:   amounts[0],
			Total:       amounts[0],
		}, true
	}

	unitPrice := amounts[len(amounts)-2]
	total := amounts[len(amounts)-1]
	quantity := 0.0
	if unitPrice != 0 {
		quantity = math.Round(total/unitPrice*100) / 100
	}
	if quantity == 0 {
		quantity = 1
	}
	return invoice.LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       total,
	}, true
}

// fromStrictPattern expects "description  qty  €unit  €total" on one line.
func fromStrictPattern(line string) (invoice.LineItem, bool) {
	m := strictLine.FindStringSubmatch(line)
	if m == nil {
		return invoice.LineItem{}, false
	}
	quantity, err := invoice.ParseAmount(m[2])
	if err != nil {
		return invoice.LineItem{}, false
	}
	unitPrice, err := invoice.ParseAmount(m[3])
	if err != nil {
		return invoice.LineItem{}, false
	}
	total, err := invoice.ParseAmount(m[4])
	if err != nil {
		return invoice.LineItem{}, false
	}
	return invoice.LineItem{
		Description: strings.TrimSpace(m[1]),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       total,
	}, true
}

// fromCurrencyHeuristic takes everything before the first currency token
// as the description and the first token as the amount, honoring an
// optional leading "N x " quantity prefix. When nothing usable precedes
// the amounts it falls back to the amounts-first shape
// "€unit €total description" common in flattened PDF text.
func fromCurrencyHeuristic(line string) (invoice.LineItem, bool) {
	idx := layout.FirstCurrencyIndex(line)
	if idx < 0 {
		return invoice.LineItem{}, false
	}
	description := strings.TrimSpace(line[:idx])
	if len(description) <= minDescriptionLen {
		return fromAmountsFirst(line)
	}
	tokens := layout.CurrencyTokens(line)
	amount, err := invoice.ParseAmount(tokens[0])
	if err != nil {
		return invoice.LineItem{}, false
	}

	quantity := 1.0
	if m := qtyPrefix.FindStringSubmatch(description); m != nil {
		if q, err := invoice.ParseAmount(m[1]); err == nil && q > 0 {
			quantity = q
			description = strings.TrimSpace(m[2])
		}
	}
	return invoice.LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   amount / quantity,
		Total:       amount,
	}, true
}

func fromAmountsFirst(line string) (invoice.LineItem, bool) {
	m := amountsFirst.FindStringSubmatch(line)
	if m == nil {
		return invoice.LineItem{}, false
	}
	unitPrice, err := invoice.ParseAmount(m[1])
	if err != nil {
		return invoice.LineItem{}, false
	}
	total, err := invoice.ParseAmount(m[2])
	if err != nil || total <= 0 {
		return invoice.LineItem{}, false
	}
	description := strings.TrimSpace(m[3])
	if len(description) <= minDescriptionLen {
		return invoice.LineItem{}, false
	}
	lower := strings.ToLower(description)
	if strings.Contains(lower, "totaal") || strings.Contains(lower, "btw") {
		return invoice.LineItem{}, false
	}

	quantity := 1.0
	if unitPrice > 0 {
		quantity = math.Round(total/unitPrice*100) / 100
	}
	if quantity == 0 {
		quantity = 1
	}
	return invoice.LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       total,
	}, true
}

func syntheticItem(supplierName string, totalExcl float64) invoice.LineItem {
	description := "Services"
	if supplierName != "" {
		description = fmt.Sprintf("Services from %s", supplierName)
	}
	return invoice.LineItem{
		Description: description,
		Quantity:    1,
		UnitPrice:   totalExcl,
		Total:       totalExcl,
		Confidence:  genericConfidence,
		Source:      constants.SourceGenericFallback,
	}
}
