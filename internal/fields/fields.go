// Package fields extracts the scalar invoice fields (supplier, invoice
// number, date, totals, currency) from raw text using ordered fallback
// chains. Each strategy is a pattern plus a normalizer plus a confidence
// increment; strategies run left to right and the first one producing a
// non-empty validated value wins. A missing field is left at its zero
// value with no confidence penalty: extraction never fails.
package fields

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mvandervelden/invoice-engine/constants"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
)

// baseConfidence is the floor every winning strategy builds on; the
// strategy's increment is added on top, capped at 1.0.
const baseConfidence = 0.5

// defaultDateConfidence is assigned when no date pattern matched and the
// run's current date is substituted.
const defaultDateConfidence = 0.3

// strategy is one candidate extraction technique in a fallback chain.
type strategy struct {
	id        string
	pattern   *regexp.Regexp
	group     int
	increment float64
	// normalize may reject a raw capture by returning ok=false, which lets
	// the next strategy in the chain run.
	normalize func(raw string) (string, bool)
}

// Set holds every extracted scalar field of one document.
type Set struct {
	Supplier      invoice.Field
	InvoiceNumber invoice.Field
	InvoiceDate   invoice.Field
	Currency      invoice.Field
	TotalIncl     invoice.AmountField
	VATAmount     invoice.AmountField
	TotalExcl     invoice.AmountField
}

// Sources returns the strategy id per field name, for the result's
// field_sources map. Fields nothing produced are omitted.
func (s Set) Sources() map[string]string {
	out := make(map[string]string, 7)
	put := func(name, source string) {
		if source != "" {
			out[name] = source
		}
	}
	put("supplier_name", s.Supplier.Source)
	put("invoice_number", s.InvoiceNumber.Source)
	put("invoice_date", s.InvoiceDate.Source)
	put("currency", s.Currency.Source)
	put("total_incl_vat", s.TotalIncl.Source)
	put("vat_amount", s.VATAmount.Source)
	put("total_excl_vat", s.TotalExcl.Source)
	return out
}

// Extractor applies the fallback chains. Stateless; safe for concurrent
// use across documents.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, now: time.Now}
}

// WithClock overrides the extraction run's clock, used by the date
// default. Mainly for tests.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

var supplierChain = []strategy{
	{
		id:        constants.SourceAfterHeader,
		pattern:   regexp.MustCompile(`(?i)(?:FACTUUR|INVOICE)[^\S\n]*\n([^\n]+)`),
		group:     1,
		increment: 0.2,
		normalize: nonTrivialText,
	},
	{
		id:        constants.SourceCompanySuffix,
		pattern:   regexp.MustCompile(`([A-Z][A-Za-z&. ]+?(?:B\.V\.|BV\b|N\.V\.|NV\b|VOF\b|Holding|Group|Company))`),
		group:     1,
		increment: 0.2,
		normalize: nonTrivialText,
	},
}

var invoiceNumberChain = []strategy{
	{
		id:        constants.SourceNumberLabeled,
		pattern:   regexp.MustCompile(`(?i)(?:Factuurnummer|Invoice\s*(?:No\.?|Number)|Factuur)\s*:?\s*([A-Z]?\d[\w-]*)`),
		group:     1,
		increment: 0.15,
		normalize: trimText,
	},
	{
		id:        constants.SourceNumberPrefixed,
		pattern:   regexp.MustCompile(`\b(V\d{6,})\b`),
		group:     1,
		increment: 0.15,
		normalize: trimText,
	},
}

var dateChain = []strategy{
	{
		id:        constants.SourceDateLabeled,
		pattern:   regexp.MustCompile(`(?i)(?:Datum|Date)\s*:?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
		group:     1,
		increment: 0.15,
		normalize: normalizeDate,
	},
	{
		id:        constants.SourceDateDMY,
		pattern:   regexp.MustCompile(`\b(\d{1,2}[-/]\d{1,2}[-/]\d{4})\b`),
		group:     1,
		increment: 0.1,
		normalize: normalizeDate,
	},
	{
		id:        constants.SourceDateISO,
		pattern:   regexp.MustCompile(`\b(\d{4}[-/]\d{1,2}[-/]\d{1,2})\b`),
		group:     1,
		increment: 0.1,
		normalize: normalizeDate,
	},
}

var totalInclChain = []strategy{
	{
		id:        constants.SourceTotalLabeled,
		pattern:   regexp.MustCompile(`(?i)(?:Totaal te betalen|Total to pay|Grand total|Total incl\w*|Totaal incl\w*)[^\n]*?[€$£]\s*([\d,]+\.\d{2})`),
		group:     1,
		increment: 0.25,
		normalize: trimText,
	},
	{
		id:        constants.SourceTotalAmountFirst,
		pattern:   regexp.MustCompile(`(?i)[€$£]\s*([\d,]+\.\d{2})\s*(?:Totaal te betalen|Totaal|Total)`),
		group:     1,
		increment: 0.25,
		normalize: trimText,
	},
}

var vatChain = []strategy{
	{
		id:        constants.SourceVATLabeled,
		pattern:   regexp.MustCompile(`(?i)(?:Btw|VAT)\s*\d{1,2}(?:[.,]\d+)?%[^\n]*?[€$£]\s*([\d,]+\.\d{2})`),
		group:     1,
		increment: 0.2,
		normalize: trimText,
	},
	{
		id:        constants.SourceVATAmountFirst,
		pattern:   regexp.MustCompile(`(?i)[€$£]\s*([\d,]+\.\d{2})\s*(?:Btw|VAT)`),
		group:     1,
		increment: 0.2,
		normalize: trimText,
	},
}

var totalExclChain = []strategy{
	{
		id:        constants.SourceExclLabeled,
		pattern:   regexp.MustCompile(`(?i)(?:Totaal exclusief\s*Btw|Subtotaal|Subtotal|Total excl\w*)[^\n]*?[€$£]\s*([\d,]+\.\d{2})`),
		group:     1,
		increment: 0.2,
		normalize: trimText,
	},
	{
		id:        constants.SourceExclAmountFirst,
		pattern:   regexp.MustCompile(`(?i)[€$£]\s*([\d,]+\.\d{2})\s*Totaal exclusief`),
		group:     1,
		increment: 0.2,
		normalize: trimText,
	},
}

// Extract runs every chain over the full text and applies cross-field
// repair on the totals.
func (e *Extractor) Extract(text string) Set {
	var set Set
	set.Supplier = runChain(text, supplierChain)
	set.InvoiceNumber = runChain(text, invoiceNumberChain)
	set.InvoiceDate = runChain(text, dateChain)
	set.Currency = detectCurrency(text)

	set.TotalIncl = runAmountChain(text, totalInclChain)
	set.VATAmount = runAmountChain(text, vatChain)
	set.TotalExcl = runAmountChain(text, totalExclChain)

	// No date pattern matched: default to the run's current date but keep
	// the confidence low so validation flags it.
	if set.InvoiceDate.Value == "" {
		set.InvoiceDate = invoice.Field{
			Value:      e.now().UTC().Format("2006-01-02"),
			Confidence: defaultDateConfidence,
			Source:     constants.SourceDateDefault,
		}
	}

	deriveTotals(&set)

	e.logger.Debug("fields.extract.ok",
		"supplier", set.Supplier.Value,
		"invoice_number", set.InvoiceNumber.Value,
		"date", set.InvoiceDate.Value,
		"total_incl", set.TotalIncl.Value,
	)
	return set
}

func runChain(text string, chain []strategy) invoice.Field {
	for _, st := range chain {
		m := st.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, ok := st.normalize(m[st.group])
		if !ok || value == "" {
			continue
		}
		return invoice.Field{
			Value:      value,
			Confidence: capConfidence(baseConfidence + st.increment),
			Source:     st.id,
		}
	}
	return invoice.Field{}
}

func runAmountChain(text string, chain []strategy) invoice.AmountField {
	for _, st := range chain {
		m := st.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amt, err := invoice.ParseAmount(m[st.group])
		if err != nil {
			// Unparseable amount skips this strategy only.
			continue
		}
		return invoice.AmountField{
			Value:      amt,
			Present:    true,
			Confidence: capConfidence(baseConfidence + st.increment),
			Source:     st.id,
		}
	}
	return invoice.AmountField{}
}

// deriveTotals computes the missing member of {incl, tax, excl} when
// exactly two are present. With only one present nothing is derived.
func deriveTotals(set *Set) {
	incl, vat, excl := set.TotalIncl, set.VATAmount, set.TotalExcl
	derived := func(v float64, a, b invoice.AmountField) invoice.AmountField {
		return invoice.AmountField{
			Value:      v,
			Present:    true,
			Confidence: minFloat(a.Confidence, b.Confidence),
			Source:     constants.SourceDerived,
		}
	}
	switch {
	case incl.Present && vat.Present && !excl.Present:
		set.TotalExcl = derived(incl.Value-vat.Value, incl, vat)
	case excl.Present && vat.Present && !incl.Present:
		set.TotalIncl = derived(excl.Value+vat.Value, excl, vat)
	case incl.Present && excl.Present && !vat.Present:
		set.VATAmount = derived(incl.Value-excl.Value, incl, excl)
	}
}

func detectCurrency(text string) invoice.Field {
	symbols := []struct {
		symbol string
		code   string
	}{
		{"€", "EUR"},
		{"£", "GBP"},
		{"$", "USD"},
	}
	for _, s := range symbols {
		if strings.Contains(text, s.symbol) {
			return invoice.Field{
				Value:      s.code,
				Confidence: capConfidence(baseConfidence + 0.2),
				Source:     constants.SourceCurrencySymbol,
			}
		}
	}
	return invoice.Field{
		Value:      "EUR",
		Confidence: baseConfidence,
		Source:     constants.SourceCurrencyDefault,
	}
}

func trimText(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, s != ""
}

func nonTrivialText(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, len(s) > 3
}

var dateSeparator = regexp.MustCompile(`[-/]`)

// normalizeDate converts DD-MM-YYYY, DD/MM/YYYY, or YYYY-MM-DD into
// ISO 8601 calendar-date form, preserving day/month/year.
func normalizeDate(raw string) (string, bool) {
	parts := dateSeparator.Split(strings.TrimSpace(raw), -1)
	if len(parts) != 3 {
		return "", false
	}
	if len(parts[0]) == 4 {
		return fmt.Sprintf("%s-%s-%s", parts[0], pad2(parts[1]), pad2(parts[2])), true
	}
	return fmt.Sprintf("%s-%s-%s", parts[2], pad2(parts[1]), pad2(parts[0])), true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func capConfidence(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
