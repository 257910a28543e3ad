// Package layout derives heuristic layout signals from invoice text
// without any position data: tabular structure, indentation, column
// separators, and numeric-token density. Hints are computed once per
// document and never mutated.
package layout

import (
	"regexp"

	"github.com/mvandervelden/invoice-engine/internal/segment"
)

var (
	currencyToken  = regexp.MustCompile(`[€$£]\s*[\d,]+\.\d{2}`)
	columnRun      = regexp.MustCompile(`\s{3,}`)
	numberToken    = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*(?:\.\d{2})?\b`)
	leadingSpacing = regexp.MustCompile(`^[ \t]*`)
)

// LineCurrency records the character offsets of each currency token on
// one line.
type LineCurrency struct {
	Index   int
	Offsets []int
}

// LineSeparators records how many column-separator runs a line contains.
type LineSeparators struct {
	Index int
	Count int
}

// LineNumbers records the numeric tokens found on one line.
type LineNumbers struct {
	Index  int
	Tokens []string
}

// Hints are the aggregated, read-only layout facts for one document.
type Hints struct {
	HasTableStructure bool
	CurrencyPositions []LineCurrency
	IndentationLevels []int
	ColumnSeparators  []LineSeparators
	NumberTokens      []LineNumbers
}

// BaseIndent is the minimum observed indentation, treated as the
// document's base indent level. Zero when no indented line was seen.
func (h Hints) BaseIndent() int {
	if len(h.IndentationLevels) == 0 {
		return 0
	}
	min := h.IndentationLevels[0]
	for _, lvl := range h.IndentationLevels[1:] {
		if lvl < min {
			min = lvl
		}
	}
	return min
}

// Analyze computes layout hints for the given lines. Pure function of its
// input; no cross-line state beyond aggregation.
func Analyze(lines []segment.Line) Hints {
	var h Hints
	for _, ln := range lines {
		// A line with more than one currency amount suggests price columns.
		if offsets := currencyOffsets(ln.Raw); len(offsets) > 1 {
			h.HasTableStructure = true
			h.CurrencyPositions = append(h.CurrencyPositions, LineCurrency{
				Index:   ln.Index,
				Offsets: offsets,
			})
		}

		if lead := len(leadingSpacing.FindString(ln.Raw)); lead > 0 && ln.Text != "" {
			h.IndentationLevels = append(h.IndentationLevels, lead)
		}

		if runs := columnRun.FindAllString(ln.Text, -1); len(runs) > 0 {
			h.ColumnSeparators = append(h.ColumnSeparators, LineSeparators{
				Index: ln.Index,
				Count: len(runs),
			})
		}

		if nums := numberToken.FindAllString(ln.Text, -1); len(nums) > 0 {
			h.NumberTokens = append(h.NumberTokens, LineNumbers{
				Index:  ln.Index,
				Tokens: nums,
			})
		}
	}
	return h
}

// CurrencyTokens returns every currency amount token found in s, in order.
func CurrencyTokens(s string) []string {
	return currencyToken.FindAllString(s, -1)
}

// HasCurrencyToken reports whether s contains at least one currency amount.
func HasCurrencyToken(s string) bool {
	return currencyToken.MatchString(s)
}

// FirstCurrencyIndex returns the character offset of the first currency
// token in s, or -1.
func FirstCurrencyIndex(s string) int {
	loc := currencyToken.FindStringIndex(s)
	if loc == nil {
		return -1
	}
	return loc[0]
}

func currencyOffsets(raw string) []int {
	locs := currencyToken.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}
	offsets := make([]int, 0, len(locs))
	for _, loc := range locs {
		offsets = append(offsets, loc[0])
	}
	return offsets
}
