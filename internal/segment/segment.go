// Package segment classifies invoice text lines into document sections
// using a stateful keyword scan. The classification is a single
// left-to-right pass over the lines; a matching trigger both switches the
// current section and claims the line for the new section, and a line with
// no trigger stays in whatever section is current.
package segment

import (
	"log/slog"
	"regexp"

	"github.com/mvandervelden/invoice-engine/constants"
)

// SectionLine is one line assigned to a section, with the confidence of
// the trigger that put it there (inherited lines carry the base confidence).
type SectionLine struct {
	Line       string
	Index      int
	Confidence float64
}

// Partition maps every section label to its lines. Every document line
// belongs to exactly one section.
type Partition map[constants.Section][]SectionLine

// Size returns the total number of lines across all sections.
func (p Partition) Size() int {
	n := 0
	for _, lines := range p {
		n += len(lines)
	}
	return n
}

// trigger is one section-transition rule. Triggers are tested in order;
// the first match wins.
type trigger struct {
	pattern    *regexp.Regexp
	next       constants.Section
	confidence float64
}

// inheritConfidence is assigned to lines appended with no trigger.
const inheritConfidence = 0.5

var defaultTriggers = []trigger{
	{regexp.MustCompile(`(?i)FACTUUR|INVOICE`), constants.SectionSupplier, 0.9},
	{regexp.MustCompile(`(?i)Factuurnummer|Invoice\s*Number|V\d+`), constants.SectionInvoiceDetails, 0.8},
	{regexp.MustCompile(`(?i)Omschrijving|Description|Product|Service`), constants.SectionLineItems, 0.7},
	{regexp.MustCompile(`(?i)Totaal|Total|Btw|VAT`), constants.SectionTotals, 0.8},
	{regexp.MustCompile(`(?i)[€$£]\s*[\d,]+\.\d{2}.*te betalen|te betalen.*[€$£]\s*[\d,]+\.\d{2}`), constants.SectionTotals, 0.8},
}

// Segmenter assigns lines to sections. It is stateless across documents
// and safe for concurrent use.
type Segmenter struct {
	triggers []trigger
	logger   *slog.Logger
}

func NewSegmenter(logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{triggers: defaultTriggers, logger: logger}
}

// Segment partitions the document's lines into sections. The scan starts
// in the header section; an all-header document is valid output, not an
// error.
func (s *Segmenter) Segment(doc *Document) Partition {
	part := Partition{}
	for _, sec := range constants.AllSections() {
		part[sec] = nil
	}

	current := constants.SectionHeader
	for _, ln := range doc.Lines {
		matched := false
		for _, tr := range s.triggers {
			if tr.pattern.MatchString(ln.Text) {
				current = tr.next
				part[current] = append(part[current], SectionLine{
					Line:       ln.Text,
					Index:      ln.Index,
					Confidence: tr.confidence,
				})
				matched = true
				break
			}
		}
		if !matched {
			part[current] = append(part[current], SectionLine{
				Line:       ln.Text,
				Index:      ln.Index,
				Confidence: inheritConfidence,
			})
		}
	}

	s.logger.Debug("segment.ok",
		"lines", len(doc.Lines),
		"supplier", len(part[constants.SectionSupplier]),
		"line_items", len(part[constants.SectionLineItems]),
		"totals", len(part[constants.SectionTotals]),
	)
	return part
}
