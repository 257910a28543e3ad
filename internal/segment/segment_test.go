package segment

import (
	"testing"

	"github.com/mvandervelden/invoice-engine/constants"
)

const sampleInvoice = `FACTUUR
Acme Consulting B.V.
Hoofdstraat 1, Amsterdam

Factuurnummer: V123456
Datum: 15-03-2024

Omschrijving                 Aantal    Prijs       Totaal
Consulting services               2    € 250.00    € 500.00

Totaal exclusief Btw € 500.00
Btw 21% € 105.00
Totaal te betalen € 605.00`

func TestSegmentPartitionIsTotal(t *testing.T) {
	doc := NewDocument(sampleInvoice)
	part := NewSegmenter(nil).Segment(doc)

	if got, want := part.Size(), len(doc.Lines); got != want {
		t.Fatalf("partition size = %d, want %d", got, want)
	}

	// Every original index appears exactly once across all sections.
	seen := map[int]int{}
	for _, lines := range part {
		for _, sl := range lines {
			seen[sl.Index]++
		}
	}
	for _, ln := range doc.Lines {
		if seen[ln.Index] != 1 {
			t.Errorf("line %d assigned %d times, want 1", ln.Index, seen[ln.Index])
		}
	}
}

func TestSegmentTriggers(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		section    constants.Section
		confidence float64
	}{
		{"invoice header", "FACTUUR", constants.SectionSupplier, 0.9},
		{"english invoice header", "INVOICE #42", constants.SectionSupplier, 0.9},
		{"invoice number label", "Factuurnummer: 2024-001", constants.SectionInvoiceDetails, 0.8},
		{"prefixed number", "V123456", constants.SectionInvoiceDetails, 0.8},
		{"item header", "Omschrijving", constants.SectionLineItems, 0.7},
		{"totals keyword", "Totaal exclusief Btw", constants.SectionTotals, 0.8},
		{"vat keyword", "Btw 21%", constants.SectionTotals, 0.8},
		{"untriggered inherits header", "Hoofdstraat 1", constants.SectionHeader, 0.5},
	}

	s := NewSegmenter(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			part := s.Segment(NewDocument(tc.text))
			lines := part[tc.section]
			if len(lines) != 1 {
				t.Fatalf("section %s has %d lines, want 1", tc.section, len(lines))
			}
			if lines[0].Confidence != tc.confidence {
				t.Errorf("confidence = %v, want %v", lines[0].Confidence, tc.confidence)
			}
		})
	}
}

func TestSegmentFirstTriggerWins(t *testing.T) {
	// Matches both the invoice-header and item-header patterns; the
	// higher-priority invoice trigger claims it.
	part := NewSegmenter(nil).Segment(NewDocument("INVOICE for services"))
	if len(part[constants.SectionSupplier]) != 1 {
		t.Fatalf("supplier section has %d lines, want 1", len(part[constants.SectionSupplier]))
	}
	if len(part[constants.SectionLineItems]) != 0 {
		t.Errorf("line_items section has %d lines, want 0", len(part[constants.SectionLineItems]))
	}
}

func TestSegmentStateCarriesForward(t *testing.T) {
	part := NewSegmenter(nil).Segment(NewDocument("Omschrijving\nsome untriggered line"))
	items := part[constants.SectionLineItems]
	if len(items) != 2 {
		t.Fatalf("line_items section has %d lines, want 2", len(items))
	}
	if items[1].Confidence != 0.5 {
		t.Errorf("inherited confidence = %v, want 0.5", items[1].Confidence)
	}
}

func TestSegmentEmptyDocument(t *testing.T) {
	doc := NewDocument("")
	if len(doc.Lines) != 0 {
		t.Fatalf("empty text produced %d lines", len(doc.Lines))
	}
	part := NewSegmenter(nil).Segment(doc)
	if part.Size() != 0 {
		t.Errorf("empty document partition size = %d, want 0", part.Size())
	}
}

func TestNewDocumentPreservesIndices(t *testing.T) {
	doc := NewDocument("first\n\n  \nsecond")
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}
	if doc.Lines[0].Index != 0 || doc.Lines[1].Index != 3 {
		t.Errorf("indices = %d,%d, want 0,3", doc.Lines[0].Index, doc.Lines[1].Index)
	}
	if _, ok := doc.LineAt(3); !ok {
		t.Error("LineAt(3) not found")
	}
	if _, ok := doc.LineAt(1); ok {
		t.Error("LineAt(1) should not resolve to a blank line")
	}
}
