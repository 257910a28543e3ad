package lineitems

import (
	"testing"

	"github.com/mvandervelden/invoice-engine/constants"
	"github.com/mvandervelden/invoice-engine/internal/layout"
	"github.com/mvandervelden/invoice-engine/internal/segment"
)

func extract(t *testing.T, text, supplier string, totalExcl float64) []struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
	Confidence  float64
	Source      string
} {
	t.Helper()
	doc := segment.NewDocument(text)
	part := segment.NewSegmenter(nil).Segment(doc)
	hints := layout.Analyze(doc.Lines)
	items := NewExtractor(nil).Extract(doc, part, hints, supplier, totalExcl)

	out := make([]struct {
		Description string
		Quantity    float64
		UnitPrice   float64
		Total       float64
		Confidence  float64
		Source      string
	}, len(items))
	for i, item := range items {
		out[i].Description = item.Description
		out[i].Quantity = item.Quantity
		out[i].UnitPrice = item.UnitPrice
		out[i].Total = item.Total
		out[i].Confidence = item.Confidence
		out[i].Source = item.Source
	}
	return out
}

func TestSingleLineCurrencyPair(t *testing.T) {
	items := extract(t, "€ 50.00 € 50.00 Internet service", "", 0)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.Description != "Internet service" {
		t.Errorf("description = %q", it.Description)
	}
	if it.Quantity != 1 || it.UnitPrice != 50 || it.Total != 50 {
		t.Errorf("qty=%v unit=%v total=%v, want 1/50/50", it.Quantity, it.UnitPrice, it.Total)
	}
	if it.Source != constants.SourceCurrencyHeuristic {
		t.Errorf("source = %q", it.Source)
	}
	if it.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", it.Confidence)
	}
}

func TestTableStructureExtraction(t *testing.T) {
	text := "Omschrijving                 Aantal    Prijs       Totaal\n" +
		"Consulting hours                  2    € 250.00    € 500.00"
	items := extract(t, text, "", 0)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.Description != "Consulting hours" {
		t.Errorf("description = %q", it.Description)
	}
	if it.Quantity != 2 || it.UnitPrice != 250 || it.Total != 500 {
		t.Errorf("qty=%v unit=%v total=%v, want 2/250/500", it.Quantity, it.UnitPrice, it.Total)
	}
	if it.Source != constants.SourceTableStructured {
		t.Errorf("source = %q", it.Source)
	}
	if it.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", it.Confidence)
	}
}

func TestStrictPatternExtraction(t *testing.T) {
	text := "Omschrijving\nHosting plan 2 € 10.00 € 20.00"
	items := extract(t, text, "", 0)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.Description != "Hosting plan" {
		t.Errorf("description = %q", it.Description)
	}
	if it.Quantity != 2 || it.UnitPrice != 10 || it.Total != 20 {
		t.Errorf("qty=%v unit=%v total=%v, want 2/10/20", it.Quantity, it.UnitPrice, it.Total)
	}
	if it.Source != constants.SourceStrictPattern {
		t.Errorf("source = %q", it.Source)
	}
}

func TestQuantityPrefix(t *testing.T) {
	text := "Omschrijving\n3 x Widget deluxe € 30.00"
	items := extract(t, text, "", 0)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.Description != "Widget deluxe" {
		t.Errorf("description = %q", it.Description)
	}
	if it.Quantity != 3 || it.UnitPrice != 10 || it.Total != 30 {
		t.Errorf("qty=%v unit=%v total=%v, want 3/10/30", it.Quantity, it.UnitPrice, it.Total)
	}
}

func TestLinesOutsideSectionIgnored(t *testing.T) {
	// A lone line with no section trigger stays in the header section
	// and is never considered an item candidate.
	text := "Hosting plan 2 € 10.00 € 20.00"
	items := extract(t, text, "", 0)
	if len(items) != 0 {
		t.Fatalf("got %d items without a header, want 0", len(items))
	}
}

func TestEndTriggerClosesSection(t *testing.T) {
	// "Te betalen" carries no segmenter trigger, so it stays in the
	// line_items section and must close the item region there.
	text := "Omschrijving\nHosting plan 2 € 10.00 € 20.00\nTe betalen\nExtra charge 1 € 5.00 € 5.00"
	items := extract(t, text, "", 0)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Description != "Hosting plan" {
		t.Errorf("description = %q", items[0].Description)
	}
}

func TestShortDescriptionDiscarded(t *testing.T) {
	text := "Omschrijving\nab € 10.00"
	items := extract(t, text, "", 0)
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
}

func TestGenericFallback(t *testing.T) {
	items := extract(t, "nothing that parses", "Acme B.V.", 250)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.Description != "Services from Acme B.V." {
		t.Errorf("description = %q", it.Description)
	}
	if it.Quantity != 1 || it.UnitPrice != 250 || it.Total != 250 {
		t.Errorf("qty=%v unit=%v total=%v, want 1/250/250", it.Quantity, it.UnitPrice, it.Total)
	}
	if it.Source != constants.SourceGenericFallback {
		t.Errorf("source = %q", it.Source)
	}
	if it.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", it.Confidence)
	}
}

func TestNoFallbackWithoutExclTotal(t *testing.T) {
	items := extract(t, "nothing that parses", "Acme B.V.", 0)
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
}
