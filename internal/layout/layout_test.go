package layout

import (
	"testing"

	"github.com/mvandervelden/invoice-engine/internal/segment"
)

func TestAnalyzeTableStructure(t *testing.T) {
	doc := segment.NewDocument("Consulting    2    € 250.00    € 500.00")
	h := Analyze(doc.Lines)
	if !h.HasTableStructure {
		t.Fatal("two currency tokens on one line should flag table structure")
	}
	if len(h.CurrencyPositions) != 1 {
		t.Fatalf("got %d currency-position entries, want 1", len(h.CurrencyPositions))
	}
	if got := len(h.CurrencyPositions[0].Offsets); got != 2 {
		t.Errorf("got %d offsets, want 2", got)
	}
}

func TestAnalyzeSingleAmountIsNotTable(t *testing.T) {
	doc := segment.NewDocument("Internet service € 50.00\nTotaal € 50.00")
	h := Analyze(doc.Lines)
	if h.HasTableStructure {
		t.Error("one currency token per line should not flag table structure")
	}
}

func TestAnalyzeIndentation(t *testing.T) {
	doc := segment.NewDocument("no indent\n  two spaces\n    four spaces")
	h := Analyze(doc.Lines)
	if len(h.IndentationLevels) != 2 {
		t.Fatalf("got %d indentation samples, want 2", len(h.IndentationLevels))
	}
	if got := h.BaseIndent(); got != 2 {
		t.Errorf("BaseIndent = %d, want 2", got)
	}
}

func TestBaseIndentEmpty(t *testing.T) {
	if got := (Hints{}).BaseIndent(); got != 0 {
		t.Errorf("BaseIndent of empty hints = %d, want 0", got)
	}
}

func TestAnalyzeColumnSeparators(t *testing.T) {
	doc := segment.NewDocument("Description   Qty   Price")
	h := Analyze(doc.Lines)
	if len(h.ColumnSeparators) != 1 {
		t.Fatalf("got %d separator entries, want 1", len(h.ColumnSeparators))
	}
	if h.ColumnSeparators[0].Count != 2 {
		t.Errorf("separator count = %d, want 2", h.ColumnSeparators[0].Count)
	}
}

func TestCurrencyHelpers(t *testing.T) {
	line := "€ 50.00 € 1,250.00 Internet service"
	tokens := CurrencyTokens(line)
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tokens))
	}
	if tokens[1] != "€ 1,250.00" {
		t.Errorf("second token = %q", tokens[1])
	}
	if !HasCurrencyToken(line) {
		t.Error("HasCurrencyToken = false")
	}
	if got := FirstCurrencyIndex(line); got != 0 {
		t.Errorf("FirstCurrencyIndex = %d, want 0", got)
	}
	if got := FirstCurrencyIndex("no amounts here"); got != -1 {
		t.Errorf("FirstCurrencyIndex without token = %d, want -1", got)
	}
}
