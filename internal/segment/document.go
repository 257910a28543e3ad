package segment

import "strings"

// Line is one non-blank line of the source text. Raw keeps the original
// spacing (the line-item extractor splits on it); Text is the trimmed form.
// Index is the position in the original, blank-inclusive line sequence.
type Line struct {
	Raw   string
	Text  string
	Index int
}

// Document is the immutable unit of work: the raw text plus its ordered
// non-blank lines with original indices preserved for provenance.
type Document struct {
	Raw   string
	Lines []Line
}

// NewDocument splits text on line breaks and drops lines that are empty
// after trimming. An empty document is valid input.
func NewDocument(text string) *Document {
	rawLines := strings.Split(text, "\n")
	lines := make([]Line, 0, len(rawLines))
	for i, raw := range rawLines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lines = append(lines, Line{Raw: raw, Text: trimmed, Index: i})
	}
	return &Document{Raw: text, Lines: lines}
}

// LineAt returns the line with the given original index, if present.
func (d *Document) LineAt(index int) (Line, bool) {
	for _, ln := range d.Lines {
		if ln.Index == index {
			return ln, true
		}
	}
	return Line{}, false
}
