package llm

import (
	"encoding/json"
	"strings"
)

const maxPromptTextLen = 6000

// BuildExtractionPrompt composes a single prompt that carries the invoice
// text, the target schema, and the extraction rules. Dutch label hints are
// included because the corpus of invoices this was tuned on is Dutch.
func BuildExtractionPrompt(req ExtractRequest) string {
	defCur := strings.TrimSpace(req.DefaultCurrency)
	if defCur == "" {
		defCur = "EUR"
	}

	text := req.Text
	if len(text) > maxPromptTextLen {
		text = text[:maxPromptTextLen] + "\n…(truncated)"
	}

	var b strings.Builder
	b.WriteString("You are an expert invoice processing assistant. Extract structured data from this invoice text.\n\n")
	b.WriteString("INVOICE TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nReturn ONLY a valid JSON object matching this JSON Schema:\n")
	b.WriteString(mustJSON(BuildInvoiceJSONSchema()))
	b.WriteString("\n\nRULES:\n")
	b.WriteString("1. Extract amounts exactly as shown, converted to numbers.\n")
	b.WriteString("2. Use 0 for missing numeric values and \"\" for missing text values.\n")
	b.WriteString("3. Dates must be YYYY-MM-DD.\n")
	b.WriteString("4. Currency must be a 3-letter ISO 4217 code; default to " + defCur + " if uncertain.\n")
	b.WriteString("5. Set per-field confidence in [0,1] based on how clear the information is.\n")
	b.WriteString("6. For Dutch invoices: \"Btw\" = VAT, \"Totaal\" = Total, \"Omschrijving\" = Description.\n")
	b.WriteString("7. Never output null. Omit fields that are not present.\n")
	return b.String()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
