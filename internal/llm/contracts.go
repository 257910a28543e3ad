package llm

import "context"

// ItemFields is one line item as the model reports it.
type ItemFields struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
	VATRate     float64 `json:"vat_rate,omitempty"`
	VATAmount   float64 `json:"vat_amount,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"` // 0..1
}

// InvoiceFields is the normalized shape we want from the LLM. It mirrors
// the engine's own output so the two strategies merge field by field.
type InvoiceFields struct {
	SupplierName  string       `json:"supplier_name"`
	InvoiceNumber string       `json:"invoice_number"`
	InvoiceDate   string       `json:"invoice_date"` // YYYY-MM-DD
	Currency      string       `json:"currency"`     // ISO 4217
	LineItems     []ItemFields `json:"line_items"`
	Subtotal      float64      `json:"subtotal,omitempty"`   // excl tax
	VATAmount     float64      `json:"vat_amount,omitempty"`
	Total         float64      `json:"total,omitempty"` // incl tax
	Confidence    float64      `json:"confidence,omitempty"`
}

type ExtractRequest struct {
	Text            string
	DefaultCurrency string
}

// FieldExtractor is the interface the pipeline depends on. A nil
// extractor means pattern-only parsing.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
