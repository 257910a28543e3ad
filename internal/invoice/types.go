package invoice

import "github.com/mvandervelden/invoice-engine/constants"

// Field is one extracted string-valued field: the value, the [0,1]
// reliability score assigned to it, and the strategy that produced it.
type Field struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// AmountField is a decimal-valued field. Present distinguishes a genuine
// zero from a field no strategy could extract.
type AmountField struct {
	Value      float64 `json:"value"`
	Present    bool    `json:"present"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// LineItem is one recovered invoice line. Quantity defaults to 1 when it
// cannot be inferred; UnitPrice*Quantity and Total agree within tolerance
// whenever all three were independently derived.
type LineItem struct {
	Description   string           `json:"description"`
	Quantity      float64          `json:"quantity"`
	UnitPrice     float64          `json:"unit_price"`
	Total         float64          `json:"total"`
	VATRate       float64          `json:"vat_rate,omitempty"`
	VATAmount     float64          `json:"vat_amount,omitempty"`
	Confidence    float64          `json:"confidence"`
	Source        string           `json:"source,omitempty"`
	ExistingItems []MatchCandidate `json:"existing_items,omitempty"`
}

// Totals holds the three stated document totals. Zero means "not stated";
// the extractor records presence separately and derives the missing third
// value when exactly two are stated.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	VATAmount float64 `json:"vat_amount"`
	Total     float64 `json:"total"`
}

// ExtractedData is the normalized invoice payload of a parse run.
type ExtractedData struct {
	SupplierName  string     `json:"supplier_name"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   string     `json:"invoice_date"`
	Currency      string     `json:"currency"`
	LineItems     []LineItem `json:"line_items"`
	Totals        Totals     `json:"totals"`
}

// MatchCandidate is one scored reference-catalog hit for a query string.
type MatchCandidate struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	MatchScore float64 `json:"match_score"`
}

// ValidationIssue is one finding of the validation engine.
type ValidationIssue struct {
	Kind           constants.IssueKind `json:"type"`
	Message        string              `json:"message"`
	Data           any                 `json:"data,omitempty"`
	ActionRequired string              `json:"action_required"`
}

// ApprovalDecision is the rule engine's verdict. It is plain output data;
// data-quality problems never surface as errors.
type ApprovalDecision struct {
	RequiresApproval bool              `json:"requires_approval"`
	BlockingIssues   []ValidationIssue `json:"blocking_issues"`
	WarningIssues    []ValidationIssue `json:"warning_issues"`
	AutoApprove      bool              `json:"auto_approve"`
}

// SuggestedAction is a follow-up the caller should surface to a reviewer.
type SuggestedAction struct {
	Type     string `json:"type"`
	Data     any    `json:"data,omitempty"`
	Priority string `json:"priority"`
}

// DatabaseMatches collects catalog reconciliation output for the document.
type DatabaseMatches struct {
	Suppliers              []MatchCandidate `json:"suppliers"`
	HighConfidenceSupplier *MatchCandidate  `json:"high_confidence_supplier,omitempty"`
}

// ValidationReport pairs the issue list with the approval decision.
type ValidationReport struct {
	Issues   []ValidationIssue `json:"issues"`
	Approval ApprovalDecision  `json:"approval"`
}

// Result is the stable output record of one parse run. It owns all the
// value records it contains; returning it ends the engine's responsibility.
type Result struct {
	ExtractedData    ExtractedData     `json:"extracted_data"`
	DatabaseMatches  DatabaseMatches   `json:"database_matches"`
	ConfidenceScore  float64           `json:"confidence_score"`
	Validation       ValidationReport  `json:"validation"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	FieldSources     map[string]string `json:"field_sources,omitempty"`
}
