package constants

// IssueKind classifies a validation finding.
type IssueKind string

const (
	IssueSupplierVerification IssueKind = "supplier_verification"
	IssueInvoiceNumber        IssueKind = "invoice_number"
	IssueLineItem             IssueKind = "line_item"
	IssueMathError            IssueKind = "math_error"
)

// IsBlocking reports whether an issue of this kind must prevent auto-approval.
func (k IssueKind) IsBlocking() bool {
	return k == IssueSupplierVerification || k == IssueMathError
}

// Required-action tags attached to issues for the review UI.
const (
	ActionConfirmOrCorrect = "confirm_or_correct"
	ActionManualEntry      = "manual_entry"
	ActionVerifyAmounts    = "verify_amounts"
	ActionRecalculate      = "recalculate"
)

// Suggested-action types emitted alongside the parse result.
const (
	SuggestCreateSupplier  = "create_supplier"
	SuggestMapOrCreateItem = "map_or_create_item"
)

// Suggested-action priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)
