package validate

import (
	"testing"

	"github.com/mvandervelden/invoice-engine/constants"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
)

func cleanInput() Input {
	return Input{
		Supplier:          invoice.Field{Value: "Acme B.V.", Confidence: 0.9},
		InvoiceNumber:     invoice.Field{Value: "V123456", Confidence: 0.9},
		LineItems:         []invoice.LineItem{{Description: "Consulting", Quantity: 1, UnitPrice: 100, Total: 100, Confidence: 0.8}},
		StatedTotal:       invoice.AmountField{Value: 100, Present: true, Confidence: 0.8},
		BestSupplierScore: 0.95,
	}
}

func kinds(issues []invoice.ValidationIssue) []constants.IssueKind {
	out := make([]constants.IssueKind, len(issues))
	for i, issue := range issues {
		out[i] = issue.Kind
	}
	return out
}

func hasKind(issues []invoice.ValidationIssue, kind constants.IssueKind) bool {
	for _, issue := range issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

func TestValidateClean(t *testing.T) {
	report := NewEngine(Thresholds{}, nil).Validate(cleanInput())
	if len(report.Issues) != 0 {
		t.Fatalf("clean input produced issues: %v", kinds(report.Issues))
	}
	if report.Approval.RequiresApproval {
		t.Error("clean input requires approval")
	}
	if !report.Approval.AutoApprove {
		t.Error("clean input not auto-approved")
	}
	if report.Issues == nil || report.Approval.BlockingIssues == nil || report.Approval.WarningIssues == nil {
		t.Error("issue slices must be non-nil")
	}
}

func TestSupplierVerification(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"empty name", func(in *Input) { in.Supplier.Value = "" }},
		{"low match score", func(in *Input) { in.BestSupplierScore = 0.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := cleanInput()
			tc.mutate(&in)
			report := NewEngine(Thresholds{}, nil).Validate(in)
			if !hasKind(report.Issues, constants.IssueSupplierVerification) {
				t.Fatalf("missing supplier_verification, got %v", kinds(report.Issues))
			}
			if !hasKind(report.Approval.BlockingIssues, constants.IssueSupplierVerification) {
				t.Error("supplier_verification must be blocking")
			}
			if !report.Approval.RequiresApproval {
				t.Error("expected approval requirement")
			}
		})
	}
}

func TestInvoiceNumberWarning(t *testing.T) {
	in := cleanInput()
	in.InvoiceNumber.Confidence = 0.4
	report := NewEngine(Thresholds{}, nil).Validate(in)
	if !hasKind(report.Issues, constants.IssueInvoiceNumber) {
		t.Fatalf("missing invoice_number, got %v", kinds(report.Issues))
	}
	if !hasKind(report.Approval.WarningIssues, constants.IssueInvoiceNumber) {
		t.Error("invoice_number must be a warning, not blocking")
	}
	if !report.Approval.AutoApprove {
		t.Error("single warning should still auto-approve")
	}
}

func TestLineItemReview(t *testing.T) {
	in := cleanInput()
	in.LineItems = append(in.LineItems, invoice.LineItem{Description: "Misc", Quantity: 1, UnitPrice: 0, Total: 0, Confidence: 0.5})
	report := NewEngine(Thresholds{}, nil).Validate(in)
	if !hasKind(report.Issues, constants.IssueLineItem) {
		t.Fatalf("missing line_item, got %v", kinds(report.Issues))
	}
	var msg string
	for _, issue := range report.Issues {
		if issue.Kind == constants.IssueLineItem {
			msg = issue.Message
		}
	}
	if msg != "Line item 2 needs review" {
		t.Errorf("message = %q", msg)
	}
}

func TestMathError(t *testing.T) {
	in := cleanInput()
	in.StatedTotal = invoice.AmountField{Value: 121, Present: true, Confidence: 0.8}
	report := NewEngine(Thresholds{}, nil).Validate(in)
	if !hasKind(report.Issues, constants.IssueMathError) {
		t.Fatalf("missing math_error, got %v", kinds(report.Issues))
	}
	if !hasKind(report.Approval.BlockingIssues, constants.IssueMathError) {
		t.Error("math_error must be blocking")
	}
	if report.Approval.AutoApprove {
		t.Error("math_error must never auto-approve")
	}
	for _, issue := range report.Issues {
		if issue.Kind != constants.IssueMathError {
			continue
		}
		data, ok := issue.Data.(map[string]float64)
		if !ok {
			t.Fatalf("math_error data type %T", issue.Data)
		}
		if data["calculated"] != 100 || data["stated"] != 121 {
			t.Errorf("data = %v", data)
		}
	}
}

func TestMathWithinTolerance(t *testing.T) {
	in := cleanInput()
	in.StatedTotal = invoice.AmountField{Value: 100.005, Present: true, Confidence: 0.8}
	report := NewEngine(Thresholds{}, nil).Validate(in)
	if hasKind(report.Issues, constants.IssueMathError) {
		t.Error("difference within tolerance flagged as math_error")
	}
}

func TestMathSkippedWithoutStatedTotal(t *testing.T) {
	in := cleanInput()
	in.StatedTotal = invoice.AmountField{}
	in.LineItems[0].Total = 9999
	report := NewEngine(Thresholds{}, nil).Validate(in)
	if hasKind(report.Issues, constants.IssueMathError) {
		t.Error("math rule ran without a stated total")
	}
}

func TestAutoApproveWithTwoIssues(t *testing.T) {
	in := cleanInput()
	in.InvoiceNumber.Confidence = 0.4
	in.LineItems[0].Confidence = 0.5
	report := NewEngine(Thresholds{}, nil).Validate(in)
	if len(report.Issues) != 2 {
		t.Fatalf("got %d issues, want 2: %v", len(report.Issues), kinds(report.Issues))
	}
	if !report.Approval.AutoApprove {
		t.Error("two non-math issues should auto-approve")
	}
	if !report.Approval.RequiresApproval {
		t.Error("issues present must still require approval")
	}
}

func TestNoAutoApproveWithThreeIssues(t *testing.T) {
	in := cleanInput()
	in.BestSupplierScore = 0
	in.InvoiceNumber.Value = ""
	in.LineItems[0].Confidence = 0.5
	report := NewEngine(Thresholds{}, nil).Validate(in)
	if len(report.Issues) != 3 {
		t.Fatalf("got %d issues, want 3: %v", len(report.Issues), kinds(report.Issues))
	}
	if report.Approval.AutoApprove {
		t.Error("three issues must not auto-approve")
	}
}

func TestCustomThresholds(t *testing.T) {
	in := cleanInput()
	in.BestSupplierScore = 0.6
	engine := NewEngine(Thresholds{SupplierMatch: 0.5}, nil)
	report := engine.Validate(in)
	if hasKind(report.Issues, constants.IssueSupplierVerification) {
		t.Error("score above lowered threshold still flagged")
	}
}
