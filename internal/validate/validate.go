// Package validate runs the fixed rule set over an aggregated parse
// result and turns the findings into an approval decision. Rules are
// deterministic and independent of how the data was extracted; a
// data-quality problem is an issue in the report, never an error.
package validate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/mvandervelden/invoice-engine/constants"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
)

// Thresholds holds the per-rule cutoffs. Zero values are replaced by the
// defaults from the reference rule set.
type Thresholds struct {
	SupplierMatch     float64
	InvoiceNumber     float64
	MinItemConfidence float64
	MathTolerance     float64
}

func (t Thresholds) withDefaults() Thresholds {
	if t.SupplierMatch == 0 {
		t.SupplierMatch = 0.8
	}
	if t.InvoiceNumber == 0 {
		t.InvoiceNumber = 0.8
	}
	if t.MinItemConfidence == 0 {
		t.MinItemConfidence = 0.6
	}
	if t.MathTolerance == 0 {
		t.MathTolerance = 0.01
	}
	return t
}

// Input is the slice of the parse result the rules inspect.
type Input struct {
	Supplier      invoice.Field
	InvoiceNumber invoice.Field
	LineItems     []invoice.LineItem
	// StatedTotal is the grand total field; math checking is skipped
	// when the document never stated one.
	StatedTotal invoice.AmountField
	// BestSupplierScore is the top fuzzy-match score against the
	// supplier catalog, 0 when no candidate exists.
	BestSupplierScore float64
}

// Engine evaluates the rule set.
type Engine struct {
	thresholds Thresholds
	logger     *slog.Logger
}

func NewEngine(thresholds Thresholds, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{thresholds: thresholds.withDefaults(), logger: logger}
}

// Validate applies every rule and returns the report with its approval
// decision. The returned issue slice is never nil.
func (e *Engine) Validate(in Input) invoice.ValidationReport {
	issues := []invoice.ValidationIssue{}

	if in.Supplier.Value == "" || in.BestSupplierScore < e.thresholds.SupplierMatch {
		issues = append(issues, invoice.ValidationIssue{
			Kind:           constants.IssueSupplierVerification,
			Message:        "Supplier name needs verification",
			Data:           in.Supplier,
			ActionRequired: constants.ActionConfirmOrCorrect,
		})
	}

	if in.InvoiceNumber.Value == "" || in.InvoiceNumber.Confidence < e.thresholds.InvoiceNumber {
		issues = append(issues, invoice.ValidationIssue{
			Kind:           constants.IssueInvoiceNumber,
			Message:        "Invoice number unclear",
			Data:           in.InvoiceNumber,
			ActionRequired: constants.ActionManualEntry,
		})
	}

	for i, item := range in.LineItems {
		if item.Confidence < e.thresholds.MinItemConfidence {
			issues = append(issues, invoice.ValidationIssue{
				Kind:           constants.IssueLineItem,
				Message:        fmt.Sprintf("Line item %d needs review", i+1),
				Data:           item,
				ActionRequired: constants.ActionVerifyAmounts,
			})
		}
	}

	if in.StatedTotal.Present {
		calculated := 0.0
		for _, item := range in.LineItems {
			calculated += item.Total
		}
		if math.Abs(calculated-in.StatedTotal.Value) > e.thresholds.MathTolerance {
			issues = append(issues, invoice.ValidationIssue{
				Kind:    constants.IssueMathError,
				Message: "Line items don't match total",
				Data: map[string]float64{
					"calculated": calculated,
					"stated":     in.StatedTotal.Value,
				},
				ActionRequired: constants.ActionRecalculate,
			})
		}
	}

	report := invoice.ValidationReport{
		Issues:   issues,
		Approval: Approval(issues),
	}
	e.logger.Debug("validate.ok",
		"issues", len(issues),
		"blocking", len(report.Approval.BlockingIssues),
		"auto_approve", report.Approval.AutoApprove,
	)
	return report
}

// Approval classifies issues into blocking and warning sets and decides
// auto-approval: at most two issues and no math error.
func Approval(issues []invoice.ValidationIssue) invoice.ApprovalDecision {
	blocking := []invoice.ValidationIssue{}
	warnings := []invoice.ValidationIssue{}
	mathError := false
	for _, issue := range issues {
		if issue.Kind.IsBlocking() {
			blocking = append(blocking, issue)
		} else {
			warnings = append(warnings, issue)
		}
		if issue.Kind == constants.IssueMathError {
			mathError = true
		}
	}
	return invoice.ApprovalDecision{
		RequiresApproval: len(issues) > 0,
		BlockingIssues:   blocking,
		WarningIssues:    warnings,
		AutoApprove:      len(issues) <= 2 && !mathError,
	}
}
