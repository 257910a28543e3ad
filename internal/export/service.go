// Package export produces XLSX review workbooks from parse results so a
// reviewer can work through extracted items and validation findings
// outside the API.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mvandervelden/invoice-engine/internal/invoice"
)

// Service turns parse results into XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BatchRow pairs a result with the name of the input it came from.
type BatchRow struct {
	Name   string
	Result *invoice.Result
}

// ResultWorkbook renders one parse result to a two-sheet workbook: the
// line items and the validation issues.
func (s *Service) ResultWorkbook(res *invoice.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const itemsSheet = "Line Items"
	const issuesSheet = "Issues"

	if err := renameDefaultSheet(f, itemsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return nil, err
	}

	itemHeaders := []string{"Description", "Quantity", "Unit Price", "Total", "Confidence", "Source", "Best Catalog Match", "Match Score"}
	writeHeaders(f, itemsSheet, itemHeaders)

	row := 2
	for _, item := range res.ExtractedData.LineItems {
		bestName := ""
		bestScore := 0.0
		if len(item.ExistingItems) > 0 {
			bestName = item.ExistingItems[0].Name
			bestScore = item.ExistingItems[0].MatchScore
		}
		writeRow(f, itemsSheet, row,
			truncate(item.Description, 140),
			item.Quantity,
			item.UnitPrice,
			item.Total,
			item.Confidence,
			item.Source,
			bestName,
			bestScore,
		)
		row++
	}

	issueHeaders := []string{"Type", "Message", "Action Required", "Blocking"}
	writeHeaders(f, issuesSheet, issueHeaders)
	row = 2
	for _, issue := range res.Validation.Issues {
		writeRow(f, issuesSheet, row,
			string(issue.Kind),
			issue.Message,
			issue.ActionRequired,
			issue.Kind.IsBlocking(),
		)
		row++
	}

	_ = f.SetColWidth(itemsSheet, "A", "A", 48)
	_ = f.SetColWidth(itemsSheet, "B", "E", 12)
	_ = f.SetColWidth(itemsSheet, "F", "G", 26)
	_ = f.SetColWidth(issuesSheet, "A", "A", 22)
	_ = f.SetColWidth(issuesSheet, "B", "B", 48)
	_ = f.SetColWidth(issuesSheet, "C", "D", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"items", len(res.ExtractedData.LineItems),
		"issues", len(res.Validation.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// BatchWorkbook renders one summary row per parsed document.
func (s *Service) BatchWorkbook(rows []BatchRow) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if err := renameDefaultSheet(f, sheet); err != nil {
		return nil, err
	}

	headers := []string{"Input", "Supplier", "Invoice Number", "Date", "Currency", "Total", "Items", "Confidence", "Issues", "Auto Approve"}
	writeHeaders(f, sheet, headers)

	rowIdx := 2
	for _, br := range rows {
		res := br.Result
		writeRow(f, sheet, rowIdx,
			br.Name,
			res.ExtractedData.SupplierName,
			res.ExtractedData.InvoiceNumber,
			res.ExtractedData.InvoiceDate,
			res.ExtractedData.Currency,
			res.ExtractedData.Totals.Total,
			len(res.ExtractedData.LineItems),
			res.ConfidenceScore,
			len(res.Validation.Issues),
			res.Validation.Approval.AutoApprove,
		)
		rowIdx++
	}

	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "E", 16)
	_ = f.SetColWidth(sheet, "F", "J", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.batch_xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func renameDefaultSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
