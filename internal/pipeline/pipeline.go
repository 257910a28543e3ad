// Package pipeline wires the extraction stages into one engine: segment,
// analyze layout, extract fields and line items, reconcile against the
// catalog, aggregate confidence, and validate. Processing is a pure
// transformation over immutable inputs, so one Engine serves arbitrarily
// many concurrent documents.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvandervelden/invoice-engine/internal/catalog"
	"github.com/mvandervelden/invoice-engine/internal/common"
	"github.com/mvandervelden/invoice-engine/internal/fields"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
	"github.com/mvandervelden/invoice-engine/internal/layout"
	"github.com/mvandervelden/invoice-engine/internal/lineitems"
	"github.com/mvandervelden/invoice-engine/internal/llm"
	"github.com/mvandervelden/invoice-engine/internal/match"
	"github.com/mvandervelden/invoice-engine/internal/segment"
	"github.com/mvandervelden/invoice-engine/internal/validate"
)

// Request is one document to parse. Context may be nil; the matcher then
// degrades to empty-match behavior.
type Request struct {
	Text    string
	Context *catalog.Catalog
}

// Engine runs the full parse. Construct once, share freely.
type Engine struct {
	cfg       common.EngineConfig
	segmenter *segment.Segmenter
	fields    *fields.Extractor
	items     *lineitems.Extractor
	matcher   *match.Matcher
	validator *validate.Engine
	llm       llm.FieldExtractor
	logger    *slog.Logger
}

func New(cfg common.EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		segmenter: segment.NewSegmenter(logger),
		fields:    fields.NewExtractor(logger),
		items:     lineitems.NewExtractor(logger),
		matcher:   match.NewMatcher(cfg.MaxMatchCandidates, logger),
		validator: validate.NewEngine(validate.Thresholds{
			SupplierMatch:     cfg.SupplierMatchThreshold,
			InvoiceNumber:     cfg.InvoiceNumberConfidence,
			MinItemConfidence: cfg.MinItemConfidence,
			MathTolerance:     cfg.MathTolerance,
		}, logger),
		logger: logger,
	}
}

// WithLLM enables the alternative extraction strategy. Its failures are
// logged and absorbed; parsing falls back to pattern-only output.
func (e *Engine) WithLLM(fe llm.FieldExtractor) *Engine {
	e.llm = fe
	return e
}

// Process parses one document. The only error conditions are contextual
// (cancellation); data-quality problems surface in the validation report.
func (e *Engine) Process(ctx context.Context, req Request) (*invoice.Result, error) {
	rid := uuid.New().String()
	start := time.Now()
	e.logger.Info("pipeline.process.start", "req_id", rid, "text_len", len(req.Text))

	doc := segment.NewDocument(req.Text)
	part := e.segmenter.Segment(doc)
	hints := layout.Analyze(doc.Lines)
	set := e.fields.Extract(req.Text)

	totalExcl := 0.0
	if set.TotalExcl.Present {
		totalExcl = set.TotalExcl.Value
	}
	items := e.items.Extract(doc, part, hints, set.Supplier.Value, totalExcl)
	if items == nil {
		items = []invoice.LineItem{}
	}

	if e.llm != nil {
		set, items = e.mergeLLM(ctx, rid, req.Text, set, items)
	}

	supplierMatches := e.matcher.Rank(set.Supplier.Value, req.Context.SupplierRecords())
	if supplierMatches == nil {
		supplierMatches = []invoice.MatchCandidate{}
	}
	var highConfidence *invoice.MatchCandidate
	bestSupplierScore := 0.0
	if len(supplierMatches) > 0 {
		bestSupplierScore = supplierMatches[0].MatchScore
		if bestSupplierScore >= e.cfg.SupplierMatchThreshold {
			top := supplierMatches[0]
			highConfidence = &top
		}
	}

	if err := e.matchItems(ctx, items, req.Context.ItemRecords()); err != nil {
		return nil, err
	}

	score := overallConfidence(bestSupplierScore, e.cfg.SupplierMatchThreshold, items, set)

	report := e.validator.Validate(validate.Input{
		Supplier:          set.Supplier,
		InvoiceNumber:     set.InvoiceNumber,
		LineItems:         items,
		StatedTotal:       set.TotalIncl,
		BestSupplierScore: bestSupplierScore,
	})

	result := &invoice.Result{
		ExtractedData: invoice.ExtractedData{
			SupplierName:  set.Supplier.Value,
			InvoiceNumber: set.InvoiceNumber.Value,
			InvoiceDate:   set.InvoiceDate.Value,
			Currency:      set.Currency.Value,
			LineItems:     items,
			Totals: invoice.Totals{
				Subtotal:  set.TotalExcl.Value,
				VATAmount: set.VATAmount.Value,
				Total:     set.TotalIncl.Value,
			},
		},
		DatabaseMatches: invoice.DatabaseMatches{
			Suppliers:              supplierMatches,
			HighConfidenceSupplier: highConfidence,
		},
		ConfidenceScore:  score,
		Validation:       report,
		SuggestedActions: e.suggestActions(set.Supplier.Value, highConfidence, items),
		FieldSources:     set.Sources(),
	}

	e.logger.Info("pipeline.process.ok",
		"req_id", rid,
		"supplier", set.Supplier.Value != "",
		"items", len(items),
		"confidence", score,
		"issues", len(report.Issues),
		"auto_approve", report.Approval.AutoApprove,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// matchItems reconciles each item description against the catalog. The
// lookups are independent, so they fan out one goroutine per item; results
// join by index, never by completion order.
func (e *Engine) matchItems(ctx context.Context, items []invoice.LineItem, records []match.Record) error {
	if len(items) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range items {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i].ExistingItems = e.matcher.Rank(items[i].Description, records)
			if items[i].ExistingItems == nil {
				items[i].ExistingItems = []invoice.MatchCandidate{}
			}
			return nil
		})
	}
	return g.Wait()
}
