package pipeline

import (
	"context"

	"github.com/mvandervelden/invoice-engine/constants"
	"github.com/mvandervelden/invoice-engine/internal/fields"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
	"github.com/mvandervelden/invoice-engine/internal/llm"
)

// Default reliability assigned to LLM output that carries no confidence of
// its own.
const defaultLLMConfidence = 0.7

// mergeLLM runs the alternative extraction strategy and merges its fields
// with the pattern results. An LLM failure degrades to pattern-only output
// and is never surfaced to the caller.
func (e *Engine) mergeLLM(ctx context.Context, rid, text string, set fields.Set, items []invoice.LineItem) (fields.Set, []invoice.LineItem) {
	parsed, _, err := e.llm.ExtractFields(ctx, llm.ExtractRequest{Text: text})
	if err != nil {
		e.logger.Warn("pipeline.llm.fallback", "req_id", rid, "error", err)
		return set, items
	}

	conf := parsed.Confidence
	if conf <= 0 {
		conf = defaultLLMConfidence
	}

	set.Supplier = mergeField(set.Supplier, parsed.SupplierName, conf)
	set.InvoiceNumber = mergeField(set.InvoiceNumber, parsed.InvoiceNumber, conf)
	set.InvoiceDate = mergeField(set.InvoiceDate, parsed.InvoiceDate, conf)
	set.Currency = mergeField(set.Currency, parsed.Currency, conf)
	set.TotalIncl = mergeAmount(set.TotalIncl, parsed.Total, conf)
	set.VATAmount = mergeAmount(set.VATAmount, parsed.VATAmount, conf)
	set.TotalExcl = mergeAmount(set.TotalExcl, parsed.Subtotal, conf)

	items = mergeItems(items, parsed.LineItems)

	e.logger.Info("pipeline.llm.merged", "req_id", rid, "llm_items", len(parsed.LineItems))
	return set, items
}

// mergeField arbitrates one field between the two strategies: agreement
// takes the higher confidence under a hybrid source, a lone value wins
// outright, and disagreement goes to whichever side is more confident.
func mergeField(pattern invoice.Field, llmValue string, llmConf float64) invoice.Field {
	llmField := invoice.Field{Value: llmValue, Confidence: llmConf, Source: constants.SourceLLM}

	if pattern.Value != "" && llmValue != "" && pattern.Value == llmValue {
		merged := pattern
		if llmConf > merged.Confidence {
			merged.Confidence = llmConf
		}
		merged.Source = constants.SourceHybrid
		return merged
	}
	if pattern.Value != "" && llmValue == "" {
		return pattern
	}
	if llmValue != "" && pattern.Value == "" {
		return llmField
	}
	if llmConf > pattern.Confidence {
		return llmField
	}
	return pattern
}

func mergeAmount(pattern invoice.AmountField, llmValue, llmConf float64) invoice.AmountField {
	llmPresent := llmValue > 0
	llmField := invoice.AmountField{Value: llmValue, Present: llmPresent, Confidence: llmConf, Source: constants.SourceLLM}

	if pattern.Present && llmPresent && pattern.Value == llmValue {
		merged := pattern
		if llmConf > merged.Confidence {
			merged.Confidence = llmConf
		}
		merged.Source = constants.SourceHybrid
		return merged
	}
	if pattern.Present && !llmPresent {
		return pattern
	}
	if llmPresent && !pattern.Present {
		return llmField
	}
	if llmPresent && llmConf > pattern.Confidence {
		return llmField
	}
	return pattern
}

// mergeItems keeps the pattern items unless they amount to nothing more
// than the synthesized fallback while the LLM recovered real ones.
func mergeItems(pattern []invoice.LineItem, parsed []llm.ItemFields) []invoice.LineItem {
	if len(parsed) == 0 {
		return pattern
	}
	patternReal := false
	for _, item := range pattern {
		if item.Source != constants.SourceGenericFallback {
			patternReal = true
			break
		}
	}
	if patternReal {
		return pattern
	}

	items := make([]invoice.LineItem, 0, len(parsed))
	for _, p := range parsed {
		conf := p.Confidence
		if conf <= 0 {
			conf = defaultLLMConfidence
		}
		quantity := p.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		unitPrice := p.UnitPrice
		if unitPrice == 0 && quantity > 0 {
			unitPrice = p.Total / quantity
		}
		items = append(items, invoice.LineItem{
			Description: p.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Total:       p.Total,
			VATRate:     p.VATRate,
			VATAmount:   p.VATAmount,
			Confidence:  conf,
			Source:      constants.SourceLLM,
		})
	}
	return items
}
