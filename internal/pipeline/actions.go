package pipeline

import (
	"github.com/mvandervelden/invoice-engine/constants"
	"github.com/mvandervelden/invoice-engine/internal/invoice"
)

// suggestActions proposes the catalog follow-ups a reviewer should take:
// creating the supplier when no confident match exists, and mapping or
// creating each item that lacks one.
func (e *Engine) suggestActions(supplierName string, highConfidence *invoice.MatchCandidate, items []invoice.LineItem) []invoice.SuggestedAction {
	actions := []invoice.SuggestedAction{}

	if highConfidence == nil {
		actions = append(actions, invoice.SuggestedAction{
			Type:     constants.SuggestCreateSupplier,
			Data:     map[string]string{"supplier_name": supplierName},
			Priority: constants.PriorityHigh,
		})
	}

	for _, item := range items {
		confident := false
		for _, candidate := range item.ExistingItems {
			if candidate.MatchScore >= e.cfg.ItemMatchThreshold {
				confident = true
				break
			}
		}
		if confident {
			continue
		}
		actions = append(actions, invoice.SuggestedAction{
			Type: constants.SuggestMapOrCreateItem,
			Data: map[string]any{
				"description":       item.Description,
				"suggested_matches": item.ExistingItems,
			},
			Priority: constants.PriorityMedium,
		})
	}

	return actions
}
