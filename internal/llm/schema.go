package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass it to the model inside the prompt and also use it
// locally to validate whatever comes back.
func BuildInvoiceJSONSchema() map[string]any {
	itemProps := map[string]any{
		"description": map[string]any{"type": "string", "minLength": 1},
		"quantity":    amountProp(),
		"unit_price":  amountProp(),
		"total":       amountProp(),
		"vat_rate":    amountProp(),
		"vat_amount":  amountProp(),
		"confidence":  confidenceProp(),
	}

	props := map[string]any{
		"supplier_name":  map[string]any{"type": "string"},
		"invoice_number": map[string]any{"type": "string"},
		"invoice_date":   map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$|^$`},
		"currency":       map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"line_items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           itemProps,
				"required":             []string{"description", "total"},
			},
		},
		"subtotal":   amountProp(),
		"vat_amount": amountProp(),
		"total":      amountProp(),
		"confidence": confidenceProp(),
	}
	required := []string{"supplier_name", "invoice_number", "line_items"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func amountProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0}
}

func confidenceProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
