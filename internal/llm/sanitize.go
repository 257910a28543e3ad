package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// SanitizeFields normalizes a model response so it can pass strict schema
// validation:
// - coerces numeric strings ("100.00") to numbers in amount fields
// - drops null or empty optionals
// - uppercases the currency code
// - removes unknown top-level keys
func SanitizeFields(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string

	amountKeys := []string{"subtotal", "vat_amount", "total", "confidence"}
	for _, k := range amountKeys {
		coerceNumber(m, k, &dropped)
	}

	if v, ok := m["currency"].(string); ok {
		code := strings.ToUpper(strings.TrimSpace(v))
		if len(code) == 3 {
			m["currency"] = code
		} else {
			delete(m, "currency")
			dropped = append(dropped, "currency(invalid)")
		}
	}

	textKeys := []string{"supplier_name", "invoice_number", "invoice_date"}
	for _, k := range textKeys {
		if v, ok := m[k]; ok {
			s, isString := v.(string)
			if !isString {
				m[k] = ""
				dropped = append(dropped, k+"(type)")
				continue
			}
			m[k] = strings.TrimSpace(s)
		}
	}

	if items, ok := m["line_items"].([]any); ok {
		cleaned := make([]any, 0, len(items))
		for _, entry := range items {
			item, isMap := entry.(map[string]any)
			if !isMap {
				dropped = append(dropped, "line_items(entry)")
				continue
			}
			for _, k := range []string{"quantity", "unit_price", "total", "vat_rate", "vat_amount", "confidence"} {
				coerceNumber(item, k, &dropped)
			}
			if desc, ok := item["description"].(string); !ok || strings.TrimSpace(desc) == "" {
				dropped = append(dropped, "line_items(description)")
				continue
			}
			cleaned = append(cleaned, item)
		}
		m["line_items"] = cleaned
	}

	allowed := map[string]struct{}{
		"supplier_name": {}, "invoice_number": {}, "invoice_date": {},
		"currency": {}, "line_items": {}, "subtotal": {}, "vat_amount": {},
		"total": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func coerceNumber(m map[string]any, k string, dropped *[]string) {
	v, ok := m[k]
	if !ok {
		return
	}
	switch t := v.(type) {
	case float64:
		// already a number
	case string:
		s := strings.TrimSpace(strings.TrimLeft(t, "€$£ "))
		s = strings.ReplaceAll(s, ",", "")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			m[k] = f
		} else {
			delete(m, k)
			*dropped = append(*dropped, k+"(parse)")
		}
	case nil:
		delete(m, k)
		*dropped = append(*dropped, k+"(null)")
	default:
		delete(m, k)
		*dropped = append(*dropped, k+"(type)")
	}
}
