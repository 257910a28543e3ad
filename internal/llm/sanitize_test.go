package llm

import (
	"encoding/json"
	"testing"
)

func sanitized(t *testing.T, raw string) (map[string]any, []string) {
	t.Helper()
	out, dropped, err := SanitizeFields([]byte(raw), nil)
	if err != nil {
		t.Fatalf("SanitizeFields: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("decode sanitized: %v", err)
	}
	return m, dropped
}

func TestSanitizeCoercesNumericStrings(t *testing.T) {
	m, _ := sanitized(t, `{"supplier_name":"Acme","invoice_number":"V123456","total":"€ 1,250.00","line_items":[{"description":"Consulting","quantity":"2","unit_price":"625.00","total":1250}]}`)

	if m["total"] != 1250.0 {
		t.Errorf("total = %v (%T)", m["total"], m["total"])
	}
	items := m["line_items"].([]any)
	item := items[0].(map[string]any)
	if item["quantity"] != 2.0 || item["unit_price"] != 625.0 {
		t.Errorf("item = %v", item)
	}
}

func TestSanitizeDropsNullsAndUnknownKeys(t *testing.T) {
	m, dropped := sanitized(t, `{"supplier_name":"Acme","invoice_number":"V1","vat_amount":null,"reasoning":"because","line_items":[]}`)

	if _, ok := m["vat_amount"]; ok {
		t.Error("null vat_amount kept")
	}
	if _, ok := m["reasoning"]; ok {
		t.Error("unknown key kept")
	}
	if len(dropped) != 2 {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestSanitizeCurrency(t *testing.T) {
	m, _ := sanitized(t, `{"supplier_name":"Acme","invoice_number":"V1","currency":" eur ","line_items":[]}`)
	if m["currency"] != "EUR" {
		t.Errorf("currency = %v", m["currency"])
	}

	m, dropped := sanitized(t, `{"supplier_name":"Acme","invoice_number":"V1","currency":"euros","line_items":[]}`)
	if _, ok := m["currency"]; ok {
		t.Error("invalid currency kept")
	}
	if len(dropped) != 1 {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestSanitizeDropsItemsWithoutDescription(t *testing.T) {
	m, _ := sanitized(t, `{"supplier_name":"Acme","invoice_number":"V1","line_items":[{"description":"  ","total":5},{"description":"Hosting","total":10}]}`)
	items := m["line_items"].([]any)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].(map[string]any)["description"] != "Hosting" {
		t.Errorf("items = %v", items)
	}
}

func TestSanitizedOutputPassesSchema(t *testing.T) {
	raw := `{"supplier_name":"Acme","invoice_number":"V123456","currency":"eur","total":"605.00","line_items":[{"description":"Consulting","quantity":"2","unit_price":"250.00","total":"500.00"}],"notes":"ignore me"}`
	out, _, err := SanitizeFields([]byte(raw), nil)
	if err != nil {
		t.Fatalf("SanitizeFields: %v", err)
	}
	if err := ValidateJSONAgainstSchema(BuildInvoiceJSONSchema(), out); err != nil {
		t.Fatalf("sanitized output rejected: %v", err)
	}
}
