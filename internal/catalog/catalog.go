// Package catalog holds the in-memory reference data the matcher
// reconciles against: suppliers, companies, items, and currencies. The
// engine only ever reads a Catalog; loading it from SQL or JSON happens
// before a parse starts.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mvandervelden/invoice-engine/internal/match"
)

type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`
	Country string `json:"country,omitempty"`
}

type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	UOM  string `json:"uom,omitempty"`
}

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol,omitempty"`
}

// Catalog is immutable after load. A nil *Catalog is a valid empty
// catalog; every accessor handles it.
type Catalog struct {
	Suppliers  []Supplier `json:"suppliers"`
	Companies  []Company  `json:"companies"`
	Items      []Item     `json:"items"`
	Currencies []Currency `json:"currencies"`
}

// SupplierRecords adapts suppliers for the fuzzy matcher, preserving
// catalog order for stable tie-breaks.
func (c *Catalog) SupplierRecords() []match.Record {
	if c == nil {
		return nil
	}
	records := make([]match.Record, 0, len(c.Suppliers))
	for _, s := range c.Suppliers {
		records = append(records, match.Record{ID: s.ID, Name: s.Name})
	}
	return records
}

func (c *Catalog) ItemRecords() []match.Record {
	if c == nil {
		return nil
	}
	records := make([]match.Record, 0, len(c.Items))
	for _, it := range c.Items {
		records = append(records, match.Record{ID: it.ID, Name: it.Name})
	}
	return records
}

func (c *Catalog) CompanyRecords() []match.Record {
	if c == nil {
		return nil
	}
	records := make([]match.Record, 0, len(c.Companies))
	for _, co := range c.Companies {
		records = append(records, match.Record{ID: co.ID, Name: co.Name})
	}
	return records
}

// FromJSON decodes a catalog from r. Unknown keys are ignored so context
// payloads with extra fields keep working.
func FromJSON(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return &c, nil
}

// FromFile loads a catalog from a JSON file on disk.
func FromFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()
	return FromJSON(f)
}
