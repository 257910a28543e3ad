package constants

// Section identifies a contiguous semantic region of an invoice's text.
type Section string

const (
	SectionHeader         Section = "header"
	SectionSupplier       Section = "supplier"
	SectionInvoiceDetails Section = "invoice_details"
	SectionLineItems      Section = "line_items"
	SectionTotals         Section = "totals"
	SectionFooter         Section = "footer"
)

// AllSections lists every section label in document order.
func AllSections() []Section {
	return []Section{
		SectionHeader,
		SectionSupplier,
		SectionInvoiceDetails,
		SectionLineItems,
		SectionTotals,
		SectionFooter,
	}
}
