package constants

// Extraction-strategy identifiers. Every extracted value is tagged with the
// strategy that produced it so downstream validation stays source-agnostic.
const (
	SourceAfterHeader      = "supplier_after_header"
	SourceCompanySuffix    = "supplier_company_suffix"
	SourceNumberLabeled    = "invoice_number_labeled"
	SourceNumberPrefixed   = "invoice_number_prefixed"
	SourceDateLabeled      = "date_labeled"
	SourceDateDMY          = "date_dmy"
	SourceDateISO          = "date_iso"
	SourceDateDefault      = "date_default"
	SourceTotalLabeled     = "total_labeled"
	SourceTotalAmountFirst = "total_amount_first"
	SourceVATLabeled       = "vat_labeled"
	SourceVATAmountFirst   = "vat_amount_first"
	SourceExclLabeled      = "subtotal_labeled"
	SourceExclAmountFirst  = "subtotal_amount_first"
	SourceCurrencySymbol   = "currency_symbol"
	SourceCurrencyDefault  = "currency_default"
	SourceDerived          = "derived"

	SourceTableStructured   = "table_structured"
	SourceStrictPattern     = "strict_pattern"
	SourceCurrencyHeuristic = "currency_heuristic"
	SourceGenericFallback   = "generic_fallback"

	SourceLLM    = "llm"
	SourceHybrid = "hybrid"
)
