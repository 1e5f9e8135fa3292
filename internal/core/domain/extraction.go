package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Extraction field names the pipeline treats as critical to posting.
const (
	FieldVendor        = "Vendor"
	FieldInvoiceNumber = "Invoice Number"
	FieldInvoiceDate   = "Invoice Date"
	FieldDueDate       = "Due Date"
	FieldTotal         = "Total"
	FieldSubtotal      = "Subtotal"
	FieldTax           = "Tax"
)

// FieldBox is the bounding region of an extracted field on the source page,
// normalized to [0,1].
type FieldBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ExtractedField is one field the extraction collaborator read off a document.
// It is provenance, not live state: edits to the document attribute it seeded
// never rewrite the extracted record.
type ExtractedField struct {
	ExtractedFieldID string    `json:"extractedFieldID"`
	DocumentID       string    `json:"documentID"`
	FieldName        string    `json:"fieldName"`
	Value            string    `json:"value"`
	Confidence       int       `json:"confidence"` // 0-100
	Box              *FieldBox `json:"box,omitempty"`
}

// ExtractionResult is the extraction collaborator's output for one uploaded
// document: the raw fields plus the candidate attributes parsed from them.
type ExtractionResult struct {
	Fields              []ExtractedField `json:"fields"`
	AggregateConfidence int              `json:"aggregateConfidence"` // 0-100

	VendorName    string           `json:"vendorName"`
	InvoiceNumber string           `json:"invoiceNumber"`
	InvoiceDate   *time.Time       `json:"invoiceDate,omitempty"`
	DueDate       *time.Time       `json:"dueDate,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Subtotal      *decimal.Decimal `json:"subtotal,omitempty"`
	Tax           *decimal.Decimal `json:"tax,omitempty"`
	LineItems     []LineItem       `json:"lineItems,omitempty"`
}

// FieldConfidence returns the confidence of a named field and whether the
// field was extracted at all.
func (r ExtractionResult) FieldConfidence(name string) (int, bool) {
	for _, f := range r.Fields {
		if f.FieldName == name {
			return f.Confidence, true
		}
	}
	return 0, false
}
