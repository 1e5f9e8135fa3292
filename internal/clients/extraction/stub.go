package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// StubClient is a local ExtractionClient for development without Document AI
// credentials. It fabricates a plausible invoice from a digest of the upload,
// so re-uploading the same bytes produces the same invoice number and the
// duplicate checks fire the way they would in production.
type StubClient struct{}

// NewStubClient returns a stub extraction client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Extract fabricates an extraction result from the content digest.
func (c *StubClient) Extract(_ context.Context, content []byte, _ string) (*domain.ExtractionResult, error) {
	digest := sha256.Sum256(content)
	suffix := hex.EncodeToString(digest[:4])

	invoiceDate := time.Now().AddDate(0, 0, -3).Truncate(24 * time.Hour)
	dueDate := invoiceDate.AddDate(0, 0, 30)

	subtotal := decimal.NewFromInt(int64(digest[0])*10 + 100)
	tax := subtotal.Mul(decimal.NewFromFloat(0.1)).Round(2)
	amount := subtotal.Add(tax)

	result := &domain.ExtractionResult{
		AggregateConfidence: 93,
		VendorName:          "Stub Supplies Inc",
		InvoiceNumber:       "STUB-" + suffix,
		InvoiceDate:         &invoiceDate,
		DueDate:             &dueDate,
		Amount:              amount,
		Subtotal:            &subtotal,
		Tax:                 &tax,
	}
	result.Fields = []domain.ExtractedField{
		{FieldName: domain.FieldVendor, Value: result.VendorName, Confidence: 95},
		{FieldName: domain.FieldInvoiceNumber, Value: result.InvoiceNumber, Confidence: 94},
		{FieldName: domain.FieldInvoiceDate, Value: invoiceDate.Format("2006-01-02"), Confidence: 92},
		{FieldName: domain.FieldDueDate, Value: dueDate.Format("2006-01-02"), Confidence: 92},
		{FieldName: domain.FieldTotal, Value: amount.StringFixed(2), Confidence: 93},
		{FieldName: domain.FieldSubtotal, Value: subtotal.StringFixed(2), Confidence: 91},
		{FieldName: domain.FieldTax, Value: tax.StringFixed(2), Confidence: 91},
	}
	return result, nil
}
