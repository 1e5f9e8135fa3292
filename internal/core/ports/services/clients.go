package services

import (
	"context"
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExtractionClient is the external extraction collaborator: raw document bytes
// in, extracted fields plus aggregate confidence out.
type ExtractionClient interface {
	Extract(ctx context.Context, content []byte, mimeType string) (*domain.ExtractionResult, error)
}

// ERPPostRequest is the posting payload sent to the external accounting system.
type ERPPostRequest struct {
	DocumentID    string          `json:"documentID"`
	VendorName    string          `json:"vendorName"`
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   *time.Time      `json:"invoiceDate,omitempty"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	GLAccount     string          `json:"glAccount"`
	CostCenter    string          `json:"costCenter,omitempty"`
}

// ERPPostResult is the ERP's answer: an external id on success, a structured
// failure reason otherwise.
type ERPPostResult struct {
	ERPID         string `json:"erpID,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// ERPClient is the external ERP collaborator.
type ERPClient interface {
	PostInvoice(ctx context.Context, req ERPPostRequest) (*ERPPostResult, error)
}
