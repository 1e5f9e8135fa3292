package dto

import (
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDocumentRequest carries a pre-computed extraction payload for document
// creation. The multipart upload path bypasses this and feeds the extraction
// client output straight to the service.
type CreateDocumentRequest struct {
	VendorName    string            `json:"vendorName" binding:"required"`
	InvoiceNumber string            `json:"invoiceNumber" binding:"required"`
	InvoiceDate   *time.Time        `json:"invoiceDate"`
	DueDate       *time.Time        `json:"dueDate"`
	Amount        decimal.Decimal   `json:"amount" binding:"required"`
	Subtotal      *decimal.Decimal  `json:"subtotal"`
	Tax           *decimal.Decimal  `json:"tax"`
	Confidence    int               `json:"confidence" binding:"omitempty,min=0,max=100"`
	Fields        []ExtractedField  `json:"fields"`
	LineItems     []LineItemRequest `json:"lineItems"`
}

// ExtractedField mirrors one extraction provenance row on the wire.
type ExtractedField struct {
	FieldName  string           `json:"fieldName" binding:"required"`
	Value      string           `json:"value"`
	Confidence int              `json:"confidence" binding:"min=0,max=100"`
	Box        *domain.FieldBox `json:"box,omitempty"`
}

// LineItemRequest is one billed line in a creation payload.
type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToExtractionResult converts the request into the domain extraction output
// the document service consumes.
func (r CreateDocumentRequest) ToExtractionResult() domain.ExtractionResult {
	res := domain.ExtractionResult{
		VendorName:          r.VendorName,
		InvoiceNumber:       r.InvoiceNumber,
		InvoiceDate:         r.InvoiceDate,
		DueDate:             r.DueDate,
		Amount:              r.Amount,
		Subtotal:            r.Subtotal,
		Tax:                 r.Tax,
		AggregateConfidence: r.Confidence,
	}
	for _, f := range r.Fields {
		res.Fields = append(res.Fields, domain.ExtractedField{
			FieldName:  f.FieldName,
			Value:      f.Value,
			Confidence: f.Confidence,
			Box:        f.Box,
		})
	}
	for _, li := range r.LineItems {
		res.LineItems = append(res.LineItems, domain.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      li.Amount,
		})
	}
	return res
}

// UpdateDocumentRequest defines the editable document attributes. Pointers
// distinguish "not provided" from zero values.
type UpdateDocumentRequest struct {
	VendorID      *string          `json:"vendorID"`
	InvoiceNumber *string          `json:"invoiceNumber"`
	InvoiceDate   *time.Time       `json:"invoiceDate"`
	DueDate       *time.Time       `json:"dueDate"`
	Amount        *decimal.Decimal `json:"amount"`
	Subtotal      *decimal.Decimal `json:"subtotal"`
	Tax           *decimal.Decimal `json:"tax"`
	GLAccount     *string          `json:"glAccount"`
	CostCenter    *string          `json:"costCenter"`
}

// TransitionDocumentRequest names the target lifecycle status.
type TransitionDocumentRequest struct {
	TargetStatus domain.DocumentStatus `json:"targetStatus" binding:"required,documentstatus"`
}

// AssignDocumentRequest names the reviewer to assign.
type AssignDocumentRequest struct {
	AssigneeUserID string `json:"assigneeUserID" binding:"required"`
}

// AddCommentRequest carries a free-text note.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListDocumentsParams defines query parameters for the document inbox.
type ListDocumentsParams struct {
	ListParams
	Status     *domain.DocumentStatus `form:"status"`
	VendorID   *string                `form:"vendorID"`
	AssignedTo *string                `form:"assignedTo"`
}

// DocumentResponse mirrors domain.Document for API consumers, with the status
// display metadata resolved from the canonical table.
type DocumentResponse struct {
	DocumentID      string                `json:"documentID"`
	VendorID        string                `json:"vendorID"`
	VendorName      string                `json:"vendorName"`
	InvoiceNumber   string                `json:"invoiceNumber"`
	InvoiceDate     *time.Time            `json:"invoiceDate,omitempty"`
	DueDate         *time.Time            `json:"dueDate,omitempty"`
	Amount          decimal.Decimal       `json:"amount"`
	Subtotal        *decimal.Decimal      `json:"subtotal,omitempty"`
	Tax             *decimal.Decimal      `json:"tax,omitempty"`
	Status          domain.DocumentStatus `json:"status"`
	StatusMeta      domain.StatusMeta     `json:"statusMeta"`
	ConfidenceScore int                   `json:"confidenceScore"`
	AssignedTo      string                `json:"assignedTo,omitempty"`
	GLAccount       string                `json:"glAccount,omitempty"`
	CostCenter      string                `json:"costCenter,omitempty"`
	UploadedAt      time.Time             `json:"uploadedAt"`
	UploadedBy      string                `json:"uploadedBy"`
	ERPID           string                `json:"erpID,omitempty"`
	SyncStatus      domain.SyncStatus     `json:"syncStatus,omitempty"`
	Version         int64                 `json:"version"`

	LineItems       []domain.LineItem       `json:"lineItems,omitempty"`
	ExtractedFields []domain.ExtractedField `json:"extractedFields,omitempty"`
	Comments        []domain.Comment        `json:"comments,omitempty"`
}

// ToDocumentResponse converts a domain.Document to its response DTO.
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:      d.DocumentID,
		VendorID:        d.VendorID,
		VendorName:      d.VendorName,
		InvoiceNumber:   d.InvoiceNumber,
		InvoiceDate:     d.InvoiceDate,
		DueDate:         d.DueDate,
		Amount:          d.Amount,
		Subtotal:        d.Subtotal,
		Tax:             d.Tax,
		Status:          d.Status,
		StatusMeta:      domain.MetaForStatus(d.Status),
		ConfidenceScore: d.ConfidenceScore,
		AssignedTo:      d.AssignedTo,
		GLAccount:       d.GLAccount,
		CostCenter:      d.CostCenter,
		UploadedAt:      d.UploadedAt,
		UploadedBy:      d.UploadedBy,
		ERPID:           d.ERPID,
		SyncStatus:      d.SyncStatus,
		Version:         d.Version,
		LineItems:       d.LineItems,
		ExtractedFields: d.ExtractedFields,
		Comments:        d.Comments,
	}
}

// ToListDocumentsResponse converts a page of documents.
func ToListDocumentsResponse(docs []domain.Document, nextToken *string) ListDocumentsResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = ToDocumentResponse(&docs[i])
	}
	return ListDocumentsResponse{Documents: out, NextToken: nextToken}
}

// ListDocumentsResponse wraps a documents page.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}
