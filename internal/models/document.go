package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus is the stored lifecycle value.
type DocumentStatus string

// SyncStatus is the stored ERP sync value.
type SyncStatus string

// Document is the documents table row.
type Document struct {
	DocumentID      string           `db:"document_id"`
	VendorID        string           `db:"vendor_id"`
	InvoiceNumber   string           `db:"invoice_number"`
	InvoiceDate     *time.Time       `db:"invoice_date"`
	DueDate         *time.Time       `db:"due_date"`
	Amount          decimal.Decimal  `db:"amount"`
	Subtotal        *decimal.Decimal `db:"subtotal"`
	Tax             *decimal.Decimal `db:"tax"`
	Status          DocumentStatus   `db:"status"`
	ConfidenceScore int              `db:"confidence_score"`
	AssignedTo      *string          `db:"assigned_to"`
	GLAccount       *string          `db:"gl_account"`
	CostCenter      *string          `db:"cost_center"`
	UploadedAt      time.Time        `db:"uploaded_at"`
	UploadedBy      string           `db:"uploaded_by"`
	ERPID           *string          `db:"erp_id"`
	SyncStatus      *SyncStatus      `db:"sync_status"`
	Version         int64            `db:"version"`
	AuditFields
}

// LineItem is the document_line_items table row.
type LineItem struct {
	LineItemID  string          `db:"line_item_id"`
	DocumentID  string          `db:"document_id"`
	Description string          `db:"description"`
	Quantity    decimal.Decimal `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Amount      decimal.Decimal `db:"amount"`
	GLAccount   *string         `db:"gl_account"`
	CostCenter  *string         `db:"cost_center"`
	LineOrder   int             `db:"line_order"`
}

// ExtractedField is the extracted_fields table row. Immutable provenance.
type ExtractedField struct {
	ExtractedFieldID string   `db:"extracted_field_id"`
	DocumentID       string   `db:"document_id"`
	FieldName        string   `db:"field_name"`
	Value            string   `db:"value"`
	Confidence       int      `db:"confidence"`
	BoxX             *float64 `db:"box_x"`
	BoxY             *float64 `db:"box_y"`
	BoxWidth         *float64 `db:"box_width"`
	BoxHeight        *float64 `db:"box_height"`
}

// Comment is the document_comments table row.
type Comment struct {
	CommentID  string    `db:"comment_id"`
	DocumentID string    `db:"document_id"`
	UserID     string    `db:"user_id"`
	Text       string    `db:"text"`
	CreatedAt  time.Time `db:"created_at"`
}

// AuditEntry is the audit_entries table row. Append-only.
type AuditEntry struct {
	AuditEntryID string    `db:"audit_entry_id"`
	DocumentID   string    `db:"document_id"`
	UserID       string    `db:"user_id"`
	Field        string    `db:"field"`
	OldValue     string    `db:"old_value"`
	NewValue     string    `db:"new_value"`
	Action       string    `db:"action"`
	CreatedAt    time.Time `db:"created_at"`
}
