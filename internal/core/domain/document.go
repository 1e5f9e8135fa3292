package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus indicates where a document sits in the processing lifecycle.
type DocumentStatus string

const (
	StatusPendingReview   DocumentStatus = "PENDING_REVIEW"
	StatusInReview        DocumentStatus = "IN_REVIEW"
	StatusPendingApproval DocumentStatus = "PENDING_APPROVAL"
	StatusApproved        DocumentStatus = "APPROVED"
	StatusException       DocumentStatus = "EXCEPTION"
	StatusPosted          DocumentStatus = "POSTED"
	StatusRejected        DocumentStatus = "REJECTED"
)

// SyncStatus records the outcome of posting a document to the ERP.
type SyncStatus string

const (
	SyncPending SyncStatus = "PENDING"
	SyncSynced  SyncStatus = "SYNCED"
	SyncError   SyncStatus = "ERROR"
)

// ReconciliationTolerance is the rounding slack allowed when comparing
// subtotal + tax against the document total.
var ReconciliationTolerance = decimal.NewFromFloat(0.01)

// allowedTransitions is the authoritative lifecycle table. A target status is
// reachable from a source status only if listed here; POSTED and REJECTED are
// terminal and have no outbound edges.
var allowedTransitions = map[DocumentStatus][]DocumentStatus{
	StatusPendingReview:   {StatusInReview, StatusException, StatusRejected},
	StatusInReview:        {StatusPendingApproval, StatusPosted, StatusException, StatusRejected},
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusException},
	StatusApproved:        {StatusPosted, StatusException},
	StatusException:       {StatusPendingReview, StatusInReview, StatusRejected},
	StatusPosted:          {},
	StatusRejected:        {},
}

// CanTransition reports whether moving from one status to another is permitted.
func CanTransition(from, to DocumentStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further mutation.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusPosted || s == StatusRejected
}

// Valid reports whether the value is a known document status.
func (s DocumentStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Document represents one ingested invoice or bill.
type Document struct {
	DocumentID      string           `json:"documentID"`
	VendorID        string           `json:"vendorID"`
	VendorName      string           `json:"vendorName"`
	InvoiceNumber   string           `json:"invoiceNumber"`
	InvoiceDate     *time.Time       `json:"invoiceDate,omitempty"`
	DueDate         *time.Time       `json:"dueDate,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	Subtotal        *decimal.Decimal `json:"subtotal,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	Status          DocumentStatus   `json:"status"`
	ConfidenceScore int              `json:"confidenceScore"` // 0-100, aggregate from extraction
	AssignedTo      string           `json:"assignedTo,omitempty"`
	GLAccount       string           `json:"glAccount,omitempty"`
	CostCenter      string           `json:"costCenter,omitempty"`
	UploadedAt      time.Time        `json:"uploadedAt"`
	UploadedBy      string           `json:"uploadedBy"`
	ERPID           string           `json:"erpID,omitempty"`
	SyncStatus      SyncStatus       `json:"syncStatus,omitempty"`
	// Version backs optimistic concurrency control; repositories bump it on
	// every successful write and reject stale writers.
	Version int64 `json:"version"`

	LineItems       []LineItem       `json:"lineItems,omitempty"`
	ExtractedFields []ExtractedField `json:"extractedFields,omitempty"`
	Comments        []Comment        `json:"comments,omitempty"`
	AuditFields
}

// ReconciliationOK checks subtotal + tax against the total when both components
// are present. Documents missing either component always pass.
func (d Document) ReconciliationOK() bool {
	if d.Subtotal == nil || d.Tax == nil {
		return true
	}
	diff := d.Subtotal.Add(*d.Tax).Sub(d.Amount).Abs()
	return diff.LessThanOrEqual(ReconciliationTolerance)
}

// LineItem is a single billed line on a document.
type LineItem struct {
	LineItemID  string          `json:"lineItemID"`
	DocumentID  string          `json:"documentID"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
	GLAccount   string          `json:"glAccount,omitempty"`
	CostCenter  string          `json:"costCenter,omitempty"`
}

// Comment is a free-text note a user leaves on a document.
type Comment struct {
	CommentID  string    `json:"commentID"`
	DocumentID string    `json:"documentID"`
	UserID     string    `json:"userID"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}
