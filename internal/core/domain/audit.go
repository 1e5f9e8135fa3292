package domain

import "time"

// AuditAction is the kind of change an audit entry records.
type AuditAction string

const (
	AuditCreated  AuditAction = "CREATED"
	AuditUpdated  AuditAction = "UPDATED"
	AuditApproved AuditAction = "APPROVED"
	AuditRejected AuditAction = "REJECTED"
	AuditPosted   AuditAction = "POSTED"
)

// ActionForStatus derives the audit action kind for a status transition.
func ActionForStatus(target DocumentStatus) AuditAction {
	switch target {
	case StatusApproved:
		return AuditApproved
	case StatusRejected:
		return AuditRejected
	case StatusPosted:
		return AuditPosted
	default:
		return AuditUpdated
	}
}

// AuditEntry is one append-only log record. Entries are immutable once
// written; every status transition and every field edit appends exactly one.
type AuditEntry struct {
	AuditEntryID string      `json:"auditEntryID"`
	DocumentID   string      `json:"documentID"`
	UserID       string      `json:"userID"`
	Field        string      `json:"field"`
	OldValue     string      `json:"oldValue"`
	NewValue     string      `json:"newValue"`
	Action       AuditAction `json:"action"`
	CreatedAt    time.Time   `json:"createdAt"`
}
