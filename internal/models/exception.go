package models

import "time"

// Exception is the exceptions table row.
type Exception struct {
	ExceptionID  string     `db:"exception_id"`
	DocumentID   string     `db:"document_id"`
	Type         string     `db:"type"`
	Severity     string     `db:"severity"`
	Description  string     `db:"description"`
	SuggestedFix *string    `db:"suggested_fix"`
	Owner        *string    `db:"owner"`
	Resolved     bool       `db:"resolved"`
	Resolution   *string    `db:"resolution"`
	ResolvedBy   *string    `db:"resolved_by"`
	ResolvedAt   *time.Time `db:"resolved_at"`
	AuditFields
}
