package domain

import "time"

// ExceptionType classifies the condition that blocked automatic processing.
type ExceptionType string

const (
	ExceptionDuplicate      ExceptionType = "DUPLICATE"
	ExceptionMissingPO      ExceptionType = "MISSING_PO"
	ExceptionAmountMismatch ExceptionType = "AMOUNT_MISMATCH"
	ExceptionVendorMismatch ExceptionType = "VENDOR_MISMATCH"
	ExceptionLowConfidence  ExceptionType = "LOW_CONFIDENCE"
	ExceptionInvalidDate    ExceptionType = "INVALID_DATE"
	ExceptionCodingError    ExceptionType = "CODING_ERROR"
)

// ExceptionSeverity orders exceptions for display; it does not affect the
// document's status.
type ExceptionSeverity string

const (
	SeverityLow      ExceptionSeverity = "LOW"
	SeverityMedium   ExceptionSeverity = "MEDIUM"
	SeverityHigh     ExceptionSeverity = "HIGH"
	SeverityCritical ExceptionSeverity = "CRITICAL"
)

// SeverityRank maps severities to a sortable weight, highest first.
func SeverityRank(s ExceptionSeverity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Exception records one condition blocking a document. A document in status
// EXCEPTION always has at least one unresolved exception.
type Exception struct {
	ExceptionID  string            `json:"exceptionID"`
	DocumentID   string            `json:"documentID"`
	Type         ExceptionType     `json:"type"`
	Severity     ExceptionSeverity `json:"severity"`
	Description  string            `json:"description"`
	SuggestedFix string            `json:"suggestedFix,omitempty"`
	Owner        string            `json:"owner,omitempty"` // UserID currently working the exception
	Resolved     bool              `json:"resolved"`
	Resolution   string            `json:"resolution,omitempty"`
	ResolvedBy   string            `json:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time        `json:"resolvedAt,omitempty"`
	AuditFields
}

// AgeDays is the number of whole days since the exception was raised.
// Derived at read time, never stored.
func (e Exception) AgeDays(now time.Time) int {
	if now.Before(e.CreatedAt) {
		return 0
	}
	return int(now.Sub(e.CreatedAt).Hours() / 24)
}
