package mapping

import (
	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/models"
)

// ToModelException converts a domain.Exception to its row struct.
func ToModelException(d domain.Exception) models.Exception {
	return models.Exception{
		ExceptionID:  d.ExceptionID,
		DocumentID:   d.DocumentID,
		Type:         string(d.Type),
		Severity:     string(d.Severity),
		Description:  d.Description,
		SuggestedFix: nilIfEmpty(d.SuggestedFix),
		Owner:        nilIfEmpty(d.Owner),
		Resolved:     d.Resolved,
		Resolution:   nilIfEmpty(d.Resolution),
		ResolvedBy:   nilIfEmpty(d.ResolvedBy),
		ResolvedAt:   d.ResolvedAt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainException converts a row struct back.
func ToDomainException(m models.Exception) domain.Exception {
	return domain.Exception{
		ExceptionID:  m.ExceptionID,
		DocumentID:   m.DocumentID,
		Type:         domain.ExceptionType(m.Type),
		Severity:     domain.ExceptionSeverity(m.Severity),
		Description:  m.Description,
		SuggestedFix: emptyIfNil(m.SuggestedFix),
		Owner:        emptyIfNil(m.Owner),
		Resolved:     m.Resolved,
		Resolution:   emptyIfNil(m.Resolution),
		ResolvedBy:   emptyIfNil(m.ResolvedBy),
		ResolvedAt:   m.ResolvedAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
