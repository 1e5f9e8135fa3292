package mapping

import (
	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/models"
)

// ToModelAuditFields converts domain audit fields to their model counterpart.
func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

// ToDomainAuditFields converts model audit fields to their domain counterpart.
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}

// nilIfEmpty maps an empty string to a NULL column.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// emptyIfNil maps a NULL column to an empty string.
func emptyIfNil(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
