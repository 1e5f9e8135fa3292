package mapping

import (
	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/models"
)

// ToModelUser converts a domain.User to its row struct.
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:       d.UserID,
		Name:         d.Name,
		Email:        d.Email,
		Role:         string(d.Role),
		PasswordHash: d.PasswordHash,
		AuditFields:  ToModelAuditFields(d.AuditFields),
		DeletedAt:    d.DeletedAt,
	}
}

// ToDomainUser converts a row struct back.
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         domain.UserRole(m.Role),
		PasswordHash: m.PasswordHash,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
		DeletedAt:    m.DeletedAt,
	}
}
