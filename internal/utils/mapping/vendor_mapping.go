package mapping

import (
	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/models"
)

// ToModelVendor converts a domain.Vendor to its row struct.
func ToModelVendor(d domain.Vendor) models.Vendor {
	return models.Vendor{
		VendorID:         d.VendorID,
		Name:             d.Name,
		IsActive:         d.IsActive,
		Email:            nilIfEmpty(d.Email),
		Phone:            nilIfEmpty(d.Phone),
		Address:          nilIfEmpty(d.Address),
		DefaultGLAccount: nilIfEmpty(d.DefaultGLAccount),
		PaymentTerms:     nilIfEmpty(d.PaymentTerms),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVendor converts a row struct back. Auto-coding rules are hydrated
// by the repository.
func ToDomainVendor(m models.Vendor) domain.Vendor {
	return domain.Vendor{
		VendorID:         m.VendorID,
		Name:             m.Name,
		IsActive:         m.IsActive,
		Email:            emptyIfNil(m.Email),
		Phone:            emptyIfNil(m.Phone),
		Address:          emptyIfNil(m.Address),
		DefaultGLAccount: emptyIfNil(m.DefaultGLAccount),
		PaymentTerms:     emptyIfNil(m.PaymentTerms),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAutoCodingRule converts one rule.
func ToModelAutoCodingRule(d domain.AutoCodingRule) models.AutoCodingRule {
	return models.AutoCodingRule{
		RuleID:     d.RuleID,
		VendorID:   d.VendorID,
		Condition:  d.Condition,
		GLAccount:  d.GLAccount,
		CostCenter: nilIfEmpty(d.CostCenter),
		Enabled:    d.Enabled,
		RuleOrder:  d.RuleOrder,
	}
}

// ToDomainAutoCodingRule converts one rule row back.
func ToDomainAutoCodingRule(m models.AutoCodingRule) domain.AutoCodingRule {
	return domain.AutoCodingRule{
		RuleID:     m.RuleID,
		VendorID:   m.VendorID,
		Condition:  m.Condition,
		GLAccount:  m.GLAccount,
		CostCenter: emptyIfNil(m.CostCenter),
		Enabled:    m.Enabled,
		RuleOrder:  m.RuleOrder,
	}
}
