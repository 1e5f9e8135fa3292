package mapping

import (
	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/models"
)

// ToModelApproval converts a domain.Approval to its row struct.
func ToModelApproval(d domain.Approval) models.Approval {
	return models.Approval{
		ApprovalID:       d.ApprovalID,
		DocumentID:       d.DocumentID,
		RequiredApprover: d.RequiredApprover,
		Priority:         string(d.Priority),
		SLAHours:         d.SLAHours,
		SubmittedAt:      d.SubmittedAt,
		SubmittedBy:      d.SubmittedBy,
	}
}

// ToDomainApproval converts a row struct back.
func ToDomainApproval(m models.Approval) domain.Approval {
	return domain.Approval{
		ApprovalID:       m.ApprovalID,
		DocumentID:       m.DocumentID,
		RequiredApprover: m.RequiredApprover,
		Priority:         domain.ApprovalPriority(m.Priority),
		SLAHours:         m.SLAHours,
		SubmittedAt:      m.SubmittedAt,
		SubmittedBy:      m.SubmittedBy,
	}
}

// ToModelApprovalRule converts a routing rule.
func ToModelApprovalRule(d domain.ApprovalRule) models.ApprovalRule {
	return models.ApprovalRule{
		RuleID:      d.RuleID,
		Name:        d.Name,
		VendorID:    nilIfEmpty(d.VendorID),
		MinAmount:   d.MinAmount,
		MaxAmount:   d.MaxAmount,
		Approver:    d.Approver,
		SLAHours:    d.SLAHours,
		Priority:    string(d.Priority),
		Enabled:     d.Enabled,
		RuleOrder:   d.RuleOrder,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainApprovalRule converts a routing rule row back.
func ToDomainApprovalRule(m models.ApprovalRule) domain.ApprovalRule {
	return domain.ApprovalRule{
		RuleID:      m.RuleID,
		Name:        m.Name,
		VendorID:    emptyIfNil(m.VendorID),
		MinAmount:   m.MinAmount,
		MaxAmount:   m.MaxAmount,
		Approver:    m.Approver,
		SLAHours:    m.SLAHours,
		Priority:    domain.ApprovalPriority(m.Priority),
		Enabled:     m.Enabled,
		RuleOrder:   m.RuleOrder,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
