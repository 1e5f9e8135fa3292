package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Approval is the approvals table row.
type Approval struct {
	ApprovalID       string    `db:"approval_id"`
	DocumentID       string    `db:"document_id"`
	RequiredApprover string    `db:"required_approver"`
	Priority         string    `db:"priority"`
	SLAHours         int       `db:"sla_hours"`
	SubmittedAt      time.Time `db:"submitted_at"`
	SubmittedBy      string    `db:"submitted_by"`
}

// ApprovalRule is the approval_rules table row.
type ApprovalRule struct {
	RuleID    string           `db:"rule_id"`
	Name      string           `db:"name"`
	VendorID  *string          `db:"vendor_id"`
	MinAmount *decimal.Decimal `db:"min_amount"`
	MaxAmount *decimal.Decimal `db:"max_amount"`
	Approver  string           `db:"approver"`
	SLAHours  int              `db:"sla_hours"`
	Priority  string           `db:"priority"`
	Enabled   bool             `db:"enabled"`
	RuleOrder int              `db:"rule_order"`
	AuditFields
}
