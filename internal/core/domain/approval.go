package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalPriority orders the approvals queue.
type ApprovalPriority string

const (
	PriorityLow    ApprovalPriority = "LOW"
	PriorityMedium ApprovalPriority = "MEDIUM"
	PriorityHigh   ApprovalPriority = "HIGH"
)

// ApprovalOutcome is the approver's decision on a pending approval.
type ApprovalOutcome string

const (
	OutcomeApprove     ApprovalOutcome = "APPROVE"
	OutcomeReject      ApprovalOutcome = "REJECT"
	OutcomeRequestInfo ApprovalOutcome = "REQUEST_INFO"
)

// Approval is the sign-off request for one document. It exists exactly while
// the document's status is PENDING_APPROVAL.
type Approval struct {
	ApprovalID       string           `json:"approvalID"`
	DocumentID       string           `json:"documentID"`
	RequiredApprover string           `json:"requiredApprover"`
	Priority         ApprovalPriority `json:"priority"`
	SLAHours         int              `json:"slaHours"`
	SubmittedAt      time.Time        `json:"submittedAt"`
	SubmittedBy      string           `json:"submittedBy"`
}

// HoursRemaining is the SLA budget left, floored at zero. It is derived from
// the wall clock on every read so stored and computed state cannot drift.
func (a Approval) HoursRemaining(now time.Time) float64 {
	remaining := float64(a.SLAHours) - now.Sub(a.SubmittedAt).Hours()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ApprovalRule decides who must sign off on a document. Vendor-specific rules
// override amount tiers; amount tiers override the configured default.
type ApprovalRule struct {
	RuleID    string           `json:"ruleID"`
	Name      string           `json:"name"`
	VendorID  string           `json:"vendorID,omitempty"` // empty for amount-tier rules
	MinAmount *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount *decimal.Decimal `json:"maxAmount,omitempty"`
	Approver  string           `json:"approver"`
	SLAHours  int              `json:"slaHours"`
	Priority  ApprovalPriority `json:"priority"`
	Enabled   bool             `json:"enabled"`
	RuleOrder int              `json:"ruleOrder"`
	AuditFields
}

// Matches reports whether the rule applies to the given document.
func (r ApprovalRule) Matches(doc Document) bool {
	if !r.Enabled {
		return false
	}
	if r.VendorID != "" && r.VendorID != doc.VendorID {
		return false
	}
	if r.MinAmount != nil && doc.Amount.LessThan(*r.MinAmount) {
		return false
	}
	if r.MaxAmount != nil && doc.Amount.GreaterThan(*r.MaxAmount) {
		return false
	}
	return true
}
