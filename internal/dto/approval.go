package dto

import (
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DecideApprovalRequest records the approver's outcome.
type DecideApprovalRequest struct {
	Outcome domain.ApprovalOutcome `json:"outcome" binding:"required,oneof=APPROVE REJECT REQUEST_INFO"`
	Comment string                 `json:"comment"`
}

// ApprovalResponse mirrors domain.Approval with the derived SLA countdown.
type ApprovalResponse struct {
	ApprovalID       string                  `json:"approvalID"`
	DocumentID       string                  `json:"documentID"`
	RequiredApprover string                  `json:"requiredApprover"`
	Priority         domain.ApprovalPriority `json:"priority"`
	SLAHours         int                     `json:"slaHours"`
	HoursRemaining   float64                 `json:"hoursRemaining"`
	SubmittedAt      time.Time               `json:"submittedAt"`
	SubmittedBy      string                  `json:"submittedBy"`
}

// ToApprovalResponse converts a domain.Approval, deriving hoursRemaining from now.
func ToApprovalResponse(a *domain.Approval, now time.Time) ApprovalResponse {
	return ApprovalResponse{
		ApprovalID:       a.ApprovalID,
		DocumentID:       a.DocumentID,
		RequiredApprover: a.RequiredApprover,
		Priority:         a.Priority,
		SLAHours:         a.SLAHours,
		HoursRemaining:   a.HoursRemaining(now),
		SubmittedAt:      a.SubmittedAt,
		SubmittedBy:      a.SubmittedBy,
	}
}

// ToListApprovalsResponse converts a page of approvals.
func ToListApprovalsResponse(approvals []domain.Approval, nextToken *string, now time.Time) ListApprovalsResponse {
	out := make([]ApprovalResponse, len(approvals))
	for i := range approvals {
		out[i] = ToApprovalResponse(&approvals[i], now)
	}
	return ListApprovalsResponse{Approvals: out, NextToken: nextToken}
}

// ListApprovalsResponse wraps an approvals page.
type ListApprovalsResponse struct {
	Approvals []ApprovalResponse `json:"approvals"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// CreateApprovalRuleRequest defines a new routing rule.
type CreateApprovalRuleRequest struct {
	Name      string                  `json:"name" binding:"required"`
	VendorID  string                  `json:"vendorID"`
	MinAmount *decimal.Decimal        `json:"minAmount"`
	MaxAmount *decimal.Decimal        `json:"maxAmount"`
	Approver  string                  `json:"approver" binding:"required"`
	SLAHours  int                     `json:"slaHours" binding:"required,min=1"`
	Priority  domain.ApprovalPriority `json:"priority" binding:"required,oneof=LOW MEDIUM HIGH"`
	Enabled   bool                    `json:"enabled"`
	RuleOrder int                     `json:"ruleOrder"`
}

// UpdateApprovalRuleRequest edits a routing rule. Pointers distinguish
// "not provided" from zero values.
type UpdateApprovalRuleRequest struct {
	Name      *string                  `json:"name"`
	Approver  *string                  `json:"approver"`
	SLAHours  *int                     `json:"slaHours"`
	Priority  *domain.ApprovalPriority `json:"priority"`
	Enabled   *bool                    `json:"enabled"`
	RuleOrder *int                     `json:"ruleOrder"`
}
