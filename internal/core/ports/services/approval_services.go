package services

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/dto"
)

// ApprovalSvcFacade is the approval router surface.
type ApprovalSvcFacade interface {
	// RouteForApproval evaluates the routing rules (vendor override > amount
	// tier > default), creates the approval record and transitions the
	// document to PENDING_APPROVAL.
	RouteForApproval(ctx context.Context, documentID, actorUserID string) (*domain.Approval, error)

	// Decide records the approver's outcome. Approve moves the document to
	// APPROVED, reject to REJECTED; request_info raises a coding_error
	// exception carrying the comment and moves it to EXCEPTION. The approval
	// record is deleted in all three cases.
	Decide(ctx context.Context, approvalID string, outcome domain.ApprovalOutcome, comment, actorUserID string) (*domain.Document, error)

	// ListPendingApprovals returns the queue, tightest SLA first.
	ListPendingApprovals(ctx context.Context, params dto.ListParams) ([]domain.Approval, *string, error)

	// Routing rule management (settings screen).
	ListRules(ctx context.Context) ([]domain.ApprovalRule, error)
	CreateRule(ctx context.Context, req dto.CreateApprovalRuleRequest, actorUserID string) (*domain.ApprovalRule, error)
	UpdateRule(ctx context.Context, ruleID string, req dto.UpdateApprovalRuleRequest, actorUserID string) (*domain.ApprovalRule, error)
	DeleteRule(ctx context.Context, ruleID string, actorUserID string) error
}
