package repositories

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// ApprovalReader defines read operations for approval data.
type ApprovalReader interface {
	// FindApprovalByID retrieves one approval.
	FindApprovalByID(ctx context.Context, approvalID string) (*domain.Approval, error)

	// FindApprovalByDocumentID retrieves the approval attached to a document,
	// if any. A document has at most one.
	FindApprovalByDocumentID(ctx context.Context, documentID string) (*domain.Approval, error)

	// ListPendingApprovals retrieves the approvals queue ordered by submission
	// time ascending (oldest SLA first).
	ListPendingApprovals(ctx context.Context, limit int, nextToken *string) ([]domain.Approval, *string, error)
}

// ApprovalWriter defines write operations for approval data.
type ApprovalWriter interface {
	// SaveApproval inserts a new approval record.
	SaveApproval(ctx context.Context, approval domain.Approval) error

	// DeleteApproval removes the approval record after a decision.
	DeleteApproval(ctx context.Context, approvalID string) error
}

// ApprovalRuleReader defines read operations for approval routing rules.
type ApprovalRuleReader interface {
	// ListApprovalRules returns all routing rules ordered by rule order.
	ListApprovalRules(ctx context.Context) ([]domain.ApprovalRule, error)

	// FindApprovalRuleByID retrieves one rule.
	FindApprovalRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error)
}

// ApprovalRuleWriter defines write operations for approval routing rules.
type ApprovalRuleWriter interface {
	SaveApprovalRule(ctx context.Context, rule domain.ApprovalRule) error
	UpdateApprovalRule(ctx context.Context, rule domain.ApprovalRule) error
	DeleteApprovalRule(ctx context.Context, ruleID string) error
}

// ApprovalRepositoryFacade combines all approval-related repository interfaces.
type ApprovalRepositoryFacade interface {
	ApprovalReader
	ApprovalWriter
	ApprovalRuleReader
	ApprovalRuleWriter
}
