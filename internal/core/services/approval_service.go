package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
	"github.com/invoxel/ap_console_app/internal/platform/config"
	"github.com/invoxel/ap_console_app/internal/platform/locking"
)

// Built-in tier parameters; configured rules override these.
const (
	managerSLAHours = 24
	cfoSLAHours     = 48
	managerApprover = "manager"
	cfoApprover     = "cfo"
)

type approvalService struct {
	apprRepo portsrepo.ApprovalRepositoryFacade
	docRepo  portsrepo.DocumentRepositoryWithTx
	locker   locking.DocumentLocker
	cfg      *config.Config
}

// NewApprovalService creates the approval router.
func NewApprovalService(
	apprRepo portsrepo.ApprovalRepositoryFacade,
	docRepo portsrepo.DocumentRepositoryWithTx,
	locker locking.DocumentLocker,
	cfg *config.Config,
) portssvc.ApprovalSvcFacade {
	return &approvalService{apprRepo: apprRepo, docRepo: docRepo, locker: locker, cfg: cfg}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// RouteForApproval picks the approver (vendor override > configured amount
// tier > built-in tier), creates the approval and moves the document to
// PENDING_APPROVAL. Documents at or under the auto-approve limit never route.
func (s *approvalService) RouteForApproval(ctx context.Context, documentID, actorUserID string) (*domain.Approval, error) {
	lock, err := s.locker.Acquire(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Amount.LessThanOrEqual(s.cfg.AutoApproveLimit) {
		return nil, fmt.Errorf("%w: amount %s is within the auto-approve limit; post the document directly", apperrors.ErrValidation, doc.Amount.String())
	}

	rule, err := s.matchRule(ctx, *doc)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	approval := domain.Approval{
		ApprovalID:       uuid.NewString(),
		DocumentID:       documentID,
		RequiredApprover: rule.Approver,
		Priority:         rule.Priority,
		SLAHours:         rule.SLAHours,
		SubmittedAt:      now,
		SubmittedBy:      actorUserID,
	}

	if err := applyTransition(ctx, s.docRepo, doc, domain.StatusPendingApproval, actorUserID, nil); err != nil {
		return nil, err
	}
	if err := s.apprRepo.SaveApproval(ctx, approval); err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("document routed for approval",
		"document_id", documentID,
		"approver", approval.RequiredApprover,
		"sla_hours", approval.SLAHours,
	)
	return &approval, nil
}

// matchRule resolves the routing rule for a document. Vendor-specific rules
// win over amount tiers; configured tiers win over the built-in defaults.
func (s *approvalService) matchRule(ctx context.Context, doc domain.Document) (*domain.ApprovalRule, error) {
	rules, err := s.apprRepo.ListApprovalRules(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range rules {
		if r.VendorID != "" && r.Matches(doc) {
			return &r, nil
		}
	}
	for _, r := range rules {
		if r.VendorID == "" && r.Matches(doc) {
			return &r, nil
		}
	}

	if doc.Amount.LessThanOrEqual(s.cfg.ManagerApproveLimit) {
		return &domain.ApprovalRule{
			Approver: managerApprover,
			SLAHours: managerSLAHours,
			Priority: domain.PriorityMedium,
		}, nil
	}
	return &domain.ApprovalRule{
		Approver: cfoApprover,
		SLAHours: cfoSLAHours,
		Priority: domain.PriorityHigh,
	}, nil
}

// Decide records the approver's outcome and removes the approval record.
func (s *approvalService) Decide(ctx context.Context, approvalID string, outcome domain.ApprovalOutcome, comment, actorUserID string) (*domain.Document, error) {
	approval, err := s.apprRepo.FindApprovalByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	lock, err := s.locker.Acquire(ctx, approval.DocumentID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	doc, err := s.docRepo.FindDocumentByID(ctx, approval.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusPendingApproval {
		return nil, fmt.Errorf("%w: document %s is %s, not pending approval", apperrors.ErrInvalidTransition, doc.DocumentID, doc.Status)
	}

	now := time.Now()
	switch outcome {
	case domain.OutcomeApprove:
		if err := applyTransition(ctx, s.docRepo, doc, domain.StatusApproved, actorUserID, nil); err != nil {
			return nil, err
		}

	case domain.OutcomeReject:
		if err := applyTransition(ctx, s.docRepo, doc, domain.StatusRejected, actorUserID, nil); err != nil {
			return nil, err
		}

	case domain.OutcomeRequestInfo:
		description := "Approver requested more information"
		if comment != "" {
			description = fmt.Sprintf("Approver requested more information: %s", comment)
		}
		exc := domain.Exception{
			ExceptionID:  uuid.NewString(),
			DocumentID:   doc.DocumentID,
			Type:         domain.ExceptionCodingError,
			Severity:     domain.SeverityMedium,
			Description:  description,
			SuggestedFix: "Answer the approver's question and resubmit for approval",
			Owner:        doc.AssignedTo,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorUserID,
			},
		}
		if err := applyTransition(ctx, s.docRepo, doc, domain.StatusException, actorUserID, []domain.Exception{exc}); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", apperrors.ErrValidation, outcome)
	}

	if err := s.apprRepo.DeleteApproval(ctx, approvalID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return doc, nil
}

// ListPendingApprovals returns the queue, tightest SLA first.
func (s *approvalService) ListPendingApprovals(ctx context.Context, params dto.ListParams) ([]domain.Approval, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	approvals, nextToken, err := s.apprRepo.ListPendingApprovals(ctx, limit, params.NextToken)
	if err != nil {
		return nil, nil, err
	}

	// The repository orders by submission time; within a page, differing SLA
	// budgets can still reorder who is actually closest to breaching.
	now := time.Now()
	sort.SliceStable(approvals, func(i, j int) bool {
		return approvals[i].HoursRemaining(now) < approvals[j].HoursRemaining(now)
	})
	return approvals, nextToken, nil
}

// ListRules returns all routing rules in evaluation order.
func (s *approvalService) ListRules(ctx context.Context) ([]domain.ApprovalRule, error) {
	return s.apprRepo.ListApprovalRules(ctx)
}

// CreateRule adds a routing rule.
func (s *approvalService) CreateRule(ctx context.Context, req dto.CreateApprovalRuleRequest, actorUserID string) (*domain.ApprovalRule, error) {
	if req.MinAmount != nil && req.MaxAmount != nil && req.MaxAmount.LessThan(*req.MinAmount) {
		return nil, fmt.Errorf("%w: maxAmount below minAmount", apperrors.ErrValidation)
	}

	now := time.Now()
	rule := domain.ApprovalRule{
		RuleID:    uuid.NewString(),
		Name:      req.Name,
		VendorID:  req.VendorID,
		MinAmount: req.MinAmount,
		MaxAmount: req.MaxAmount,
		Approver:  req.Approver,
		SLAHours:  req.SLAHours,
		Priority:  req.Priority,
		Enabled:   req.Enabled,
		RuleOrder: req.RuleOrder,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}
	if err := s.apprRepo.SaveApprovalRule(ctx, rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdateRule edits a routing rule.
func (s *approvalService) UpdateRule(ctx context.Context, ruleID string, req dto.UpdateApprovalRuleRequest, actorUserID string) (*domain.ApprovalRule, error) {
	rule, err := s.apprRepo.FindApprovalRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Approver != nil {
		rule.Approver = *req.Approver
	}
	if req.SLAHours != nil {
		if *req.SLAHours < 1 {
			return nil, fmt.Errorf("%w: slaHours must be positive", apperrors.ErrValidation)
		}
		rule.SLAHours = *req.SLAHours
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	if req.RuleOrder != nil {
		rule.RuleOrder = *req.RuleOrder
	}
	rule.LastUpdatedAt = time.Now()
	rule.LastUpdatedBy = actorUserID

	if err := s.apprRepo.UpdateApprovalRule(ctx, *rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a routing rule.
func (s *approvalService) DeleteRule(ctx context.Context, ruleID string, actorUserID string) error {
	return s.apprRepo.DeleteApprovalRule(ctx, ruleID)
}
