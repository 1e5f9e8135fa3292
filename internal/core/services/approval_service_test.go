package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/core/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/platform/config"
	"github.com/invoxel/ap_console_app/internal/platform/locking"
)

// --- Test Suite ---

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockApprRepo *MockApprovalRepository
	mockDocRepo  *MockDocumentRepository
	service      portssvc.ApprovalSvcFacade
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockApprRepo = new(MockApprovalRepository)
	suite.mockDocRepo = new(MockDocumentRepository)
	cfg := &config.Config{
		AutoApproveLimit:    decimal.NewFromInt(500),
		ManagerApproveLimit: decimal.NewFromInt(5000),
	}
	suite.service = services.NewApprovalService(
		suite.mockApprRepo, suite.mockDocRepo,
		locking.NewLocalLocker(), cfg,
	)
}

func (suite *ApprovalServiceTestSuite) reviewDocument(amount string) *domain.Document {
	return &domain.Document{
		DocumentID: uuid.NewString(),
		VendorID:   uuid.NewString(),
		Status:     domain.StatusInReview,
		Amount:     decimal.RequireFromString(amount),
		Version:    2,
	}
}

func (suite *ApprovalServiceTestSuite) expectRoute(ctx context.Context, doc *domain.Document, rules []domain.ApprovalRule) {
	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockApprRepo.On("ListApprovalRules", ctx).Return(rules, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusPendingApproval
	}), doc.Version, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockApprRepo.On("SaveApproval", ctx, mock.AnythingOfType("domain.Approval")).Return(nil).Once()
}

// --- RouteForApproval ---

func (suite *ApprovalServiceTestSuite) TestRouteForApproval_WithinAutoApproveLimitNeverRoutes() {
	ctx := context.Background()
	doc := suite.reviewDocument("500")

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()

	approval, err := suite.service.RouteForApproval(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(approval)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockApprRepo.AssertNotCalled(suite.T(), "SaveApproval", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestRouteForApproval_ManagerTier() {
	ctx := context.Background()
	doc := suite.reviewDocument("5000")
	suite.expectRoute(ctx, doc, []domain.ApprovalRule{})

	approval, err := suite.service.RouteForApproval(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().NotNil(approval)
	suite.Equal("manager", approval.RequiredApprover)
	suite.Equal(24, approval.SLAHours)
	suite.Equal(domain.PriorityMedium, approval.Priority)
	suite.mockApprRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRouteForApproval_CFOTierAboveManagerLimit() {
	ctx := context.Background()
	doc := suite.reviewDocument("5000.01")
	suite.expectRoute(ctx, doc, []domain.ApprovalRule{})

	approval, err := suite.service.RouteForApproval(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("cfo", approval.RequiredApprover)
	suite.Equal(48, approval.SLAHours)
	suite.Equal(domain.PriorityHigh, approval.Priority)
}

func (suite *ApprovalServiceTestSuite) TestRouteForApproval_VendorRuleOverridesTiers() {
	ctx := context.Background()
	doc := suite.reviewDocument("800")
	tierMin := decimal.NewFromInt(0)
	rules := []domain.ApprovalRule{
		{RuleID: uuid.NewString(), MinAmount: &tierMin, Approver: "controller", SLAHours: 12, Priority: domain.PriorityMedium, Enabled: true, RuleOrder: 0},
		{RuleID: uuid.NewString(), VendorID: doc.VendorID, Approver: "security-lead", SLAHours: 8, Priority: domain.PriorityHigh, Enabled: true, RuleOrder: 1},
	}
	suite.expectRoute(ctx, doc, rules)

	approval, err := suite.service.RouteForApproval(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("security-lead", approval.RequiredApprover)
	suite.Equal(8, approval.SLAHours)
}

func (suite *ApprovalServiceTestSuite) TestRouteForApproval_DisabledRuleIsSkipped() {
	ctx := context.Background()
	doc := suite.reviewDocument("800")
	rules := []domain.ApprovalRule{
		{RuleID: uuid.NewString(), VendorID: doc.VendorID, Approver: "security-lead", SLAHours: 8, Priority: domain.PriorityHigh, Enabled: false},
	}
	suite.expectRoute(ctx, doc, rules)

	approval, err := suite.service.RouteForApproval(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("manager", approval.RequiredApprover)
}

func (suite *ApprovalServiceTestSuite) TestRouteForApproval_IllegalFromPendingReview() {
	ctx := context.Background()
	doc := suite.reviewDocument("800")
	doc.Status = domain.StatusPendingReview

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockApprRepo.On("ListApprovalRules", ctx).Return([]domain.ApprovalRule{}, nil).Once()

	approval, err := suite.service.RouteForApproval(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(approval)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockApprRepo.AssertNotCalled(suite.T(), "SaveApproval", mock.Anything, mock.Anything)
}

// --- Decide ---

func (suite *ApprovalServiceTestSuite) pendingApproval() (*domain.Approval, *domain.Document) {
	doc := suite.reviewDocument("2000")
	doc.Status = domain.StatusPendingApproval
	approval := &domain.Approval{
		ApprovalID:       uuid.NewString(),
		DocumentID:       doc.DocumentID,
		RequiredApprover: "manager",
		SLAHours:         24,
		SubmittedAt:      time.Now().Add(-2 * time.Hour),
	}
	return approval, doc
}

func (suite *ApprovalServiceTestSuite) TestDecide_Approve() {
	ctx := context.Background()
	approval, doc := suite.pendingApproval()

	suite.mockApprRepo.On("FindApprovalByID", ctx, approval.ApprovalID).Return(approval, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusApproved
	}), int64(2), mock.MatchedBy(func(audit []domain.AuditEntry) bool {
		return len(audit) == 1 && audit[0].Action == domain.AuditApproved
	}), mock.Anything).Return(nil).Once()
	suite.mockApprRepo.On("DeleteApproval", ctx, approval.ApprovalID).Return(nil).Once()

	decided, err := suite.service.Decide(ctx, approval.ApprovalID, domain.OutcomeApprove, "", uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, decided.Status)
	suite.mockApprRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestDecide_Reject() {
	ctx := context.Background()
	approval, doc := suite.pendingApproval()

	suite.mockApprRepo.On("FindApprovalByID", ctx, approval.ApprovalID).Return(approval, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusRejected
	}), int64(2), mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockApprRepo.On("DeleteApproval", ctx, approval.ApprovalID).Return(nil).Once()

	decided, err := suite.service.Decide(ctx, approval.ApprovalID, domain.OutcomeReject, "over budget", uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, decided.Status)
}

func (suite *ApprovalServiceTestSuite) TestDecide_RequestInfoRaisesCodingError() {
	ctx := context.Background()
	approval, doc := suite.pendingApproval()
	doc.AssignedTo = uuid.NewString()

	suite.mockApprRepo.On("FindApprovalByID", ctx, approval.ApprovalID).Return(approval, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusException
	}), int64(2), mock.Anything, mock.MatchedBy(func(excs []domain.Exception) bool {
		return len(excs) == 1 &&
			excs[0].Type == domain.ExceptionCodingError &&
			excs[0].Owner == doc.AssignedTo &&
			excs[0].Description == "Approver requested more information: which cost center is this for?"
	})).Return(nil).Once()
	suite.mockApprRepo.On("DeleteApproval", ctx, approval.ApprovalID).Return(nil).Once()

	decided, err := suite.service.Decide(ctx, approval.ApprovalID, domain.OutcomeRequestInfo, "which cost center is this for?", uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.StatusException, decided.Status)
	suite.mockDocRepo.AssertExpectations(suite.T())
	suite.mockApprRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestDecide_DocumentNotPendingApproval() {
	ctx := context.Background()
	approval, doc := suite.pendingApproval()
	doc.Status = domain.StatusException

	suite.mockApprRepo.On("FindApprovalByID", ctx, approval.ApprovalID).Return(approval, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()

	decided, err := suite.service.Decide(ctx, approval.ApprovalID, domain.OutcomeApprove, "", uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockApprRepo.AssertNotCalled(suite.T(), "DeleteApproval", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecide_UnknownOutcome() {
	ctx := context.Background()
	approval, doc := suite.pendingApproval()

	suite.mockApprRepo.On("FindApprovalByID", ctx, approval.ApprovalID).Return(approval, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()

	decided, err := suite.service.Decide(ctx, approval.ApprovalID, domain.ApprovalOutcome("ESCALATE"), "", uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- ListPendingApprovals ---

func (suite *ApprovalServiceTestSuite) TestListPendingApprovals_TightestSLAFirst() {
	ctx := context.Background()
	now := time.Now()
	relaxed := domain.Approval{ApprovalID: "a", SLAHours: 48, SubmittedAt: now.Add(-1 * time.Hour)}
	urgent := domain.Approval{ApprovalID: "b", SLAHours: 24, SubmittedAt: now.Add(-20 * time.Hour)}

	suite.mockApprRepo.On("ListPendingApprovals", ctx, 20, (*string)(nil)).
		Return([]domain.Approval{relaxed, urgent}, nil, nil).Once()

	approvals, nextToken, err := suite.service.ListPendingApprovals(ctx, dto.ListParams{})

	suite.Require().NoError(err)
	suite.Nil(nextToken)
	suite.Require().Len(approvals, 2)
	suite.Equal("b", approvals[0].ApprovalID)
	suite.Equal("a", approvals[1].ApprovalID)
}

// --- Rules ---

func (suite *ApprovalServiceTestSuite) TestCreateRule_MaxBelowMin() {
	ctx := context.Background()
	minAmount := decimal.NewFromInt(1000)
	maxAmount := decimal.NewFromInt(100)
	req := dto.CreateApprovalRuleRequest{
		Name: "inverted", Approver: "manager", SLAHours: 24,
		Priority: domain.PriorityMedium, MinAmount: &minAmount, MaxAmount: &maxAmount,
	}

	rule, err := suite.service.CreateRule(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ApprovalServiceTestSuite) TestCreateRule_Success() {
	ctx := context.Background()
	actor := uuid.NewString()
	req := dto.CreateApprovalRuleRequest{
		Name: "big spend", Approver: "cfo", SLAHours: 48,
		Priority: domain.PriorityHigh, Enabled: true, RuleOrder: 3,
	}

	suite.mockApprRepo.On("SaveApprovalRule", ctx, mock.MatchedBy(func(r domain.ApprovalRule) bool {
		return r.Name == req.Name && r.Approver == "cfo" && r.CreatedBy == actor
	})).Return(nil).Once()

	rule, err := suite.service.CreateRule(ctx, req, actor)

	suite.Require().NoError(err)
	suite.NotEmpty(rule.RuleID)
	suite.mockApprRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestUpdateRule_InvalidSLA() {
	ctx := context.Background()
	ruleID := uuid.NewString()
	zero := 0

	suite.mockApprRepo.On("FindApprovalRuleByID", ctx, ruleID).Return(&domain.ApprovalRule{RuleID: ruleID}, nil).Once()

	rule, err := suite.service.UpdateRule(ctx, ruleID, dto.UpdateApprovalRuleRequest{SLAHours: &zero}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rule)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Run Suite ---
func TestApprovalService(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
