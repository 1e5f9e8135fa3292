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
	"github.com/invoxel/ap_console_app/internal/platform/config"
	"github.com/invoxel/ap_console_app/internal/platform/locking"
)

// --- Test Suite ---

type ExceptionServiceTestSuite struct {
	suite.Suite
	mockExcRepo *MockExceptionRepository
	mockDocRepo *MockDocumentRepository
	service     portssvc.ExceptionSvcFacade
}

func (suite *ExceptionServiceTestSuite) SetupTest() {
	suite.mockExcRepo = new(MockExceptionRepository)
	suite.mockDocRepo = new(MockDocumentRepository)
	cfg := &config.Config{
		AutoApproveLimit:    decimal.NewFromInt(500),
		ManagerApproveLimit: decimal.NewFromInt(5000),
		ConfidenceThreshold: 85,
	}
	suite.service = services.NewExceptionService(suite.mockExcRepo, suite.mockDocRepo, locking.NewLocalLocker(), cfg)
}

func (suite *ExceptionServiceTestSuite) cleanDocument() domain.Document {
	invoiceDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return domain.Document{
		DocumentID:      uuid.NewString(),
		VendorID:        uuid.NewString(),
		InvoiceNumber:   "INV-500",
		InvoiceDate:     &invoiceDate,
		Amount:          decimal.NewFromInt(1000),
		ConfidenceScore: 95,
	}
}

func (suite *ExceptionServiceTestSuite) expectNoDuplicates(ctx context.Context) {
	suite.mockDocRepo.On("FindDuplicateCandidates", ctx,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Document{}, nil).Once()
}

// --- Evaluate ---

func (suite *ExceptionServiceTestSuite) TestEvaluate_CleanDocument() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	suite.expectNoDuplicates(ctx)

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 95})

	suite.Require().NoError(err)
	suite.Empty(exceptions)
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_ExactDuplicateIsCritical() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	earlier := suite.cleanDocument()
	earlier.InvoiceNumber = doc.InvoiceNumber

	suite.mockDocRepo.On("FindDuplicateCandidates", ctx,
		doc.VendorID, doc.InvoiceNumber, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Document{earlier}, nil).Once()

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 95})

	suite.Require().NoError(err)
	suite.Require().Len(exceptions, 1)
	suite.Equal(domain.ExceptionDuplicate, exceptions[0].Type)
	suite.Equal(domain.SeverityCritical, exceptions[0].Severity)
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_FuzzyDuplicateIsHigh() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	near := suite.cleanDocument()
	near.InvoiceNumber = "INV-501"
	nearDate := doc.InvoiceDate.AddDate(0, 0, 3)
	near.InvoiceDate = &nearDate

	suite.mockDocRepo.On("FindDuplicateCandidates", ctx,
		doc.VendorID, doc.InvoiceNumber, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Document{near}, nil).Once()

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 95})

	suite.Require().NoError(err)
	suite.Require().Len(exceptions, 1)
	suite.Equal(domain.ExceptionDuplicate, exceptions[0].Type)
	suite.Equal(domain.SeverityHigh, exceptions[0].Severity)
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_LowAggregateConfidence() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	doc.ConfidenceScore = 70
	suite.expectNoDuplicates(ctx)

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 70})

	suite.Require().NoError(err)
	suite.Require().Len(exceptions, 1)
	suite.Equal(domain.ExceptionLowConfidence, exceptions[0].Type)
	suite.Equal(domain.SeverityMedium, exceptions[0].Severity)
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_WeakCriticalFieldBehindStrongAggregate() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	doc.ConfidenceScore = 95
	extraction := domain.ExtractionResult{
		AggregateConfidence: 95,
		Fields: []domain.ExtractedField{
			{FieldName: domain.FieldVendor, Confidence: 96},
			{FieldName: domain.FieldTotal, Confidence: 60},
		},
	}
	suite.expectNoDuplicates(ctx)

	exceptions, err := suite.service.Evaluate(ctx, doc, extraction)

	suite.Require().NoError(err)
	suite.Require().Len(exceptions, 1)
	suite.Equal(domain.ExceptionLowConfidence, exceptions[0].Type)
	suite.Contains(exceptions[0].Description, domain.FieldTotal)
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_AmountMismatch() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	subtotal := decimal.NewFromInt(1150)
	tax := decimal.RequireFromString("100.50")
	doc.Amount = decimal.RequireFromString("1240.50")
	doc.Subtotal = &subtotal
	doc.Tax = &tax
	suite.expectNoDuplicates(ctx)

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 95})

	suite.Require().NoError(err)
	suite.Require().Len(exceptions, 1)
	suite.Equal(domain.ExceptionAmountMismatch, exceptions[0].Type)
	suite.Equal(domain.SeverityHigh, exceptions[0].Severity)
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_ReconciledAmountsPass() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	subtotal := decimal.NewFromInt(1150)
	tax := decimal.RequireFromString("100.50")
	doc.Amount = decimal.RequireFromString("1250.50")
	doc.Subtotal = &subtotal
	doc.Tax = &tax
	suite.expectNoDuplicates(ctx)

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 95})

	suite.Require().NoError(err)
	suite.Empty(exceptions)
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_MissingRequiredFields() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	doc.InvoiceNumber = ""
	doc.InvoiceDate = nil
	doc.Amount = decimal.Zero
	suite.expectNoDuplicates(ctx)

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 95})

	suite.Require().NoError(err)
	suite.Require().Len(exceptions, 3)
	types := map[domain.ExceptionType]bool{}
	for _, exc := range exceptions {
		types[exc.Type] = true
	}
	suite.True(types[domain.ExceptionMissingPO])
	suite.True(types[domain.ExceptionAmountMismatch])
	suite.True(types[domain.ExceptionInvalidDate])
}

func (suite *ExceptionServiceTestSuite) TestEvaluate_DueDateBeforeInvoiceDate() {
	ctx := context.Background()
	doc := suite.cleanDocument()
	early := doc.InvoiceDate.AddDate(0, 0, -10)
	doc.DueDate = &early
	suite.expectNoDuplicates(ctx)

	exceptions, err := suite.service.Evaluate(ctx, doc, domain.ExtractionResult{AggregateConfidence: 95})

	suite.Require().NoError(err)
	suite.Require().Len(exceptions, 1)
	suite.Equal(domain.ExceptionInvalidDate, exceptions[0].Type)
}

// --- ResolveException ---

func (suite *ExceptionServiceTestSuite) TestResolveException_LastOneReleasesToInReview() {
	ctx := context.Background()
	documentID := uuid.NewString()
	exc := &domain.Exception{
		ExceptionID: uuid.NewString(),
		DocumentID:  documentID,
		Type:        domain.ExceptionLowConfidence,
	}
	doc := &domain.Document{
		DocumentID: documentID,
		Status:     domain.StatusException,
		AssignedTo: uuid.NewString(),
		Version:    4,
	}

	suite.mockExcRepo.On("FindExceptionByID", ctx, exc.ExceptionID).Return(exc, nil).Once()
	suite.mockExcRepo.On("MarkResolved", ctx, mock.MatchedBy(func(e domain.Exception) bool {
		return e.Resolved && e.Resolution == "verified against source"
	})).Return(nil).Once()
	suite.mockExcRepo.On("CountUnresolvedByDocumentID", ctx, documentID).Return(0, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, documentID).Return(doc, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusInReview
	}), int64(4), mock.MatchedBy(func(audit []domain.AuditEntry) bool {
		return len(audit) == 2
	}), mock.Anything).Return(nil).Once()

	err := suite.service.ResolveException(ctx, exc.ExceptionID, "verified against source", uuid.NewString())

	suite.Require().NoError(err)
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *ExceptionServiceTestSuite) TestResolveException_LastOneUnassignedGoesToPendingReview() {
	ctx := context.Background()
	documentID := uuid.NewString()
	exc := &domain.Exception{ExceptionID: uuid.NewString(), DocumentID: documentID}
	doc := &domain.Document{DocumentID: documentID, Status: domain.StatusException, Version: 2}

	suite.mockExcRepo.On("FindExceptionByID", ctx, exc.ExceptionID).Return(exc, nil).Once()
	suite.mockExcRepo.On("MarkResolved", ctx, mock.Anything).Return(nil).Once()
	suite.mockExcRepo.On("CountUnresolvedByDocumentID", ctx, documentID).Return(0, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, documentID).Return(doc, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusPendingReview
	}), int64(2), mock.Anything, mock.Anything).Return(nil).Once()

	err := suite.service.ResolveException(ctx, exc.ExceptionID, "duplicate was a different bill", uuid.NewString())

	suite.Require().NoError(err)
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *ExceptionServiceTestSuite) TestResolveException_OthersStillOpenKeepsStatus() {
	ctx := context.Background()
	documentID := uuid.NewString()
	exc := &domain.Exception{ExceptionID: uuid.NewString(), DocumentID: documentID}
	doc := &domain.Document{DocumentID: documentID, Status: domain.StatusException, Version: 2}

	suite.mockExcRepo.On("FindExceptionByID", ctx, exc.ExceptionID).Return(exc, nil).Once()
	suite.mockExcRepo.On("MarkResolved", ctx, mock.Anything).Return(nil).Once()
	suite.mockExcRepo.On("CountUnresolvedByDocumentID", ctx, documentID).Return(1, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", ctx, documentID).Return(doc, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusException
	}), int64(2), mock.Anything, mock.Anything).Return(nil).Once()

	err := suite.service.ResolveException(ctx, exc.ExceptionID, "amounts corrected", uuid.NewString())

	suite.Require().NoError(err)
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *ExceptionServiceTestSuite) TestResolveException_BlankResolution() {
	err := suite.service.ResolveException(context.Background(), uuid.NewString(), "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExceptionServiceTestSuite) TestResolveException_AlreadyResolved() {
	ctx := context.Background()
	exc := &domain.Exception{ExceptionID: uuid.NewString(), DocumentID: uuid.NewString(), Resolved: true}

	suite.mockExcRepo.On("FindExceptionByID", ctx, exc.ExceptionID).Return(exc, nil).Once()

	err := suite.service.ResolveException(ctx, exc.ExceptionID, "again", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExcRepo.AssertNotCalled(suite.T(), "MarkResolved", mock.Anything, mock.Anything)
}

// --- AssignException ---

func (suite *ExceptionServiceTestSuite) TestAssignException_Success() {
	ctx := context.Background()
	exceptionID := uuid.NewString()
	owner := uuid.NewString()
	actor := uuid.NewString()

	suite.mockExcRepo.On("UpdateOwner", ctx, exceptionID, owner, actor).Return(nil).Once()

	err := suite.service.AssignException(ctx, exceptionID, owner, actor)

	suite.Require().NoError(err)
	suite.mockExcRepo.AssertExpectations(suite.T())
}

func (suite *ExceptionServiceTestSuite) TestAssignException_BlankOwner() {
	err := suite.service.AssignException(context.Background(), uuid.NewString(), "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Run Suite ---
func TestExceptionService(t *testing.T) {
	suite.Run(t, new(ExceptionServiceTestSuite))
}
