package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
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

type SyncServiceTestSuite struct {
	suite.Suite
	mockDocRepo *MockDocumentRepository
	mockERP     *MockERPClient
	service     portssvc.SyncSvcFacade
}

func (suite *SyncServiceTestSuite) SetupTest() {
	suite.mockDocRepo = new(MockDocumentRepository)
	suite.mockERP = new(MockERPClient)
	cfg := &config.Config{
		AutoApproveLimit: decimal.NewFromInt(500),
		ERPRetryBudget:   3,
		ERPRetryBackoff:  time.Millisecond,
	}
	suite.service = services.NewSyncService(
		suite.mockDocRepo, suite.mockERP,
		locking.NewLocalLocker(), cfg,
	)
}

func (suite *SyncServiceTestSuite) approvedDocument() *domain.Document {
	return &domain.Document{
		DocumentID: uuid.NewString(),
		VendorName: "Acme Corp",
		Status:     domain.StatusApproved,
		Amount:     decimal.NewFromInt(2000),
		SyncStatus: domain.SyncPending,
		Version:    3,
	}
}

// --- PostDocument ---

func (suite *SyncServiceTestSuite) TestPostDocument_FirstAttemptSucceeds() {
	ctx := context.Background()
	doc := suite.approvedDocument()

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockERP.On("PostInvoice", ctx, mock.MatchedBy(func(req portssvc.ERPPostRequest) bool {
		return req.DocumentID == doc.DocumentID && req.VendorName == "Acme Corp"
	})).Return(&portssvc.ERPPostResult{ERPID: "ERP-77"}, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusPosted && d.ERPID == "ERP-77" && d.SyncStatus == domain.SyncSynced
	}), int64(3), mock.MatchedBy(func(audit []domain.AuditEntry) bool {
		return len(audit) == 1 && audit[0].Action == domain.AuditPosted
	}), mock.Anything).Return(nil).Once()

	result, err := suite.service.PostDocument(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("ERP-77", result.ERPID)
	suite.Equal(domain.SyncSynced, result.SyncStatus)
	suite.Equal(1, result.Attempts)
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestPostDocument_AutoPostFromInReviewWithinLimit() {
	ctx := context.Background()
	doc := suite.approvedDocument()
	doc.Status = domain.StatusInReview
	doc.Amount = decimal.NewFromInt(450)

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockERP.On("PostInvoice", ctx, mock.Anything).Return(&portssvc.ERPPostResult{ERPID: "ERP-78"}, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusPosted
	}), int64(3), mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.PostDocument(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.SyncSynced, result.SyncStatus)
}

func (suite *SyncServiceTestSuite) TestPostDocument_InReviewAboveLimitRefused() {
	ctx := context.Background()
	doc := suite.approvedDocument()
	doc.Status = domain.StatusInReview
	doc.Amount = decimal.NewFromInt(501)

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()

	result, err := suite.service.PostDocument(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockERP.AssertNotCalled(suite.T(), "PostInvoice", mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestPostDocument_StructuredRejectionDoesNotRetry() {
	ctx := context.Background()
	doc := suite.approvedDocument()

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockERP.On("PostInvoice", ctx, mock.Anything).
		Return(&portssvc.ERPPostResult{FailureReason: "unknown GL account 9999"}, nil).Once()
	// syncStatus flips to ERROR, then the document lands in EXCEPTION with
	// the coding_error row in the same write.
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.SyncStatus == domain.SyncError && d.Status == domain.StatusApproved
	}), int64(3), mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusException
	}), int64(4), mock.Anything, mock.MatchedBy(func(excs []domain.Exception) bool {
		return len(excs) == 1 && excs[0].Type == domain.ExceptionCodingError
	})).Return(nil).Once()

	result, err := suite.service.PostDocument(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.SyncError, result.SyncStatus)
	suite.Equal(1, result.Attempts)
	suite.Equal("unknown GL account 9999", result.FailureReason)
	suite.mockERP.AssertNumberOfCalls(suite.T(), "PostInvoice", 1)
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestPostDocument_TransportFailuresExhaustBudget() {
	ctx := context.Background()
	doc := suite.approvedDocument()
	doc.SyncStatus = domain.SyncError // already marked from an earlier run

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Times(3)
	suite.mockERP.On("PostInvoice", ctx, mock.Anything).Return(nil, assert.AnError).Times(3)
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusException
	}), int64(3), mock.Anything, mock.MatchedBy(func(excs []domain.Exception) bool {
		return len(excs) == 1 && excs[0].Type == domain.ExceptionCodingError && excs[0].Severity == domain.SeverityHigh
	})).Return(nil).Once()

	result, err := suite.service.PostDocument(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.SyncError, result.SyncStatus)
	suite.Equal(3, result.Attempts)
	suite.mockERP.AssertNumberOfCalls(suite.T(), "PostInvoice", 3)
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestPostDocument_RetryAfterTransientFailure() {
	ctx := context.Background()
	doc := suite.approvedDocument()
	doc.SyncStatus = domain.SyncError

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Times(2)
	suite.mockERP.On("PostInvoice", ctx, mock.Anything).Return(nil, assert.AnError).Once()
	suite.mockERP.On("PostInvoice", ctx, mock.Anything).Return(&portssvc.ERPPostResult{ERPID: "ERP-79"}, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusPosted && d.ERPID == "ERP-79"
	}), int64(3), mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.PostDocument(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.SyncSynced, result.SyncStatus)
	suite.Equal(2, result.Attempts)
}

func (suite *SyncServiceTestSuite) TestPostDocument_PostedIsImmutable() {
	ctx := context.Background()
	doc := suite.approvedDocument()
	doc.Status = domain.StatusPosted

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()

	result, err := suite.service.PostDocument(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

// --- Resync ---

func (suite *SyncServiceTestSuite) TestResync_SingleAttemptFailureKeepsStatus() {
	ctx := context.Background()
	doc := suite.approvedDocument()
	doc.SyncStatus = domain.SyncError

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockERP.On("PostInvoice", ctx, mock.Anything).Return(nil, assert.AnError).Once()

	result, err := suite.service.Resync(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.SyncError, result.SyncStatus)
	suite.Equal(1, result.Attempts)
	suite.mockERP.AssertNumberOfCalls(suite.T(), "PostInvoice", 1)
	// A manual retry failing again raises no new exception and, with the
	// error already recorded, writes nothing.
	suite.mockDocRepo.AssertNotCalled(suite.T(), "UpdateDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestResync_Success() {
	ctx := context.Background()
	doc := suite.approvedDocument()
	doc.SyncStatus = domain.SyncError

	suite.mockDocRepo.On("FindDocumentByID", ctx, doc.DocumentID).Return(doc, nil).Once()
	suite.mockERP.On("PostInvoice", ctx, mock.Anything).Return(&portssvc.ERPPostResult{ERPID: "ERP-80"}, nil).Once()
	suite.mockDocRepo.On("UpdateDocument", ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Status == domain.StatusPosted && d.SyncStatus == domain.SyncSynced
	}), int64(3), mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.Resync(ctx, doc.DocumentID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("ERP-80", result.ERPID)
	suite.Equal(domain.SyncSynced, result.SyncStatus)
}

// --- Run Suite ---
func TestSyncService(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}
