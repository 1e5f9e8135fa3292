package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
)

// --- Mock DocumentRepository ---

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context, filter portsrepo.ListDocumentsFilter, limit int, nextToken *string) ([]domain.Document, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var docs []domain.Document
	if args.Get(0) != nil {
		docs = args.Get(0).([]domain.Document)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return docs, token, args.Error(2)
}

func (m *MockDocumentRepository) FindDuplicateCandidates(ctx context.Context, vendorID, invoiceNumber string, amountLow, amountHigh decimal.Decimal, dateFrom, dateTo *time.Time) ([]domain.Document, error) {
	args := m.Called(ctx, vendorID, invoiceNumber, amountLow, amountHigh, dateFrom, dateTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document, audit []domain.AuditEntry, exceptions []domain.Exception) error {
	args := m.Called(ctx, doc, audit, exceptions)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateDocument(ctx context.Context, doc domain.Document, expectedVersion int64, audit []domain.AuditEntry, exceptions []domain.Exception) error {
	args := m.Called(ctx, doc, expectedVersion, audit, exceptions)
	return args.Error(0)
}

func (m *MockDocumentRepository) AddComment(ctx context.Context, comment domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindAuditTrail(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func (m *MockDocumentRepository) CountHumanAuditEntries(ctx context.Context, documentID string, systemUserID string) (int, error) {
	args := m.Called(ctx, documentID, systemUserID)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockDocumentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDocumentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ExceptionRepository ---

type MockExceptionRepository struct {
	mock.Mock
}

func (m *MockExceptionRepository) FindExceptionByID(ctx context.Context, exceptionID string) (*domain.Exception, error) {
	args := m.Called(ctx, exceptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Exception), args.Error(1)
}

func (m *MockExceptionRepository) FindExceptionsByDocumentID(ctx context.Context, documentID string) ([]domain.Exception, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exception), args.Error(1)
}

func (m *MockExceptionRepository) CountUnresolvedByDocumentID(ctx context.Context, documentID string) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

func (m *MockExceptionRepository) ListOpenExceptions(ctx context.Context, limit int, nextToken *string) ([]domain.Exception, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var exceptions []domain.Exception
	if args.Get(0) != nil {
		exceptions = args.Get(0).([]domain.Exception)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return exceptions, token, args.Error(2)
}

func (m *MockExceptionRepository) MarkResolved(ctx context.Context, exception domain.Exception) error {
	args := m.Called(ctx, exception)
	return args.Error(0)
}

func (m *MockExceptionRepository) UpdateOwner(ctx context.Context, exceptionID, ownerUserID, updatedBy string) error {
	args := m.Called(ctx, exceptionID, ownerUserID, updatedBy)
	return args.Error(0)
}

// --- Mock ApprovalRepository ---

type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) FindApprovalByID(ctx context.Context, approvalID string) (*domain.Approval, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Approval), args.Error(1)
}

func (m *MockApprovalRepository) FindApprovalByDocumentID(ctx context.Context, documentID string) (*domain.Approval, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Approval), args.Error(1)
}

func (m *MockApprovalRepository) ListPendingApprovals(ctx context.Context, limit int, nextToken *string) ([]domain.Approval, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var approvals []domain.Approval
	if args.Get(0) != nil {
		approvals = args.Get(0).([]domain.Approval)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return approvals, token, args.Error(2)
}

func (m *MockApprovalRepository) SaveApproval(ctx context.Context, approval domain.Approval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}

func (m *MockApprovalRepository) DeleteApproval(ctx context.Context, approvalID string) error {
	args := m.Called(ctx, approvalID)
	return args.Error(0)
}

func (m *MockApprovalRepository) ListApprovalRules(ctx context.Context) ([]domain.ApprovalRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalRule), args.Error(1)
}

func (m *MockApprovalRepository) FindApprovalRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRule), args.Error(1)
}

func (m *MockApprovalRepository) SaveApprovalRule(ctx context.Context, rule domain.ApprovalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockApprovalRepository) UpdateApprovalRule(ctx context.Context, rule domain.ApprovalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockApprovalRepository) DeleteApprovalRule(ctx context.Context, ruleID string) error {
	args := m.Called(ctx, ruleID)
	return args.Error(0)
}

// --- Mock VendorRepository ---

type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindVendorByName(ctx context.Context, name string) (*domain.Vendor, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *MockVendorRepository) ListVendors(ctx context.Context, includeInactive bool, limit int, nextToken *string) ([]domain.Vendor, *string, error) {
	args := m.Called(ctx, includeInactive, limit, nextToken)
	var vendors []domain.Vendor
	if args.Get(0) != nil {
		vendors = args.Get(0).([]domain.Vendor)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return vendors, token, args.Error(2)
}

func (m *MockVendorRepository) GetVendorStats(ctx context.Context, vendorID string) (*domain.VendorStats, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VendorStats), args.Error(1)
}

func (m *MockVendorRepository) SaveVendor(ctx context.Context, vendor domain.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) UpdateVendor(ctx context.Context, vendor domain.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) ReplaceAutoCodingRules(ctx context.Context, vendorID string, rules []domain.AutoCodingRule) error {
	args := m.Called(ctx, vendorID, rules)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string) error {
	args := m.Called(ctx, userID, deletedBy)
	return args.Error(0)
}

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetKPISummary(ctx context.Context, since time.Time, systemUserID string) (*domain.KPISummary, error) {
	args := m.Called(ctx, since, systemUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KPISummary), args.Error(1)
}

func (m *MockReportingRepository) GetSpendByVendor(ctx context.Context, from, to time.Time) ([]domain.VendorSpendRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VendorSpendRow), args.Error(1)
}

// --- Mock ExceptionService ---

type MockExceptionService struct {
	mock.Mock
}

func (m *MockExceptionService) Evaluate(ctx context.Context, doc domain.Document, extraction domain.ExtractionResult) ([]domain.Exception, error) {
	args := m.Called(ctx, doc, extraction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exception), args.Error(1)
}

func (m *MockExceptionService) ResolveException(ctx context.Context, exceptionID, resolution, actorUserID string) error {
	args := m.Called(ctx, exceptionID, resolution, actorUserID)
	return args.Error(0)
}

func (m *MockExceptionService) AssignException(ctx context.Context, exceptionID, ownerUserID, actorUserID string) error {
	args := m.Called(ctx, exceptionID, ownerUserID, actorUserID)
	return args.Error(0)
}

func (m *MockExceptionService) ListOpenExceptions(ctx context.Context, params dto.ListParams) ([]domain.Exception, *string, error) {
	args := m.Called(ctx, params)
	var exceptions []domain.Exception
	if args.Get(0) != nil {
		exceptions = args.Get(0).([]domain.Exception)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return exceptions, token, args.Error(2)
}

func (m *MockExceptionService) GetExceptionsForDocument(ctx context.Context, documentID string) ([]domain.Exception, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exception), args.Error(1)
}

// --- Mock ERPClient ---

type MockERPClient struct {
	mock.Mock
}

func (m *MockERPClient) PostInvoice(ctx context.Context, req portssvc.ERPPostRequest) (*portssvc.ERPPostResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.ERPPostResult), args.Error(1)
}
