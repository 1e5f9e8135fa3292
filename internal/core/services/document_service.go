package services

import (
	"context"
	"errors"
	"fmt"
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

type documentService struct {
	docRepo      portsrepo.DocumentRepositoryWithTx
	vendorRepo   portsrepo.VendorRepositoryFacade
	exceptionSvc portssvc.ExceptionSvcFacade
	excRepo      portsrepo.ExceptionRepositoryFacade
	locker       locking.DocumentLocker
	cfg          *config.Config
}

// NewDocumentService creates the document lifecycle service.
func NewDocumentService(
	docRepo portsrepo.DocumentRepositoryWithTx,
	vendorRepo portsrepo.VendorRepositoryFacade,
	excRepo portsrepo.ExceptionRepositoryFacade,
	exceptionSvc portssvc.ExceptionSvcFacade,
	locker locking.DocumentLocker,
	cfg *config.Config,
) portssvc.DocumentSvcFacade {
	return &documentService{
		docRepo:      docRepo,
		vendorRepo:   vendorRepo,
		excRepo:      excRepo,
		exceptionSvc: exceptionSvc,
		locker:       locker,
		cfg:          cfg,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// applyTransition validates the lifecycle edge, writes the status column and
// appends the derived audit entry. Exceptions raised by the transition ride
// the same repository write so the status flip and its exception rows commit
// together. The caller must hold the document lock. On success doc reflects
// the new status and bumped version.
func applyTransition(ctx context.Context, repo portsrepo.DocumentWriter, doc *domain.Document, target domain.DocumentStatus, actorUserID string, exceptions []domain.Exception, extraAudit ...domain.AuditEntry) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, target)
	}
	if doc.Status.IsTerminal() {
		return fmt.Errorf("%w: document %s is %s and accepts no further changes", apperrors.ErrInvalidTransition, doc.DocumentID, doc.Status)
	}
	if !domain.CanTransition(doc.Status, target) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, doc.Status, target)
	}

	now := time.Now()
	audit := append(extraAudit, domain.AuditEntry{
		AuditEntryID: uuid.NewString(),
		DocumentID:   doc.DocumentID,
		UserID:       actorUserID,
		Field:        "status",
		OldValue:     string(doc.Status),
		NewValue:     string(target),
		Action:       domain.ActionForStatus(target),
		CreatedAt:    now,
	})

	expectedVersion := doc.Version
	doc.Status = target
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = actorUserID

	if err := repo.UpdateDocument(ctx, *doc, expectedVersion, audit, exceptions); err != nil {
		return err
	}
	doc.Version++
	return nil
}

// CreateDocument seeds a document from an extraction result, applies vendor
// auto-coding, runs the exception checks and persists everything. An unknown
// vendor name is registered inactive so the vendor_mismatch exception has a
// registry row to point at.
func (s *documentService) CreateDocument(ctx context.Context, extraction domain.ExtractionResult, uploadedBy string) (*domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	if extraction.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", apperrors.ErrValidation)
	}

	vendor, vendorKnown, err := s.resolveVendor(ctx, extraction.VendorName, uploadedBy, now)
	if err != nil {
		return nil, err
	}

	doc := domain.Document{
		DocumentID:      uuid.NewString(),
		VendorID:        vendor.VendorID,
		VendorName:      vendor.Name,
		InvoiceNumber:   extraction.InvoiceNumber,
		InvoiceDate:     extraction.InvoiceDate,
		DueDate:         extraction.DueDate,
		Amount:          extraction.Amount,
		Subtotal:        extraction.Subtotal,
		Tax:             extraction.Tax,
		Status:          domain.StatusPendingReview,
		ConfidenceScore: extraction.AggregateConfidence,
		UploadedAt:      now,
		UploadedBy:      uploadedBy,
		Version:         1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     uploadedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: uploadedBy,
		},
	}

	for i, li := range extraction.LineItems {
		li.LineItemID = uuid.NewString()
		li.DocumentID = doc.DocumentID
		extraction.LineItems[i] = li
	}
	doc.LineItems = extraction.LineItems

	for i, f := range extraction.Fields {
		if f.ExtractedFieldID == "" {
			f.ExtractedFieldID = uuid.NewString()
		}
		f.DocumentID = doc.DocumentID
		extraction.Fields[i] = f
	}
	doc.ExtractedFields = extraction.Fields

	if glAccount, costCenter, matched := domain.ApplyAutoCoding(*vendor, doc); matched {
		doc.GLAccount = glAccount
		doc.CostCenter = costCenter
	} else if vendor.DefaultGLAccount != "" {
		doc.GLAccount = vendor.DefaultGLAccount
	}

	exceptions, err := s.exceptionSvc.Evaluate(ctx, doc, extraction)
	if err != nil {
		return nil, err
	}
	if !vendorKnown {
		exceptions = append(exceptions, domain.Exception{
			Type:         domain.ExceptionVendorMismatch,
			Severity:     domain.SeverityHigh,
			Description:  fmt.Sprintf("Vendor %q is not in the registry", vendor.Name),
			SuggestedFix: "Confirm the vendor details and activate the registry entry",
		})
	}
	if len(exceptions) > 0 {
		doc.Status = domain.StatusException
	}
	for i := range exceptions {
		exceptions[i].ExceptionID = uuid.NewString()
		exceptions[i].DocumentID = doc.DocumentID
		exceptions[i].AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     uploadedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: uploadedBy,
		}
	}

	audit := []domain.AuditEntry{{
		AuditEntryID: uuid.NewString(),
		DocumentID:   doc.DocumentID,
		UserID:       uploadedBy,
		Field:        "document",
		NewValue:     string(doc.Status),
		Action:       domain.AuditCreated,
		CreatedAt:    now,
	}}

	if err := s.docRepo.SaveDocument(ctx, doc, audit, exceptions); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	logger.Info("document created",
		"document_id", doc.DocumentID,
		"vendor_id", doc.VendorID,
		"status", string(doc.Status),
		"exceptions", len(exceptions),
	)
	return &doc, nil
}

// resolveVendor finds the vendor by extracted name, registering an inactive
// placeholder when the name is unknown. The bool reports whether the vendor
// was already registered and active.
func (s *documentService) resolveVendor(ctx context.Context, name, actorUserID string, now time.Time) (*domain.Vendor, bool, error) {
	if name == "" {
		name = "Unknown Vendor"
	}
	vendor, err := s.vendorRepo.FindVendorByName(ctx, name)
	if err == nil {
		return vendor, vendor.IsActive, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	placeholder := domain.Vendor{
		VendorID: uuid.NewString(),
		Name:     name,
		IsActive: false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}
	if err := s.vendorRepo.SaveVendor(ctx, placeholder); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race with a concurrent upload for the same vendor.
			existing, findErr := s.vendorRepo.FindVendorByName(ctx, name)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, existing.IsActive, nil
		}
		return nil, false, fmt.Errorf("failed to register vendor %q: %w", name, err)
	}
	return &placeholder, false, nil
}

// UpdateDocument applies field edits under the document lock, appending one
// audit entry per changed field, and re-checks amount reconciliation.
func (s *documentService) UpdateDocument(ctx context.Context, documentID string, req dto.UpdateDocumentRequest, actorUserID string) (*domain.Document, error) {
	lock, err := s.locker.Acquire(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: document %s is %s and accepts no further changes", apperrors.ErrInvalidTransition, documentID, doc.Status)
	}

	now := time.Now()
	var audit []domain.AuditEntry
	appendAudit := func(field, oldVal, newVal string) {
		audit = append(audit, domain.AuditEntry{
			AuditEntryID: uuid.NewString(),
			DocumentID:   documentID,
			UserID:       actorUserID,
			Field:        field,
			OldValue:     oldVal,
			NewValue:     newVal,
			Action:       domain.AuditUpdated,
			CreatedAt:    now,
		})
	}

	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount cannot be negative", apperrors.ErrValidation)
		}
		if !req.Amount.Equal(doc.Amount) {
			appendAudit("amount", doc.Amount.String(), req.Amount.String())
			doc.Amount = *req.Amount
		}
	}
	if req.Subtotal != nil && (doc.Subtotal == nil || !req.Subtotal.Equal(*doc.Subtotal)) {
		old := ""
		if doc.Subtotal != nil {
			old = doc.Subtotal.String()
		}
		appendAudit("subtotal", old, req.Subtotal.String())
		doc.Subtotal = req.Subtotal
	}
	if req.Tax != nil && (doc.Tax == nil || !req.Tax.Equal(*doc.Tax)) {
		old := ""
		if doc.Tax != nil {
			old = doc.Tax.String()
		}
		appendAudit("tax", old, req.Tax.String())
		doc.Tax = req.Tax
	}
	if req.InvoiceNumber != nil && *req.InvoiceNumber != doc.InvoiceNumber {
		if *req.InvoiceNumber == "" {
			return nil, fmt.Errorf("%w: invoice number cannot be blank", apperrors.ErrValidation)
		}
		appendAudit("invoiceNumber", doc.InvoiceNumber, *req.InvoiceNumber)
		doc.InvoiceNumber = *req.InvoiceNumber
	}
	if req.InvoiceDate != nil {
		old := ""
		if doc.InvoiceDate != nil {
			old = doc.InvoiceDate.Format(time.DateOnly)
		}
		appendAudit("invoiceDate", old, req.InvoiceDate.Format(time.DateOnly))
		doc.InvoiceDate = req.InvoiceDate
	}
	if req.DueDate != nil {
		if doc.InvoiceDate != nil && req.DueDate.Before(*doc.InvoiceDate) {
			return nil, fmt.Errorf("%w: due date precedes invoice date", apperrors.ErrValidation)
		}
		old := ""
		if doc.DueDate != nil {
			old = doc.DueDate.Format(time.DateOnly)
		}
		appendAudit("dueDate", old, req.DueDate.Format(time.DateOnly))
		doc.DueDate = req.DueDate
	}
	if req.VendorID != nil && *req.VendorID != doc.VendorID {
		vendor, err := s.vendorRepo.FindVendorByID(ctx, *req.VendorID)
		if err != nil {
			return nil, err
		}
		appendAudit("vendorID", doc.VendorID, vendor.VendorID)
		doc.VendorID = vendor.VendorID
		doc.VendorName = vendor.Name
	}
	if req.GLAccount != nil && *req.GLAccount != doc.GLAccount {
		appendAudit("glAccount", doc.GLAccount, *req.GLAccount)
		doc.GLAccount = *req.GLAccount
	}
	if req.CostCenter != nil && *req.CostCenter != doc.CostCenter {
		appendAudit("costCenter", doc.CostCenter, *req.CostCenter)
		doc.CostCenter = *req.CostCenter
	}

	if len(audit) == 0 {
		return doc, nil
	}

	// Reconciliation runs on the edited values; a violation flips the
	// document to EXCEPTION with an amount_mismatch record.
	raiseMismatch := !doc.ReconciliationOK() && doc.Status != domain.StatusException

	expectedVersion := doc.Version
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = actorUserID
	var exceptions []domain.Exception
	if raiseMismatch {
		audit = append(audit, domain.AuditEntry{
			AuditEntryID: uuid.NewString(),
			DocumentID:   documentID,
			UserID:       actorUserID,
			Field:        "status",
			OldValue:     string(doc.Status),
			NewValue:     string(domain.StatusException),
			Action:       domain.AuditUpdated,
			CreatedAt:    now,
		})
		doc.Status = domain.StatusException
		exceptions = append(exceptions, domain.Exception{
			ExceptionID: uuid.NewString(),
			DocumentID:  documentID,
			Type:        domain.ExceptionAmountMismatch,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("Subtotal %s + tax %s does not reconcile with total %s",
				doc.Subtotal.String(), doc.Tax.String(), doc.Amount.String()),
			SuggestedFix: "Correct the subtotal, tax or total so the amounts reconcile",
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorUserID,
			},
		})
	}

	if err := s.docRepo.UpdateDocument(ctx, *doc, expectedVersion, audit, exceptions); err != nil {
		return nil, err
	}
	doc.Version++

	return doc, nil
}

// TransitionDocument moves the document to the target status if the lifecycle
// permits it. A document with unresolved exceptions cannot leave EXCEPTION
// through this path. PENDING_APPROVAL and POSTED are never reachable here:
// those edges carry side effects (the approval record, the ERP call) that
// only the routing and posting operations perform.
func (s *documentService) TransitionDocument(ctx context.Context, documentID string, target domain.DocumentStatus, actorUserID string) (*domain.Document, error) {
	switch target {
	case domain.StatusPendingApproval:
		return nil, fmt.Errorf("%w: use approval routing to send a document for approval", apperrors.ErrValidation)
	case domain.StatusPosted:
		return nil, fmt.Errorf("%w: use the posting operation to post a document to the ERP", apperrors.ErrValidation)
	}

	lock, err := s.locker.Acquire(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Status == domain.StatusException && target != domain.StatusRejected {
		unresolved, err := s.excRepo.CountUnresolvedByDocumentID(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if unresolved > 0 {
			return nil, fmt.Errorf("%w: document %s still has %d unresolved exceptions", apperrors.ErrInvalidTransition, documentID, unresolved)
		}
	}

	if err := applyTransition(ctx, s.docRepo, doc, target, actorUserID, nil); err != nil {
		return nil, err
	}
	return doc, nil
}

// AssignDocument sets the reviewer working the document.
func (s *documentService) AssignDocument(ctx context.Context, documentID, assigneeUserID, actorUserID string) (*domain.Document, error) {
	lock, err := s.locker.Acquire(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: document %s is %s and accepts no further changes", apperrors.ErrInvalidTransition, documentID, doc.Status)
	}
	if doc.AssignedTo == assigneeUserID {
		return doc, nil
	}

	now := time.Now()
	audit := []domain.AuditEntry{{
		AuditEntryID: uuid.NewString(),
		DocumentID:   documentID,
		UserID:       actorUserID,
		Field:        "assignedTo",
		OldValue:     doc.AssignedTo,
		NewValue:     assigneeUserID,
		Action:       domain.AuditUpdated,
		CreatedAt:    now,
	}}

	expectedVersion := doc.Version
	doc.AssignedTo = assigneeUserID
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = actorUserID

	if err := s.docRepo.UpdateDocument(ctx, *doc, expectedVersion, audit, nil); err != nil {
		return nil, err
	}
	doc.Version++
	return doc, nil
}

// AddComment appends a free-text note to the document.
func (s *documentService) AddComment(ctx context.Context, documentID, text, actorUserID string) (*domain.Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: comment text cannot be blank", apperrors.ErrValidation)
	}
	comment := domain.Comment{
		CommentID:  uuid.NewString(),
		DocumentID: documentID,
		UserID:     actorUserID,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := s.docRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *documentService) GetDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docRepo.FindDocumentByID(ctx, documentID)
}

func (s *documentService) ListDocuments(ctx context.Context, params dto.ListDocumentsParams) ([]domain.Document, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := portsrepo.ListDocumentsFilter{
		Status:     params.Status,
		VendorID:   params.VendorID,
		AssignedTo: params.AssignedTo,
	}
	return s.docRepo.ListDocuments(ctx, filter, limit, params.NextToken)
}

func (s *documentService) GetAuditTrail(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	return s.docRepo.FindAuditTrail(ctx, documentID)
}
