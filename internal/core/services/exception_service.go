package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
	"github.com/invoxel/ap_console_app/internal/platform/config"
	"github.com/invoxel/ap_console_app/internal/platform/locking"
)

// fuzzyAmountTolerance is the relative window for the near-duplicate check.
var fuzzyAmountTolerance = decimal.NewFromFloat(0.01)

// fuzzyDateWindow is how far apart invoice dates may sit and still count as
// the same billing event.
const fuzzyDateWindow = 7 * 24 * time.Hour

// criticalFieldGap flags a field whose confidence trails the aggregate by
// more than this many points.
const criticalFieldGap = 10

type exceptionService struct {
	excRepo portsrepo.ExceptionRepositoryFacade
	docRepo portsrepo.DocumentRepositoryWithTx
	locker  locking.DocumentLocker
	cfg     *config.Config
}

// NewExceptionService creates the exception engine.
func NewExceptionService(
	excRepo portsrepo.ExceptionRepositoryFacade,
	docRepo portsrepo.DocumentRepositoryWithTx,
	locker locking.DocumentLocker,
	cfg *config.Config,
) portssvc.ExceptionSvcFacade {
	return &exceptionService{excRepo: excRepo, docRepo: docRepo, locker: locker, cfg: cfg}
}

var _ portssvc.ExceptionSvcFacade = (*exceptionService)(nil)

// Evaluate runs the ordered checks against a document and its extraction
// output. Nothing is persisted; callers own the write.
func (s *exceptionService) Evaluate(ctx context.Context, doc domain.Document, extraction domain.ExtractionResult) ([]domain.Exception, error) {
	var exceptions []domain.Exception

	dup, err := s.duplicateCheck(ctx, doc)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		exceptions = append(exceptions, *dup)
	}

	if exc := s.confidenceCheck(doc, extraction); exc != nil {
		exceptions = append(exceptions, *exc)
	}
	if exc := reconciliationCheck(doc); exc != nil {
		exceptions = append(exceptions, *exc)
	}
	exceptions = append(exceptions, requiredFieldChecks(doc)...)

	return exceptions, nil
}

// duplicateCheck looks for the same billing event already in flight: an exact
// vendor+invoiceNumber repeat is critical, a near match on amount and date is
// high.
func (s *exceptionService) duplicateCheck(ctx context.Context, doc domain.Document) (*domain.Exception, error) {
	margin := doc.Amount.Mul(fuzzyAmountTolerance)
	var dateFrom, dateTo *time.Time
	if doc.InvoiceDate != nil {
		from := doc.InvoiceDate.Add(-fuzzyDateWindow)
		to := doc.InvoiceDate.Add(fuzzyDateWindow)
		dateFrom, dateTo = &from, &to
	}

	candidates, err := s.docRepo.FindDuplicateCandidates(ctx, doc.VendorID, doc.InvoiceNumber,
		doc.Amount.Sub(margin), doc.Amount.Add(margin), dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed duplicate check for document %s: %w", doc.DocumentID, err)
	}

	var fuzzy *domain.Document
	for i := range candidates {
		c := candidates[i]
		if c.DocumentID == doc.DocumentID {
			continue
		}
		if c.InvoiceNumber == doc.InvoiceNumber && doc.InvoiceNumber != "" {
			return &domain.Exception{
				Type:         domain.ExceptionDuplicate,
				Severity:     domain.SeverityCritical,
				Description:  fmt.Sprintf("Invoice number %s already in flight for this vendor (document %s)", doc.InvoiceNumber, c.DocumentID),
				SuggestedFix: "Reject this document if it repeats the earlier submission",
			}, nil
		}
		if fuzzy == nil && doc.InvoiceDate != nil && c.InvoiceDate != nil {
			fuzzy = &candidates[i]
		}
	}
	if fuzzy != nil {
		return &domain.Exception{
			Type:         domain.ExceptionDuplicate,
			Severity:     domain.SeverityHigh,
			Description:  fmt.Sprintf("Amount and invoice date closely match document %s from the same vendor", fuzzy.DocumentID),
			SuggestedFix: "Compare both documents before processing further",
		}, nil
	}
	return nil, nil
}

// confidenceCheck fires when the aggregate score is under the configured
// threshold, or when a critical field trails the aggregate badly enough that
// the headline number hides a weak extraction.
func (s *exceptionService) confidenceCheck(doc domain.Document, extraction domain.ExtractionResult) *domain.Exception {
	threshold := s.cfg.ConfidenceThreshold
	if doc.ConfidenceScore < threshold {
		return &domain.Exception{
			Type:         domain.ExceptionLowConfidence,
			Severity:     domain.SeverityMedium,
			Description:  fmt.Sprintf("Extraction confidence %d%% is below the %d%% review threshold", doc.ConfidenceScore, threshold),
			SuggestedFix: "Verify every highlighted field against the source document",
		}
	}
	for _, name := range []string{domain.FieldVendor, domain.FieldInvoiceNumber, domain.FieldTotal} {
		if conf, ok := extraction.FieldConfidence(name); ok && conf < doc.ConfidenceScore-criticalFieldGap {
			return &domain.Exception{
				Type:         domain.ExceptionLowConfidence,
				Severity:     domain.SeverityMedium,
				Description:  fmt.Sprintf("Field %q was read at %d%%, well below the document's %d%% aggregate", name, conf, doc.ConfidenceScore),
				SuggestedFix: fmt.Sprintf("Verify the %q field against the source document", name),
			}
		}
	}
	return nil
}

func reconciliationCheck(doc domain.Document) *domain.Exception {
	if doc.ReconciliationOK() {
		return nil
	}
	return &domain.Exception{
		Type:     domain.ExceptionAmountMismatch,
		Severity: domain.SeverityHigh,
		Description: fmt.Sprintf("Subtotal %s + tax %s does not reconcile with total %s",
			doc.Subtotal.String(), doc.Tax.String(), doc.Amount.String()),
		SuggestedFix: "Correct the subtotal, tax or total so the amounts reconcile",
	}
}

func requiredFieldChecks(doc domain.Document) []domain.Exception {
	var out []domain.Exception
	if doc.InvoiceNumber == "" {
		out = append(out, domain.Exception{
			Type:         domain.ExceptionMissingPO,
			Severity:     domain.SeverityMedium,
			Description:  "No invoice or PO number was extracted",
			SuggestedFix: "Enter the invoice number from the source document",
		})
	}
	if doc.Amount.IsZero() {
		out = append(out, domain.Exception{
			Type:         domain.ExceptionAmountMismatch,
			Severity:     domain.SeverityHigh,
			Description:  "No total amount was extracted",
			SuggestedFix: "Enter the total from the source document",
		})
	}
	if doc.InvoiceDate == nil {
		out = append(out, domain.Exception{
			Type:         domain.ExceptionInvalidDate,
			Severity:     domain.SeverityMedium,
			Description:  "No invoice date was extracted",
			SuggestedFix: "Enter the invoice date from the source document",
		})
	} else if doc.DueDate != nil && doc.DueDate.Before(*doc.InvoiceDate) {
		out = append(out, domain.Exception{
			Type:         domain.ExceptionInvalidDate,
			Severity:     domain.SeverityMedium,
			Description:  "Due date precedes the invoice date",
			SuggestedFix: "Correct whichever date was misread",
		})
	}
	return out
}

// ResolveException marks one exception resolved and, once the document has no
// unresolved exceptions left, transitions it out of EXCEPTION: back to
// IN_REVIEW when a reviewer is assigned, PENDING_REVIEW otherwise.
func (s *exceptionService) ResolveException(ctx context.Context, exceptionID, resolution, actorUserID string) error {
	if resolution == "" {
		return fmt.Errorf("%w: resolution note cannot be blank", apperrors.ErrValidation)
	}

	exc, err := s.excRepo.FindExceptionByID(ctx, exceptionID)
	if err != nil {
		return err
	}
	if exc.Resolved {
		return fmt.Errorf("%w: exception %s is already resolved", apperrors.ErrValidation, exceptionID)
	}

	lock, err := s.locker.Acquire(ctx, exc.DocumentID)
	if err != nil {
		return err
	}
	defer lock.Release(ctx)

	now := time.Now()
	exc.Resolved = true
	exc.Resolution = resolution
	exc.ResolvedBy = actorUserID
	exc.ResolvedAt = &now
	exc.LastUpdatedAt = now
	exc.LastUpdatedBy = actorUserID
	if err := s.excRepo.MarkResolved(ctx, *exc); err != nil {
		return err
	}

	unresolved, err := s.excRepo.CountUnresolvedByDocumentID(ctx, exc.DocumentID)
	if err != nil {
		return err
	}

	doc, err := s.docRepo.FindDocumentByID(ctx, exc.DocumentID)
	if err != nil {
		return err
	}

	resolutionAudit := domain.AuditEntry{
		AuditEntryID: uuid.NewString(),
		DocumentID:   exc.DocumentID,
		UserID:       actorUserID,
		Field:        "exception",
		OldValue:     string(exc.Type),
		NewValue:     "resolved: " + resolution,
		Action:       domain.AuditUpdated,
		CreatedAt:    now,
	}

	if unresolved == 0 && doc.Status == domain.StatusException {
		target := domain.StatusPendingReview
		if doc.AssignedTo != "" {
			target = domain.StatusInReview
		}
		if err := applyTransition(ctx, s.docRepo, doc, target, actorUserID, nil, resolutionAudit); err != nil {
			return err
		}
		middleware.GetLoggerFromCtx(ctx).Info("document left exception status",
			"document_id", doc.DocumentID, "target", string(target))
		return nil
	}

	// Still blocked (or the document was never in EXCEPTION); append the
	// resolution to the audit trail without changing status.
	expectedVersion := doc.Version
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = actorUserID
	if err := s.docRepo.UpdateDocument(ctx, *doc, expectedVersion, []domain.AuditEntry{resolutionAudit}, nil); err != nil {
		return err
	}
	return nil
}

// AssignException sets the user working an exception.
func (s *exceptionService) AssignException(ctx context.Context, exceptionID, ownerUserID, actorUserID string) error {
	if ownerUserID == "" {
		return fmt.Errorf("%w: owner cannot be blank", apperrors.ErrValidation)
	}
	return s.excRepo.UpdateOwner(ctx, exceptionID, ownerUserID, actorUserID)
}

// ListOpenExceptions returns the unresolved queue, severity then age ordered.
func (s *exceptionService) ListOpenExceptions(ctx context.Context, params dto.ListParams) ([]domain.Exception, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	return s.excRepo.ListOpenExceptions(ctx, limit, params.NextToken)
}

// GetExceptionsForDocument lists a document's exceptions.
func (s *exceptionService) GetExceptionsForDocument(ctx context.Context, documentID string) ([]domain.Exception, error) {
	return s.excRepo.FindExceptionsByDocumentID(ctx, documentID)
}
