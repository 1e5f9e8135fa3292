package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/middleware"
	"github.com/invoxel/ap_console_app/internal/platform/config"
	"github.com/invoxel/ap_console_app/internal/platform/locking"
)

type syncService struct {
	docRepo   portsrepo.DocumentRepositoryWithTx
	erpClient portssvc.ERPClient
	locker    locking.DocumentLocker
	cfg       *config.Config
}

// NewSyncService creates the ERP posting tracker.
func NewSyncService(
	docRepo portsrepo.DocumentRepositoryWithTx,
	erpClient portssvc.ERPClient,
	locker locking.DocumentLocker,
	cfg *config.Config,
) portssvc.SyncSvcFacade {
	return &syncService{docRepo: docRepo, erpClient: erpClient, locker: locker, cfg: cfg}
}

var _ portssvc.SyncSvcFacade = (*syncService)(nil)

// postable reports whether the document may be transmitted: approved, or
// still in review with an amount inside the auto-approve limit.
func (s *syncService) postable(doc *domain.Document) bool {
	if doc.Status == domain.StatusApproved {
		return true
	}
	return doc.Status == domain.StatusInReview && doc.Amount.LessThanOrEqual(s.cfg.AutoApproveLimit)
}

// PostDocument transmits the document to the ERP with the configured retry
// budget and exponential backoff. Transport failures retry; a structured
// rejection from the ERP does not, since resending the same payload cannot
// change the answer.
func (s *syncService) PostDocument(ctx context.Context, documentID, actorUserID string) (*domain.SyncResult, error) {
	lock, err := s.locker.Acquire(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !s.postable(doc) {
		return nil, fmt.Errorf("%w: document %s is %s and cannot be posted", apperrors.ErrInvalidTransition, documentID, doc.Status)
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	budget := s.cfg.ERPRetryBudget
	if budget < 1 {
		budget = 1
	}

	result := &domain.SyncResult{DocumentID: documentID}
	var lastFailure string

	for attempt := 1; attempt <= budget; attempt++ {
		if attempt > 1 {
			backoff := s.cfg.ERPRetryBackoff * (1 << (attempt - 2))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}

			// The document may have moved while we were waiting.
			doc, err = s.docRepo.FindDocumentByID(ctx, documentID)
			if err != nil {
				return nil, err
			}
			if !s.postable(doc) {
				logger.Info("posting abandoned, document moved on",
					"document_id", documentID, "status", string(doc.Status))
				result.SyncStatus = doc.SyncStatus
				return result, nil
			}
		}

		result.Attempts = attempt
		erpResult, err := s.erpClient.PostInvoice(ctx, postRequestFor(doc))
		if err != nil {
			lastFailure = err.Error()
			logger.Warn("ERP posting attempt failed",
				"document_id", documentID, "attempt", attempt, "error", err)
			if markErr := s.markSyncError(ctx, doc, actorUserID); markErr != nil {
				return nil, markErr
			}
			continue
		}

		if erpResult.FailureReason != "" {
			lastFailure = erpResult.FailureReason
			if markErr := s.markSyncError(ctx, doc, actorUserID); markErr != nil {
				return nil, markErr
			}
			break
		}

		return s.finishPosting(ctx, doc, erpResult.ERPID, actorUserID, result)
	}

	// Budget exhausted (or the ERP rejected the payload outright).
	result.SyncStatus = domain.SyncError
	result.FailureReason = lastFailure
	if err := s.raiseSyncException(ctx, doc, lastFailure, actorUserID); err != nil {
		return nil, err
	}
	return result, nil
}

// Resync performs one manual attempt, independent of the automatic retry
// counter.
func (s *syncService) Resync(ctx context.Context, documentID, actorUserID string) (*domain.SyncResult, error) {
	lock, err := s.locker.Acquire(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !s.postable(doc) {
		return nil, fmt.Errorf("%w: document %s is %s and cannot be posted", apperrors.ErrInvalidTransition, documentID, doc.Status)
	}

	result := &domain.SyncResult{DocumentID: documentID, Attempts: 1}
	erpResult, err := s.erpClient.PostInvoice(ctx, postRequestFor(doc))
	if err != nil {
		if markErr := s.markSyncError(ctx, doc, actorUserID); markErr != nil {
			return nil, markErr
		}
		result.SyncStatus = domain.SyncError
		result.FailureReason = err.Error()
		return result, nil
	}
	if erpResult.FailureReason != "" {
		if markErr := s.markSyncError(ctx, doc, actorUserID); markErr != nil {
			return nil, markErr
		}
		result.SyncStatus = domain.SyncError
		result.FailureReason = erpResult.FailureReason
		return result, nil
	}

	return s.finishPosting(ctx, doc, erpResult.ERPID, actorUserID, result)
}

func postRequestFor(doc *domain.Document) portssvc.ERPPostRequest {
	return portssvc.ERPPostRequest{
		DocumentID:    doc.DocumentID,
		VendorName:    doc.VendorName,
		InvoiceNumber: doc.InvoiceNumber,
		InvoiceDate:   doc.InvoiceDate,
		DueDate:       doc.DueDate,
		Amount:        doc.Amount,
		GLAccount:     doc.GLAccount,
		CostCenter:    doc.CostCenter,
	}
}

// finishPosting stamps the ERP id and moves the document to POSTED.
func (s *syncService) finishPosting(ctx context.Context, doc *domain.Document, erpID, actorUserID string, result *domain.SyncResult) (*domain.SyncResult, error) {
	doc.ERPID = erpID
	doc.SyncStatus = domain.SyncSynced
	if err := applyTransition(ctx, s.docRepo, doc, domain.StatusPosted, actorUserID, nil); err != nil {
		return nil, err
	}

	result.ERPID = erpID
	result.SyncStatus = domain.SyncSynced
	middleware.GetLoggerFromCtx(ctx).Info("document posted to ERP",
		"document_id", doc.DocumentID, "erp_id", erpID, "attempts", result.Attempts)
	return result, nil
}

// markSyncError records the failed attempt on the document without changing
// its status.
func (s *syncService) markSyncError(ctx context.Context, doc *domain.Document, actorUserID string) error {
	if doc.SyncStatus == domain.SyncError {
		return nil
	}
	now := time.Now()
	audit := []domain.AuditEntry{{
		AuditEntryID: uuid.NewString(),
		DocumentID:   doc.DocumentID,
		UserID:       actorUserID,
		Field:        "syncStatus",
		OldValue:     string(doc.SyncStatus),
		NewValue:     string(domain.SyncError),
		Action:       domain.AuditUpdated,
		CreatedAt:    now,
	}}

	expectedVersion := doc.Version
	doc.SyncStatus = domain.SyncError
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = actorUserID
	if err := s.docRepo.UpdateDocument(ctx, *doc, expectedVersion, audit, nil); err != nil {
		return err
	}
	doc.Version++
	return nil
}

// raiseSyncException records the exhausted retry budget: the document flips
// to EXCEPTION with a coding_error record while syncStatus stays ERROR.
func (s *syncService) raiseSyncException(ctx context.Context, doc *domain.Document, reason, actorUserID string) error {
	now := time.Now()
	description := "ERP posting failed after exhausting retries"
	if reason != "" {
		description = fmt.Sprintf("ERP posting failed: %s", reason)
	}
	exc := domain.Exception{
		ExceptionID:  uuid.NewString(),
		DocumentID:   doc.DocumentID,
		Type:         domain.ExceptionCodingError,
		Severity:     domain.SeverityHigh,
		Description:  description,
		SuggestedFix: "Check the GL coding and vendor mapping, then resubmit",
		Owner:        doc.AssignedTo,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}

	if err := applyTransition(ctx, s.docRepo, doc, domain.StatusException, actorUserID, []domain.Exception{exc}); err != nil {
		return err
	}
	return nil
}
