package services

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// SyncSvcFacade tracks posting approved documents to the ERP.
type SyncSvcFacade interface {
	// PostDocument transmits an approved document to the ERP with the
	// configured automatic retry budget and exponential backoff. On success
	// the document lands in POSTED; when retries exhaust it lands in
	// EXCEPTION with a coding_error exception, syncStatus stays ERROR.
	PostDocument(ctx context.Context, documentID, actorUserID string) (*domain.SyncResult, error)

	// Resync performs one manual attempt, independent of the automatic
	// retry counter.
	Resync(ctx context.Context, documentID, actorUserID string) (*domain.SyncResult, error)
}
