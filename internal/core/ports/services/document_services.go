package services

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/dto"
)

// DocumentReaderSvc exposes document read models to the presentation layer.
type DocumentReaderSvc interface {
	GetDocumentByID(ctx context.Context, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, params dto.ListDocumentsParams) ([]domain.Document, *string, error)
	GetAuditTrail(ctx context.Context, documentID string) ([]domain.AuditEntry, error)
}

// DocumentWriterSvc exposes the mutating document commands.
type DocumentWriterSvc interface {
	// CreateDocument seeds a document from an extraction result, applies
	// vendor auto-coding, runs the exception checks and writes the created
	// audit entry. Status starts at PENDING_REVIEW (or EXCEPTION when checks fire).
	CreateDocument(ctx context.Context, extraction domain.ExtractionResult, uploadedBy string) (*domain.Document, error)

	// UpdateDocument applies field edits, appending one audit entry per
	// changed field, and re-evaluates the amount reconciliation invariant.
	UpdateDocument(ctx context.Context, documentID string, req dto.UpdateDocumentRequest, actorUserID string) (*domain.Document, error)

	// TransitionDocument moves the document to the target status if the
	// lifecycle permits it, appending the derived audit entry.
	TransitionDocument(ctx context.Context, documentID string, target domain.DocumentStatus, actorUserID string) (*domain.Document, error)

	// AssignDocument sets the reviewer working the document.
	AssignDocument(ctx context.Context, documentID, assigneeUserID, actorUserID string) (*domain.Document, error)

	// AddComment appends a free-text note.
	AddComment(ctx context.Context, documentID, text, actorUserID string) (*domain.Comment, error)
}

// DocumentSvcFacade combines the document service surfaces.
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
}
