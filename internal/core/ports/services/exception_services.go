package services

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/dto"
)

// ExceptionSvcFacade is the exception engine surface.
type ExceptionSvcFacade interface {
	// Evaluate runs the ordered checks (duplicate, confidence, amount
	// reconciliation, required fields) against a document and its extraction
	// output. Pure evaluation: nothing is persisted.
	Evaluate(ctx context.Context, doc domain.Document, extraction domain.ExtractionResult) ([]domain.Exception, error)

	// ResolveException marks one exception resolved and, once the document has
	// no unresolved exceptions left, transitions it out of EXCEPTION.
	ResolveException(ctx context.Context, exceptionID, resolution, actorUserID string) error

	// AssignException sets the user working an exception.
	AssignException(ctx context.Context, exceptionID, ownerUserID, actorUserID string) error

	// ListOpenExceptions returns the unresolved queue, severity then age ordered.
	ListOpenExceptions(ctx context.Context, params dto.ListParams) ([]domain.Exception, *string, error)

	// GetExceptionsForDocument lists a document's exceptions, unresolved first.
	GetExceptionsForDocument(ctx context.Context, documentID string) ([]domain.Exception, error)
}
