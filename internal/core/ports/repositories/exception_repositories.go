package repositories

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// ExceptionReader defines read operations for exception data.
type ExceptionReader interface {
	// FindExceptionByID retrieves one exception.
	FindExceptionByID(ctx context.Context, exceptionID string) (*domain.Exception, error)

	// FindExceptionsByDocumentID retrieves all exceptions, resolved or not,
	// attached to a document.
	FindExceptionsByDocumentID(ctx context.Context, documentID string) ([]domain.Exception, error)

	// CountUnresolvedByDocumentID counts the exceptions still blocking a document.
	CountUnresolvedByDocumentID(ctx context.Context, documentID string) (int, error)

	// ListOpenExceptions retrieves the unresolved exception queue ordered by
	// severity (highest first) then age (oldest first), keyset-paginated.
	ListOpenExceptions(ctx context.Context, limit int, nextToken *string) ([]domain.Exception, *string, error)
}

// ExceptionWriter defines write operations for exception data. New exception
// rows are inserted through DocumentWriter so they commit with the document
// write that raised them.
type ExceptionWriter interface {
	// MarkResolved stores the resolution fields of one exception.
	MarkResolved(ctx context.Context, exception domain.Exception) error

	// UpdateOwner sets the user working an exception.
	UpdateOwner(ctx context.Context, exceptionID, ownerUserID, updatedBy string) error
}

// ExceptionRepositoryFacade combines all exception-related repository interfaces.
type ExceptionRepositoryFacade interface {
	ExceptionReader
	ExceptionWriter
}
