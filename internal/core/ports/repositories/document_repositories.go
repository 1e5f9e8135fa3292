package repositories

import (
	"context"
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListDocumentsFilter narrows a document listing.
type ListDocumentsFilter struct {
	Status     *domain.DocumentStatus
	VendorID   *string
	AssignedTo *string
}

// DocumentReader defines read operations for document data.
type DocumentReader interface {
	// FindDocumentByID retrieves a document with its line items, extracted
	// fields and comments hydrated.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocuments retrieves a filtered, keyset-paginated page of documents
	// ordered by upload time descending. Returns the page and a token for the
	// next one.
	ListDocuments(ctx context.Context, filter ListDocumentsFilter, limit int, nextToken *string) ([]domain.Document, *string, error)

	// FindDuplicateCandidates returns non-terminal documents for the same
	// vendor whose invoice number matches exactly, or whose amount and invoice
	// date fall inside the given windows. Used by the duplicate check.
	FindDuplicateCandidates(ctx context.Context, vendorID, invoiceNumber string, amountLow, amountHigh decimal.Decimal, dateFrom, dateTo *time.Time) ([]domain.Document, error)
}

// DocumentWriter defines write operations for document data.
type DocumentWriter interface {
	// SaveDocument persists a new document, its child rows, the initial audit
	// entries and any exceptions raised at intake in one transaction.
	SaveDocument(ctx context.Context, doc domain.Document, audit []domain.AuditEntry, exceptions []domain.Exception) error

	// UpdateDocument writes the document's mutable columns and appends the
	// audit entries and any new exceptions atomically, so a status flip to
	// EXCEPTION can never commit without its exception rows. The write only
	// succeeds if the stored version equals expectedVersion; otherwise
	// apperrors.ErrConflict is returned and nothing changes.
	UpdateDocument(ctx context.Context, doc domain.Document, expectedVersion int64, audit []domain.AuditEntry, exceptions []domain.Exception) error

	// AddComment appends one comment row.
	AddComment(ctx context.Context, comment domain.Comment) error
}

// AuditReader defines read access to the append-only audit trail.
type AuditReader interface {
	// FindAuditTrail returns all audit entries for a document, oldest first.
	FindAuditTrail(ctx context.Context, documentID string) ([]domain.AuditEntry, error)

	// CountHumanAuditEntries counts audit entries on a document whose acting
	// user is not the system actor. Feeds the touchless-rate KPI.
	CountHumanAuditEntries(ctx context.Context, documentID string, systemUserID string) (int, error)
}

// DocumentRepositoryFacade combines all document-related repository interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
	AuditReader
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities.
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
