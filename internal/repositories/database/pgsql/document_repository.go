package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	"github.com/invoxel/ap_console_app/internal/models"
	"github.com/invoxel/ap_console_app/internal/utils/mapping"
	"github.com/invoxel/ap_console_app/internal/utils/pagination"
)

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for document data.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryWithTx
var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

const documentColumns = `
	d.document_id, d.vendor_id, v.name, d.invoice_number, d.invoice_date, d.due_date,
	d.amount, d.subtotal, d.tax, d.status, d.confidence_score, d.assigned_to,
	d.gl_account, d.cost_center, d.uploaded_at, d.uploaded_by, d.erp_id, d.sync_status,
	d.version, d.created_at, d.created_by, d.last_updated_at, d.last_updated_by`

func scanDocumentRow(row pgx.Row) (domain.Document, error) {
	var m models.Document
	var vendorName string
	err := row.Scan(
		&m.DocumentID, &m.VendorID, &vendorName, &m.InvoiceNumber, &m.InvoiceDate, &m.DueDate,
		&m.Amount, &m.Subtotal, &m.Tax, &m.Status, &m.ConfidenceScore, &m.AssignedTo,
		&m.GLAccount, &m.CostCenter, &m.UploadedAt, &m.UploadedBy, &m.ERPID, &m.SyncStatus,
		&m.Version, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Document{}, err
	}
	d := mapping.ToDomainDocument(m)
	d.VendorName = vendorName
	return d, nil
}

// SaveDocument persists a new document, its child rows, the initial audit
// entries and any intake exceptions in one transaction.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document, audit []domain.AuditEntry, exceptions []domain.Exception) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelDoc := mapping.ToModelDocument(doc)
	docQuery := `
		INSERT INTO documents (
			document_id, vendor_id, invoice_number, invoice_date, due_date,
			amount, subtotal, tax, status, confidence_score, assigned_to,
			gl_account, cost_center, uploaded_at, uploaded_by, erp_id, sync_status,
			version, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = tx.Exec(ctx, docQuery,
		modelDoc.DocumentID, modelDoc.VendorID, modelDoc.InvoiceNumber, modelDoc.InvoiceDate, modelDoc.DueDate,
		modelDoc.Amount, modelDoc.Subtotal, modelDoc.Tax, modelDoc.Status, modelDoc.ConfidenceScore, modelDoc.AssignedTo,
		modelDoc.GLAccount, modelDoc.CostCenter, modelDoc.UploadedAt, modelDoc.UploadedBy, modelDoc.ERPID, modelDoc.SyncStatus,
		modelDoc.Version, modelDoc.CreatedAt, modelDoc.CreatedBy, modelDoc.LastUpdatedAt, modelDoc.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: document for vendor %s with invoice number %s already in flight", apperrors.ErrDuplicate, modelDoc.VendorID, modelDoc.InvoiceNumber)
		}
		return fmt.Errorf("failed to insert document %s: %w", modelDoc.DocumentID, err)
	}

	if err := insertLineItemsTx(ctx, tx, doc.DocumentID, doc.LineItems); err != nil {
		return err
	}

	fieldQuery := `
		INSERT INTO extracted_fields (extracted_field_id, document_id, field_name, value, confidence, box_x, box_y, box_width, box_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, f := range doc.ExtractedFields {
		mf := mapping.ToModelExtractedField(f)
		_, err = tx.Exec(ctx, fieldQuery,
			mf.ExtractedFieldID, mf.DocumentID, mf.FieldName, mf.Value, mf.Confidence,
			mf.BoxX, mf.BoxY, mf.BoxWidth, mf.BoxHeight,
		)
		if err != nil {
			return fmt.Errorf("failed to insert extracted field for document %s: %w", doc.DocumentID, err)
		}
	}

	if err := insertAuditEntriesTx(ctx, tx, audit); err != nil {
		return err
	}
	if err := insertExceptionsTx(ctx, tx, exceptions); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateDocument writes the document's mutable columns guarded by the version
// check, replaces its line items when provided, and appends audit entries and
// new exception rows in the same transaction.
func (r *PgxDocumentRepository) UpdateDocument(ctx context.Context, doc domain.Document, expectedVersion int64, audit []domain.AuditEntry, exceptions []domain.Exception) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelDoc := mapping.ToModelDocument(doc)
	query := `
		UPDATE documents
		SET invoice_number = $1, invoice_date = $2, due_date = $3, amount = $4,
			subtotal = $5, tax = $6, status = $7, assigned_to = $8,
			gl_account = $9, cost_center = $10, erp_id = $11, sync_status = $12,
			version = version + 1, last_updated_at = $13, last_updated_by = $14
		WHERE document_id = $15 AND version = $16;
	`
	tag, err := tx.Exec(ctx, query,
		modelDoc.InvoiceNumber, modelDoc.InvoiceDate, modelDoc.DueDate, modelDoc.Amount,
		modelDoc.Subtotal, modelDoc.Tax, modelDoc.Status, modelDoc.AssignedTo,
		modelDoc.GLAccount, modelDoc.CostCenter, modelDoc.ERPID, modelDoc.SyncStatus,
		modelDoc.LastUpdatedAt, modelDoc.LastUpdatedBy,
		modelDoc.DocumentID, expectedVersion,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: another in-flight document already carries invoice number %s for vendor %s", apperrors.ErrDuplicate, modelDoc.InvoiceNumber, modelDoc.VendorID)
		}
		return fmt.Errorf("failed to update document %s: %w", modelDoc.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE document_id = $1)`, modelDoc.DocumentID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check document %s existence: %w", modelDoc.DocumentID, err)
		}
		if !exists {
			return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, modelDoc.DocumentID)
		}
		return fmt.Errorf("%w: document %s was modified concurrently (expected version %d)", apperrors.ErrConflict, modelDoc.DocumentID, expectedVersion)
	}

	if doc.LineItems != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM document_line_items WHERE document_id = $1`, doc.DocumentID); err != nil {
			return fmt.Errorf("failed to clear line items for document %s: %w", doc.DocumentID, err)
		}
		if err := insertLineItemsTx(ctx, tx, doc.DocumentID, doc.LineItems); err != nil {
			return err
		}
	}

	if err := insertAuditEntriesTx(ctx, tx, audit); err != nil {
		return err
	}
	if err := insertExceptionsTx(ctx, tx, exceptions); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertLineItemsTx(ctx context.Context, tx pgx.Tx, documentID string, items []domain.LineItem) error {
	query := `
		INSERT INTO document_line_items (line_item_id, document_id, description, quantity, unit_price, amount, gl_account, cost_center, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for i, item := range items {
		mi := mapping.ToModelLineItem(item, i)
		_, err := tx.Exec(ctx, query,
			mi.LineItemID, mi.DocumentID, mi.Description, mi.Quantity, mi.UnitPrice,
			mi.Amount, mi.GLAccount, mi.CostCenter, mi.LineOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item for document %s: %w", documentID, err)
		}
	}
	return nil
}

func insertAuditEntriesTx(ctx context.Context, tx pgx.Tx, entries []domain.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (audit_entry_id, document_id, user_id, field, old_value, new_value, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, e := range entries {
		me := mapping.ToModelAuditEntry(e)
		_, err := tx.Exec(ctx, query,
			me.AuditEntryID, me.DocumentID, me.UserID, me.Field, me.OldValue, me.NewValue, me.Action, me.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit entry for document %s: %w", me.DocumentID, err)
		}
	}
	return nil
}

// AddComment appends one comment row.
func (r *PgxDocumentRepository) AddComment(ctx context.Context, comment domain.Comment) error {
	query := `
		INSERT INTO document_comments (comment_id, document_id, user_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query, comment.CommentID, comment.DocumentID, comment.UserID, comment.Text, comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation
			return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, comment.DocumentID)
		}
		return fmt.Errorf("failed to insert comment for document %s: %w", comment.DocumentID, err)
	}
	return nil
}

// FindDocumentByID retrieves a document with its line items, extracted fields
// and comments hydrated.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents d
		JOIN vendors v ON v.vendor_id = d.vendor_id
		WHERE d.document_id = $1;
	`
	doc, err := scanDocumentRow(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}

	if doc.LineItems, err = r.findLineItems(ctx, documentID); err != nil {
		return nil, err
	}
	if doc.ExtractedFields, err = r.findExtractedFields(ctx, documentID); err != nil {
		return nil, err
	}
	if doc.Comments, err = r.findComments(ctx, documentID); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *PgxDocumentRepository) findLineItems(ctx context.Context, documentID string) ([]domain.LineItem, error) {
	query := `
		SELECT line_item_id, document_id, description, quantity, unit_price, amount, gl_account, cost_center, line_order
		FROM document_line_items
		WHERE document_id = $1
		ORDER BY line_order ASC;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var m models.LineItem
		if err := rows.Scan(&m.LineItemID, &m.DocumentID, &m.Description, &m.Quantity, &m.UnitPrice, &m.Amount, &m.GLAccount, &m.CostCenter, &m.LineOrder); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, mapping.ToDomainLineItem(m))
	}
	return items, rows.Err()
}

func (r *PgxDocumentRepository) findExtractedFields(ctx context.Context, documentID string) ([]domain.ExtractedField, error) {
	query := `
		SELECT extracted_field_id, document_id, field_name, value, confidence, box_x, box_y, box_width, box_height
		FROM extracted_fields
		WHERE document_id = $1
		ORDER BY field_name ASC;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query extracted fields for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var fields []domain.ExtractedField
	for rows.Next() {
		var m models.ExtractedField
		if err := rows.Scan(&m.ExtractedFieldID, &m.DocumentID, &m.FieldName, &m.Value, &m.Confidence, &m.BoxX, &m.BoxY, &m.BoxWidth, &m.BoxHeight); err != nil {
			return nil, fmt.Errorf("failed to scan extracted field: %w", err)
		}
		fields = append(fields, mapping.ToDomainExtractedField(m))
	}
	return fields, rows.Err()
}

func (r *PgxDocumentRepository) findComments(ctx context.Context, documentID string) ([]domain.Comment, error) {
	query := `
		SELECT comment_id, document_id, user_id, text, created_at
		FROM document_comments
		WHERE document_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var m models.Comment
		if err := rows.Scan(&m.CommentID, &m.DocumentID, &m.UserID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, mapping.ToDomainComment(m))
	}
	return comments, rows.Err()
}

// ListDocuments retrieves a filtered page ordered by upload time descending,
// using (uploaded_at, document_id) keyset pagination.
func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, filter portsrepo.ListDocumentsFilter, limit int, nextToken *string) ([]domain.Document, *string, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents d
		JOIN vendors v ON v.vendor_id = d.vendor_id
		WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND d.status = $%d", argPos)
		args = append(args, string(*filter.Status))
		argPos++
	}
	if filter.VendorID != nil {
		query += fmt.Sprintf(" AND d.vendor_id = $%d", argPos)
		args = append(args, *filter.VendorID)
		argPos++
	}
	if filter.AssignedTo != nil {
		query += fmt.Sprintf(" AND d.assigned_to = $%d", argPos)
		args = append(args, *filter.AssignedTo)
		argPos++
	}

	if nextToken != nil && *nextToken != "" {
		uploadedAt, documentID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += fmt.Sprintf(" AND (d.uploaded_at, d.document_id) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, uploadedAt, documentID)
		argPos += 2
	}

	// Fetch one extra row to detect whether another page exists.
	query += fmt.Sprintf(" ORDER BY d.uploaded_at DESC, d.document_id DESC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading document rows: %w", err)
	}

	var outToken *string
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		token := pagination.EncodeToken(last.UploadedAt, last.DocumentID)
		outToken = &token
	}
	return docs, outToken, nil
}

// FindDuplicateCandidates returns non-terminal documents for the same vendor
// that either repeat the invoice number exactly or land inside the amount and
// invoice-date windows.
func (r *PgxDocumentRepository) FindDuplicateCandidates(ctx context.Context, vendorID, invoiceNumber string, amountLow, amountHigh decimal.Decimal, dateFrom, dateTo *time.Time) ([]domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents d
		JOIN vendors v ON v.vendor_id = d.vendor_id
		WHERE d.vendor_id = $1
		  AND d.status NOT IN ('POSTED', 'REJECTED')
		  AND (
			d.invoice_number = $2
			OR (
				d.amount BETWEEN $3 AND $4
				AND ($5::timestamptz IS NULL OR d.invoice_date >= $5)
				AND ($6::timestamptz IS NULL OR d.invoice_date <= $6)
			)
		  );
	`
	rows, err := r.Pool.Query(ctx, query, vendorID, invoiceNumber, amountLow, amountHigh, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate candidates for vendor %s: %w", vendorID, err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duplicate candidate: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// FindAuditTrail returns all audit entries for a document, oldest first.
func (r *PgxDocumentRepository) FindAuditTrail(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	query := `
		SELECT audit_entry_id, document_id, user_id, field, old_value, new_value, action, created_at
		FROM audit_entries
		WHERE document_id = $1
		ORDER BY created_at ASC, audit_entry_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var m models.AuditEntry
		if err := rows.Scan(&m.AuditEntryID, &m.DocumentID, &m.UserID, &m.Field, &m.OldValue, &m.NewValue, &m.Action, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, mapping.ToDomainAuditEntry(m))
	}
	return entries, rows.Err()
}

// CountHumanAuditEntries counts audit entries on a document whose acting user
// is not the system actor.
func (r *PgxDocumentRepository) CountHumanAuditEntries(ctx context.Context, documentID string, systemUserID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM audit_entries
		WHERE document_id = $1 AND user_id <> $2;
	`
	var count int
	if err := r.Pool.QueryRow(ctx, query, documentID, systemUserID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count human audit entries for document %s: %w", documentID, err)
	}
	return count, nil
}
