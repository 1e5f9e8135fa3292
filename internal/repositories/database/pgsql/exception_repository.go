package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	"github.com/invoxel/ap_console_app/internal/models"
	"github.com/invoxel/ap_console_app/internal/utils/mapping"
	"github.com/invoxel/ap_console_app/internal/utils/pagination"
)

type PgxExceptionRepository struct {
	BaseRepository
}

// newPgxExceptionRepository creates a new repository for exception data.
func newPgxExceptionRepository(pool *pgxpool.Pool) portsrepo.ExceptionRepositoryFacade {
	return &PgxExceptionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxExceptionRepository implements portsrepo.ExceptionRepositoryFacade
var _ portsrepo.ExceptionRepositoryFacade = (*PgxExceptionRepository)(nil)

const exceptionColumns = `
	exception_id, document_id, type, severity, description, suggested_fix, owner,
	resolved, resolution, resolved_by, resolved_at,
	created_at, created_by, last_updated_at, last_updated_by`

func scanExceptionRow(row pgx.Row) (domain.Exception, error) {
	var m models.Exception
	err := row.Scan(
		&m.ExceptionID, &m.DocumentID, &m.Type, &m.Severity, &m.Description, &m.SuggestedFix, &m.Owner,
		&m.Resolved, &m.Resolution, &m.ResolvedBy, &m.ResolvedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Exception{}, err
	}
	return mapping.ToDomainException(m), nil
}

// FindExceptionByID retrieves one exception.
func (r *PgxExceptionRepository) FindExceptionByID(ctx context.Context, exceptionID string) (*domain.Exception, error) {
	query := `SELECT ` + exceptionColumns + ` FROM exceptions WHERE exception_id = $1;`
	exc, err := scanExceptionRow(r.Pool.QueryRow(ctx, query, exceptionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: exception %s", apperrors.ErrNotFound, exceptionID)
		}
		return nil, fmt.Errorf("failed to find exception %s: %w", exceptionID, err)
	}
	return &exc, nil
}

// FindExceptionsByDocumentID retrieves all exceptions attached to a document.
func (r *PgxExceptionRepository) FindExceptionsByDocumentID(ctx context.Context, documentID string) ([]domain.Exception, error) {
	query := `SELECT ` + exceptionColumns + ` FROM exceptions WHERE document_id = $1 ORDER BY created_at ASC;`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exceptions for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var exceptions []domain.Exception
	for rows.Next() {
		exc, err := scanExceptionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exception: %w", err)
		}
		exceptions = append(exceptions, exc)
	}
	return exceptions, rows.Err()
}

// CountUnresolvedByDocumentID counts the exceptions still blocking a document.
func (r *PgxExceptionRepository) CountUnresolvedByDocumentID(ctx context.Context, documentID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM exceptions WHERE document_id = $1 AND NOT resolved;`
	if err := r.Pool.QueryRow(ctx, query, documentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unresolved exceptions for document %s: %w", documentID, err)
	}
	return count, nil
}

// ListOpenExceptions retrieves the unresolved queue ordered by severity rank
// descending then age descending, keyset-paginated on (rank, created_at, id).
func (r *PgxExceptionRepository) ListOpenExceptions(ctx context.Context, limit int, nextToken *string) ([]domain.Exception, *string, error) {
	query := `
		SELECT ` + exceptionColumns + `,
			CASE severity
				WHEN 'CRITICAL' THEN 4
				WHEN 'HIGH' THEN 3
				WHEN 'MEDIUM' THEN 2
				ELSE 1
			END AS severity_rank
		FROM exceptions
		WHERE NOT resolved`
	args := []interface{}{}
	argPos := 1

	if nextToken != nil && *nextToken != "" {
		parts, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(parts) != 3 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		rankExpr := `CASE severity WHEN 'CRITICAL' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END`
		query += fmt.Sprintf(`
		  AND (%[1]s < $%[2]d::int
			OR (%[1]s = $%[2]d::int AND created_at > $%[3]d::timestamptz)
			OR (%[1]s = $%[2]d::int AND created_at = $%[3]d::timestamptz AND exception_id > $%[4]d))`, rankExpr, argPos, argPos+1, argPos+2)
		args = append(args, parts[0], parts[1], parts[2])
		argPos += 3
	}

	query += fmt.Sprintf(" ORDER BY severity_rank DESC, created_at ASC, exception_id ASC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query open exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []domain.Exception
	var lastRank int
	for rows.Next() {
		var m models.Exception
		err := rows.Scan(
			&m.ExceptionID, &m.DocumentID, &m.Type, &m.Severity, &m.Description, &m.SuggestedFix, &m.Owner,
			&m.Resolved, &m.Resolution, &m.ResolvedBy, &m.ResolvedAt,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
			&lastRank,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan open exception: %w", err)
		}
		exceptions = append(exceptions, mapping.ToDomainException(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading exception rows: %w", err)
	}

	var outToken *string
	if len(exceptions) > limit {
		exceptions = exceptions[:limit]
		last := exceptions[len(exceptions)-1]
		token := pagination.EncodeMultiFieldToken(
			fmt.Sprintf("%d", domain.SeverityRank(last.Severity)),
			last.CreatedAt.Format("2006-01-02T15:04:05.999999999Z07:00"),
			last.ExceptionID,
		)
		outToken = &token
	}
	return exceptions, outToken, nil
}

// insertExceptionsTx inserts new exception rows inside the caller's document
// transaction, so they commit or roll back with the document write.
func insertExceptionsTx(ctx context.Context, tx pgx.Tx, exceptions []domain.Exception) error {
	query := `
		INSERT INTO exceptions (` + exceptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	for _, exc := range exceptions {
		m := mapping.ToModelException(exc)
		_, err := tx.Exec(ctx, query,
			m.ExceptionID, m.DocumentID, m.Type, m.Severity, m.Description, m.SuggestedFix, m.Owner,
			m.Resolved, m.Resolution, m.ResolvedBy, m.ResolvedAt,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert exception %s for document %s: %w", m.ExceptionID, m.DocumentID, err)
		}
	}
	return nil
}

// MarkResolved stores the resolution fields of one exception.
func (r *PgxExceptionRepository) MarkResolved(ctx context.Context, exception domain.Exception) error {
	m := mapping.ToModelException(exception)
	query := `
		UPDATE exceptions
		SET resolved = TRUE, resolution = $1, resolved_by = $2, resolved_at = $3,
			last_updated_at = $4, last_updated_by = $5
		WHERE exception_id = $6 AND NOT resolved;
	`
	tag, err := r.Pool.Exec(ctx, query, m.Resolution, m.ResolvedBy, m.ResolvedAt, m.LastUpdatedAt, m.LastUpdatedBy, m.ExceptionID)
	if err != nil {
		return fmt.Errorf("failed to resolve exception %s: %w", m.ExceptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: exception %s not found or already resolved", apperrors.ErrNotFound, m.ExceptionID)
	}
	return nil
}

// UpdateOwner sets the user working an exception.
func (r *PgxExceptionRepository) UpdateOwner(ctx context.Context, exceptionID, ownerUserID, updatedBy string) error {
	query := `
		UPDATE exceptions
		SET owner = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE exception_id = $3;
	`
	tag, err := r.Pool.Exec(ctx, query, ownerUserID, updatedBy, exceptionID)
	if err != nil {
		return fmt.Errorf("failed to update owner of exception %s: %w", exceptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: exception %s", apperrors.ErrNotFound, exceptionID)
	}
	return nil
}
