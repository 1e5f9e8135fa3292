package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	"github.com/invoxel/ap_console_app/internal/models"
	"github.com/invoxel/ap_console_app/internal/utils/mapping"
	"github.com/invoxel/ap_console_app/internal/utils/pagination"
)

type PgxApprovalRepository struct {
	BaseRepository
}

// newPgxApprovalRepository creates a new repository for approval data.
func newPgxApprovalRepository(pool *pgxpool.Pool) portsrepo.ApprovalRepositoryFacade {
	return &PgxApprovalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxApprovalRepository implements portsrepo.ApprovalRepositoryFacade
var _ portsrepo.ApprovalRepositoryFacade = (*PgxApprovalRepository)(nil)

const approvalColumns = `approval_id, document_id, required_approver, priority, sla_hours, submitted_at, submitted_by`

func scanApprovalRow(row pgx.Row) (domain.Approval, error) {
	var m models.Approval
	err := row.Scan(&m.ApprovalID, &m.DocumentID, &m.RequiredApprover, &m.Priority, &m.SLAHours, &m.SubmittedAt, &m.SubmittedBy)
	if err != nil {
		return domain.Approval{}, err
	}
	return mapping.ToDomainApproval(m), nil
}

// FindApprovalByID retrieves one approval.
func (r *PgxApprovalRepository) FindApprovalByID(ctx context.Context, approvalID string) (*domain.Approval, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE approval_id = $1;`
	approval, err := scanApprovalRow(r.Pool.QueryRow(ctx, query, approvalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: approval %s", apperrors.ErrNotFound, approvalID)
		}
		return nil, fmt.Errorf("failed to find approval %s: %w", approvalID, err)
	}
	return &approval, nil
}

// FindApprovalByDocumentID retrieves the approval attached to a document, if any.
func (r *PgxApprovalRepository) FindApprovalByDocumentID(ctx context.Context, documentID string) (*domain.Approval, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE document_id = $1;`
	approval, err := scanApprovalRow(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no approval for document %s", apperrors.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to find approval for document %s: %w", documentID, err)
	}
	return &approval, nil
}

// ListPendingApprovals retrieves the queue ordered by submission time
// ascending so the oldest SLA surfaces first.
func (r *PgxApprovalRepository) ListPendingApprovals(ctx context.Context, limit int, nextToken *string) ([]domain.Approval, *string, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if nextToken != nil && *nextToken != "" {
		submittedAt, approvalID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += fmt.Sprintf(" AND (submitted_at, approval_id) > ($%d, $%d)", argPos, argPos+1)
		args = append(args, submittedAt, approvalID)
		argPos += 2
	}

	query += fmt.Sprintf(" ORDER BY submitted_at ASC, approval_id ASC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query pending approvals: %w", err)
	}
	defer rows.Close()

	var approvals []domain.Approval
	for rows.Next() {
		approval, err := scanApprovalRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, approval)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading approval rows: %w", err)
	}

	var outToken *string
	if len(approvals) > limit {
		approvals = approvals[:limit]
		last := approvals[len(approvals)-1]
		token := pagination.EncodeToken(last.SubmittedAt, last.ApprovalID)
		outToken = &token
	}
	return approvals, outToken, nil
}

// SaveApproval inserts a new approval record. A document carries at most one,
// enforced by a unique index on document_id.
func (r *PgxApprovalRepository) SaveApproval(ctx context.Context, approval domain.Approval) error {
	m := mapping.ToModelApproval(approval)
	query := `
		INSERT INTO approvals (` + approvalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query, m.ApprovalID, m.DocumentID, m.RequiredApprover, m.Priority, m.SLAHours, m.SubmittedAt, m.SubmittedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: approval already pending for document %s", apperrors.ErrDuplicate, m.DocumentID)
		}
		return fmt.Errorf("failed to insert approval %s: %w", m.ApprovalID, err)
	}
	return nil
}

// DeleteApproval removes the approval record after a decision.
func (r *PgxApprovalRepository) DeleteApproval(ctx context.Context, approvalID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM approvals WHERE approval_id = $1;`, approvalID)
	if err != nil {
		return fmt.Errorf("failed to delete approval %s: %w", approvalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: approval %s", apperrors.ErrNotFound, approvalID)
	}
	return nil
}

const approvalRuleColumns = `
	rule_id, name, vendor_id, min_amount, max_amount, approver, sla_hours, priority, enabled, rule_order,
	created_at, created_by, last_updated_at, last_updated_by`

func scanApprovalRuleRow(row pgx.Row) (domain.ApprovalRule, error) {
	var m models.ApprovalRule
	err := row.Scan(
		&m.RuleID, &m.Name, &m.VendorID, &m.MinAmount, &m.MaxAmount, &m.Approver, &m.SLAHours, &m.Priority, &m.Enabled, &m.RuleOrder,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.ApprovalRule{}, err
	}
	return mapping.ToDomainApprovalRule(m), nil
}

// ListApprovalRules returns all routing rules ordered by rule order.
func (r *PgxApprovalRepository) ListApprovalRules(ctx context.Context) ([]domain.ApprovalRule, error) {
	query := `SELECT ` + approvalRuleColumns + ` FROM approval_rules ORDER BY rule_order ASC, rule_id ASC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.ApprovalRule
	for rows.Next() {
		rule, err := scanApprovalRuleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// FindApprovalRuleByID retrieves one rule.
func (r *PgxApprovalRepository) FindApprovalRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error) {
	query := `SELECT ` + approvalRuleColumns + ` FROM approval_rules WHERE rule_id = $1;`
	rule, err := scanApprovalRuleRow(r.Pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: approval rule %s", apperrors.ErrNotFound, ruleID)
		}
		return nil, fmt.Errorf("failed to find approval rule %s: %w", ruleID, err)
	}
	return &rule, nil
}

// SaveApprovalRule inserts a new routing rule.
func (r *PgxApprovalRepository) SaveApprovalRule(ctx context.Context, rule domain.ApprovalRule) error {
	m := mapping.ToModelApprovalRule(rule)
	query := `
		INSERT INTO approval_rules (` + approvalRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RuleID, m.Name, m.VendorID, m.MinAmount, m.MaxAmount, m.Approver, m.SLAHours, m.Priority, m.Enabled, m.RuleOrder,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: approval rule %s already exists", apperrors.ErrDuplicate, m.RuleID)
		}
		return fmt.Errorf("failed to insert approval rule %s: %w", m.RuleID, err)
	}
	return nil
}

// UpdateApprovalRule rewrites one routing rule.
func (r *PgxApprovalRepository) UpdateApprovalRule(ctx context.Context, rule domain.ApprovalRule) error {
	m := mapping.ToModelApprovalRule(rule)
	query := `
		UPDATE approval_rules
		SET name = $1, vendor_id = $2, min_amount = $3, max_amount = $4, approver = $5,
			sla_hours = $6, priority = $7, enabled = $8, rule_order = $9,
			last_updated_at = $10, last_updated_by = $11
		WHERE rule_id = $12;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Name, m.VendorID, m.MinAmount, m.MaxAmount, m.Approver,
		m.SLAHours, m.Priority, m.Enabled, m.RuleOrder,
		m.LastUpdatedAt, m.LastUpdatedBy, m.RuleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval rule %s: %w", m.RuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: approval rule %s", apperrors.ErrNotFound, m.RuleID)
	}
	return nil
}

// DeleteApprovalRule removes one routing rule.
func (r *PgxApprovalRepository) DeleteApprovalRule(ctx context.Context, ruleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM approval_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete approval rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: approval rule %s", apperrors.ErrNotFound, ruleID)
	}
	return nil
}
