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

type PgxVendorRepository struct {
	BaseRepository
}

// newPgxVendorRepository creates a new repository for vendor data.
func newPgxVendorRepository(pool *pgxpool.Pool) portsrepo.VendorRepositoryFacade {
	return &PgxVendorRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxVendorRepository implements portsrepo.VendorRepositoryFacade
var _ portsrepo.VendorRepositoryFacade = (*PgxVendorRepository)(nil)

const vendorColumns = `
	vendor_id, name, is_active, email, phone, address, default_gl_account, payment_terms,
	created_at, created_by, last_updated_at, last_updated_by`

func scanVendorRow(row pgx.Row) (domain.Vendor, error) {
	var m models.Vendor
	err := row.Scan(
		&m.VendorID, &m.Name, &m.IsActive, &m.Email, &m.Phone, &m.Address, &m.DefaultGLAccount, &m.PaymentTerms,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Vendor{}, err
	}
	return mapping.ToDomainVendor(m), nil
}

// FindVendorByID retrieves a vendor with its auto-coding rules in declared order.
func (r *PgxVendorRepository) FindVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE vendor_id = $1;`
	vendor, err := scanVendorRow(r.Pool.QueryRow(ctx, query, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vendor %s", apperrors.ErrNotFound, vendorID)
		}
		return nil, fmt.Errorf("failed to find vendor %s: %w", vendorID, err)
	}
	if vendor.AutoCodingRules, err = r.findAutoCodingRules(ctx, vendorID); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// FindVendorByName retrieves a vendor by exact name match.
func (r *PgxVendorRepository) FindVendorByName(ctx context.Context, name string) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE name = $1;`
	vendor, err := scanVendorRow(r.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vendor named %q", apperrors.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to find vendor named %q: %w", name, err)
	}
	if vendor.AutoCodingRules, err = r.findAutoCodingRules(ctx, vendor.VendorID); err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *PgxVendorRepository) findAutoCodingRules(ctx context.Context, vendorID string) ([]domain.AutoCodingRule, error) {
	query := `
		SELECT rule_id, vendor_id, condition, gl_account, cost_center, enabled, rule_order
		FROM vendor_auto_coding_rules
		WHERE vendor_id = $1
		ORDER BY rule_order ASC;
	`
	rows, err := r.Pool.Query(ctx, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto-coding rules for vendor %s: %w", vendorID, err)
	}
	defer rows.Close()

	var rules []domain.AutoCodingRule
	for rows.Next() {
		var m models.AutoCodingRule
		if err := rows.Scan(&m.RuleID, &m.VendorID, &m.Condition, &m.GLAccount, &m.CostCenter, &m.Enabled, &m.RuleOrder); err != nil {
			return nil, fmt.Errorf("failed to scan auto-coding rule: %w", err)
		}
		rules = append(rules, mapping.ToDomainAutoCodingRule(m))
	}
	return rules, rows.Err()
}

// ListVendors retrieves vendors ordered by name, keyset-paginated on
// (name, vendor_id).
func (r *PgxVendorRepository) ListVendors(ctx context.Context, includeInactive bool, limit int, nextToken *string) ([]domain.Vendor, *string, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if !includeInactive {
		query += " AND is_active"
	}
	if nextToken != nil && *nextToken != "" {
		parts, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(parts) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(" AND (name, vendor_id) > ($%d, $%d)", argPos, argPos+1)
		args = append(args, parts[0], parts[1])
		argPos += 2
	}

	query += fmt.Sprintf(" ORDER BY name ASC, vendor_id ASC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		vendor, err := scanVendorRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading vendor rows: %w", err)
	}

	var outToken *string
	if len(vendors) > limit {
		vendors = vendors[:limit]
		last := vendors[len(vendors)-1]
		token := pagination.EncodeMultiFieldToken(last.Name, last.VendorID)
		outToken = &token
	}
	return vendors, outToken, nil
}

// GetVendorStats computes document-derived projections for a vendor. Accuracy
// is the share of posted documents that never raised an exception.
func (r *PgxVendorRepository) GetVendorStats(ctx context.Context, vendorID string) (*domain.VendorStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_invoices,
			COUNT(*) FILTER (WHERE d.status = 'POSTED') AS posted,
			COUNT(*) FILTER (
				WHERE d.status = 'POSTED'
				  AND NOT EXISTS (SELECT 1 FROM exceptions e WHERE e.document_id = d.document_id)
			) AS posted_clean
		FROM documents d
		WHERE d.vendor_id = $1;
	`
	var total, posted, postedClean int
	if err := r.Pool.QueryRow(ctx, query, vendorID).Scan(&total, &posted, &postedClean); err != nil {
		return nil, fmt.Errorf("failed to compute stats for vendor %s: %w", vendorID, err)
	}

	stats := &domain.VendorStats{VendorID: vendorID, TotalInvoices: total}
	if posted > 0 {
		stats.AccuracyRate = float64(postedClean) / float64(posted) * 100
	}
	return stats, nil
}

// SaveVendor inserts a new vendor.
func (r *PgxVendorRepository) SaveVendor(ctx context.Context, vendor domain.Vendor) error {
	m := mapping.ToModelVendor(vendor)
	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.VendorID, m.Name, m.IsActive, m.Email, m.Phone, m.Address, m.DefaultGLAccount, m.PaymentTerms,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: vendor named %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to insert vendor %s: %w", m.VendorID, err)
	}
	return nil
}

// UpdateVendor rewrites the vendor's mutable columns.
func (r *PgxVendorRepository) UpdateVendor(ctx context.Context, vendor domain.Vendor) error {
	m := mapping.ToModelVendor(vendor)
	query := `
		UPDATE vendors
		SET name = $1, is_active = $2, email = $3, phone = $4, address = $5,
			default_gl_account = $6, payment_terms = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE vendor_id = $10;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Name, m.IsActive, m.Email, m.Phone, m.Address,
		m.DefaultGLAccount, m.PaymentTerms,
		m.LastUpdatedAt, m.LastUpdatedBy, m.VendorID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: vendor named %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to update vendor %s: %w", m.VendorID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: vendor %s", apperrors.ErrNotFound, m.VendorID)
	}
	return nil
}

// ReplaceAutoCodingRules swaps the vendor's full ordered rule set atomically.
func (r *PgxVendorRepository) ReplaceAutoCodingRules(ctx context.Context, vendorID string, rules []domain.AutoCodingRule) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM vendor_auto_coding_rules WHERE vendor_id = $1;`, vendorID); err != nil {
		return fmt.Errorf("failed to clear auto-coding rules for vendor %s: %w", vendorID, err)
	}

	query := `
		INSERT INTO vendor_auto_coding_rules (rule_id, vendor_id, condition, gl_account, cost_center, enabled, rule_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, rule := range rules {
		m := mapping.ToModelAutoCodingRule(rule)
		_, err := tx.Exec(ctx, query, m.RuleID, m.VendorID, m.Condition, m.GLAccount, m.CostCenter, m.Enabled, m.RuleOrder)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("%w: vendor %s", apperrors.ErrNotFound, vendorID)
			}
			return fmt.Errorf("failed to insert auto-coding rule for vendor %s: %w", vendorID, err)
		}
	}

	return r.Commit(ctx, tx)
}
