package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
)

type ReportingRepository struct {
	BaseRepository
}

// newReportingRepository creates the read-model repository for dashboards.
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &ReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure ReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

// GetKPISummary computes the dashboard headline numbers in one round trip per
// aggregate. Touchless means a posted document whose audit trail carries only
// system-actor entries.
func (r *ReportingRepository) GetKPISummary(ctx context.Context, since time.Time, systemUserID string) (*domain.KPISummary, error) {
	summary := &domain.KPISummary{}

	docQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE uploaded_at >= $1),
			COALESCE(SUM(amount) FILTER (WHERE status NOT IN ('POSTED', 'REJECTED')), 0),
			COALESCE(AVG(confidence_score), 0)
		FROM documents;
	`
	var amountPending decimal.Decimal
	err := r.Pool.QueryRow(ctx, docQuery, since).Scan(
		&summary.DocumentsProcessed,
		&summary.DocumentsThisPeriod,
		&amountPending,
		&summary.AverageConfidence,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute document KPIs: %w", err)
	}
	summary.AmountPending = amountPending

	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM approvals;`).Scan(&summary.PendingApprovals); err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}

	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exceptions WHERE NOT resolved;`).Scan(&summary.OpenExceptions); err != nil {
		return nil, fmt.Errorf("failed to count open exceptions: %w", err)
	}

	touchlessQuery := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'POSTED'),
			COUNT(*) FILTER (
				WHERE status = 'POSTED'
				  AND NOT EXISTS (
					SELECT 1 FROM audit_entries a
					WHERE a.document_id = d.document_id AND a.user_id <> $1
				  )
			)
		FROM documents d;
	`
	var posted, touchless int
	if err := r.Pool.QueryRow(ctx, touchlessQuery, systemUserID).Scan(&posted, &touchless); err != nil {
		return nil, fmt.Errorf("failed to compute touchless rate: %w", err)
	}
	if posted > 0 {
		summary.TouchlessRate = float64(touchless) / float64(posted) * 100
	}

	return summary, nil
}

// GetSpendByVendor aggregates posted spend per vendor inside the window.
func (r *ReportingRepository) GetSpendByVendor(ctx context.Context, from, to time.Time) ([]domain.VendorSpendRow, error) {
	query := `
		SELECT v.vendor_id, v.name, COUNT(*), COALESCE(SUM(d.amount), 0), COALESCE(SUM(d.tax), 0)
		FROM documents d
		JOIN vendors v ON v.vendor_id = d.vendor_id
		WHERE d.status = 'POSTED'
		  AND d.uploaded_at >= $1 AND d.uploaded_at < $2
		GROUP BY v.vendor_id, v.name
		ORDER BY SUM(d.amount) DESC;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query spend by vendor: %w", err)
	}
	defer rows.Close()

	var report []domain.VendorSpendRow
	for rows.Next() {
		var row domain.VendorSpendRow
		if err := rows.Scan(&row.VendorID, &row.VendorName, &row.InvoiceCount, &row.TotalSpend, &row.TotalTax); err != nil {
			return nil, fmt.Errorf("failed to scan spend row: %w", err)
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
