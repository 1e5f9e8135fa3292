package repositories

import (
	"context"
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// ReportingRepository aggregates read models for the dashboard and reports.
type ReportingRepository interface {
	// GetKPISummary computes the dashboard headline numbers. systemUserID
	// identifies the ingestion actor so touchless documents can be told apart
	// from human-touched ones.
	GetKPISummary(ctx context.Context, since time.Time, systemUserID string) (*domain.KPISummary, error)

	// GetSpendByVendor aggregates posted spend per vendor inside the window.
	GetSpendByVendor(ctx context.Context, from, to time.Time) ([]domain.VendorSpendRow, error)
}
