package services

import (
	"context"
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// ReportingSvcFacade serves the dashboard and reports screens.
type ReportingSvcFacade interface {
	// KPISummary computes the dashboard headline block for documents uploaded
	// since the given time.
	KPISummary(ctx context.Context, since time.Time) (*domain.KPISummary, error)

	// SpendByVendor aggregates posted spend per vendor in the window.
	SpendByVendor(ctx context.Context, from, to time.Time) ([]domain.VendorSpendRow, error)

	// ExportSpendByVendorXLSX renders the spend report as an xlsx workbook.
	ExportSpendByVendorXLSX(ctx context.Context, from, to time.Time) ([]byte, error)
}
