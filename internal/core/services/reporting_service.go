package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/platform/config"
)

type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
	cfg           *config.Config
}

// NewReportingService creates the dashboard and reports service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, cfg *config.Config) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo, cfg: cfg}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// KPISummary computes the dashboard headline block.
func (s *reportingService) KPISummary(ctx context.Context, since time.Time) (*domain.KPISummary, error) {
	return s.reportingRepo.GetKPISummary(ctx, since, s.cfg.SystemUserID)
}

// SpendByVendor aggregates posted spend per vendor in the window.
func (s *reportingService) SpendByVendor(ctx context.Context, from, to time.Time) ([]domain.VendorSpendRow, error) {
	if to.Before(from) {
		from, to = to, from
	}
	return s.reportingRepo.GetSpendByVendor(ctx, from, to)
}

const spendSheetName = "Spend by Vendor"

// ExportSpendByVendorXLSX renders the spend report as an xlsx workbook.
func (s *reportingService) ExportSpendByVendorXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	rows, err := s.SpendByVendor(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(spendSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"Vendor", "Invoices", "Total Spend", "Total Tax"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(spendSheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.VendorName,
			row.InvoiceCount,
			row.TotalSpend.InexactFloat64(),
			row.TotalTax.InexactFloat64(),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(spendSheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
