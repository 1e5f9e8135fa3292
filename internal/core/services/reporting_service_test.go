package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/core/services"
	"github.com/invoxel/ap_console_app/internal/platform/config"
)

// --- Test Suite ---

type ReportingServiceTestSuite struct {
	suite.Suite
	mockRepo *MockReportingRepository
	service  portssvc.ReportingSvcFacade
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockReportingRepository)
	cfg := &config.Config{SystemUserID: "system"}
	suite.service = services.NewReportingService(suite.mockRepo, cfg)
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestKPISummary_PassesSystemUserID() {
	ctx := context.Background()
	since := time.Now().AddDate(0, -1, 0)
	expected := &domain.KPISummary{
		DocumentsProcessed: 42,
		TouchlessRate:      31.0,
		AmountPending:      decimal.NewFromInt(125000),
	}

	suite.mockRepo.On("GetKPISummary", ctx, since, "system").Return(expected, nil).Once()

	summary, err := suite.service.KPISummary(ctx, since)

	suite.Require().NoError(err)
	suite.Equal(expected, summary)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestSpendByVendor_SwapsInvertedWindow() {
	ctx := context.Background()
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("GetSpendByVendor", ctx, to, from).Return([]domain.VendorSpendRow{}, nil).Once()

	_, err := suite.service.SpendByVendor(ctx, from, to)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestExportSpendByVendorXLSX_RoundTrips() {
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.VendorSpendRow{
		{VendorID: "v1", VendorName: "Acme Corp", InvoiceCount: 3, TotalSpend: decimal.RequireFromString("4210.75"), TotalTax: decimal.RequireFromString("340.10")},
		{VendorID: "v2", VendorName: "Globex", InvoiceCount: 1, TotalSpend: decimal.NewFromInt(900), TotalTax: decimal.NewFromInt(72)},
	}

	suite.mockRepo.On("GetSpendByVendor", ctx, from, to).Return(rows, nil).Once()

	content, err := suite.service.ExportSpendByVendorXLSX(ctx, from, to)

	suite.Require().NoError(err)
	suite.Require().NotEmpty(content)

	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	suite.Require().NoError(err)
	defer workbook.Close()

	header, err := workbook.GetCellValue("Spend by Vendor", "A1")
	suite.Require().NoError(err)
	suite.Equal("Vendor", header)

	firstVendor, err := workbook.GetCellValue("Spend by Vendor", "A2")
	suite.Require().NoError(err)
	suite.Equal("Acme Corp", firstVendor)

	secondCount, err := workbook.GetCellValue("Spend by Vendor", "B3")
	suite.Require().NoError(err)
	suite.Equal("1", secondCount)
}

// --- Run Suite ---
func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
