package domain

import "github.com/shopspring/decimal"

// KPISummary is the dashboard headline block.
type KPISummary struct {
	DocumentsProcessed  int             `json:"documentsProcessed"`
	PendingApprovals    int             `json:"pendingApprovals"`
	OpenExceptions      int             `json:"openExceptions"`
	AmountPending       decimal.Decimal `json:"amountPending"` // total of docs not yet posted/rejected
	TouchlessRate       float64         `json:"touchlessRate"` // % of posted docs with no human audit entries
	AverageConfidence   float64         `json:"averageConfidence"`
	DocumentsThisPeriod int             `json:"documentsThisPeriod"`
}

// VendorSpendRow is one line of the spend-by-vendor report.
type VendorSpendRow struct {
	VendorID     string          `json:"vendorID"`
	VendorName   string          `json:"vendorName"`
	InvoiceCount int             `json:"invoiceCount"`
	TotalSpend   decimal.Decimal `json:"totalSpend"`
	TotalTax     decimal.Decimal `json:"totalTax"`
}
