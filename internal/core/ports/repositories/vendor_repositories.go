package repositories

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// VendorReader defines read operations for vendor data.
type VendorReader interface {
	// FindVendorByID retrieves a vendor with its auto-coding rules in declared order.
	FindVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error)

	// FindVendorByName retrieves a vendor by exact name match.
	FindVendorByName(ctx context.Context, name string) (*domain.Vendor, error)

	// ListVendors retrieves vendors ordered by name.
	ListVendors(ctx context.Context, includeInactive bool, limit int, nextToken *string) ([]domain.Vendor, *string, error)

	// GetVendorStats computes the document-derived projections for a vendor.
	GetVendorStats(ctx context.Context, vendorID string) (*domain.VendorStats, error)
}

// VendorWriter defines write operations for vendor data.
type VendorWriter interface {
	SaveVendor(ctx context.Context, vendor domain.Vendor) error
	UpdateVendor(ctx context.Context, vendor domain.Vendor) error

	// ReplaceAutoCodingRules swaps the vendor's full ordered rule set atomically.
	ReplaceAutoCodingRules(ctx context.Context, vendorID string, rules []domain.AutoCodingRule) error
}

// VendorRepositoryFacade combines all vendor-related repository interfaces.
type VendorRepositoryFacade interface {
	VendorReader
	VendorWriter
}
