package services

import (
	"context"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/dto"
)

// VendorSvcFacade is the vendor registry surface.
type VendorSvcFacade interface {
	CreateVendor(ctx context.Context, req dto.CreateVendorRequest, actorUserID string) (*domain.Vendor, error)
	GetVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error)
	GetVendorByName(ctx context.Context, name string) (*domain.Vendor, error)
	ListVendors(ctx context.Context, includeInactive bool, params dto.ListParams) ([]domain.Vendor, *string, error)
	UpdateVendor(ctx context.Context, vendorID string, req dto.UpdateVendorRequest, actorUserID string) (*domain.Vendor, error)

	// ReplaceAutoCodingRules swaps the vendor's ordered rule list.
	ReplaceAutoCodingRules(ctx context.Context, vendorID string, req dto.ReplaceAutoCodingRulesRequest, actorUserID string) (*domain.Vendor, error)

	// GetVendorStats computes totalInvoices and accuracyRate from documents.
	GetVendorStats(ctx context.Context, vendorID string) (*domain.VendorStats, error)
}
