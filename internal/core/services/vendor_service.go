package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
)

type vendorService struct {
	vendorRepo portsrepo.VendorRepositoryFacade
}

// NewVendorService creates the vendor registry service.
func NewVendorService(vendorRepo portsrepo.VendorRepositoryFacade) portssvc.VendorSvcFacade {
	return &vendorService{vendorRepo: vendorRepo}
}

var _ portssvc.VendorSvcFacade = (*vendorService)(nil)

// CreateVendor registers a new active vendor.
func (s *vendorService) CreateVendor(ctx context.Context, req dto.CreateVendorRequest, actorUserID string) (*domain.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: vendor name cannot be blank", apperrors.ErrValidation)
	}

	now := time.Now()
	vendor := domain.Vendor{
		VendorID:         uuid.NewString(),
		Name:             name,
		IsActive:         true,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		DefaultGLAccount: req.DefaultGLAccount,
		PaymentTerms:     req.PaymentTerms,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}
	if err := s.vendorRepo.SaveVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetVendorByID retrieves a vendor with its auto-coding rules.
func (s *vendorService) GetVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	return s.vendorRepo.FindVendorByID(ctx, vendorID)
}

// GetVendorByName retrieves a vendor by exact name.
func (s *vendorService) GetVendorByName(ctx context.Context, name string) (*domain.Vendor, error) {
	return s.vendorRepo.FindVendorByName(ctx, name)
}

// ListVendors retrieves a page of vendors ordered by name.
func (s *vendorService) ListVendors(ctx context.Context, includeInactive bool, params dto.ListParams) ([]domain.Vendor, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	return s.vendorRepo.ListVendors(ctx, includeInactive, limit, params.NextToken)
}

// UpdateVendor edits vendor master data.
func (s *vendorService) UpdateVendor(ctx context.Context, vendorID string, req dto.UpdateVendorRequest, actorUserID string) (*domain.Vendor, error) {
	vendor, err := s.vendorRepo.FindVendorByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: vendor name cannot be blank", apperrors.ErrValidation)
		}
		vendor.Name = name
	}
	if req.IsActive != nil {
		vendor.IsActive = *req.IsActive
	}
	if req.Email != nil {
		vendor.Email = *req.Email
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
	}
	if req.Address != nil {
		vendor.Address = *req.Address
	}
	if req.DefaultGLAccount != nil {
		vendor.DefaultGLAccount = *req.DefaultGLAccount
	}
	if req.PaymentTerms != nil {
		vendor.PaymentTerms = *req.PaymentTerms
	}
	vendor.LastUpdatedAt = time.Now()
	vendor.LastUpdatedBy = actorUserID

	if err := s.vendorRepo.UpdateVendor(ctx, *vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// ReplaceAutoCodingRules swaps the vendor's full ordered rule set. Slice order
// becomes the evaluation order.
func (s *vendorService) ReplaceAutoCodingRules(ctx context.Context, vendorID string, req dto.ReplaceAutoCodingRulesRequest, actorUserID string) (*domain.Vendor, error) {
	vendor, err := s.vendorRepo.FindVendorByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.AutoCodingRule, len(req.Rules))
	for i, r := range req.Rules {
		if strings.TrimSpace(r.Condition) == "" {
			return nil, fmt.Errorf("%w: rule condition cannot be blank", apperrors.ErrValidation)
		}
		rules[i] = domain.AutoCodingRule{
			RuleID:     uuid.NewString(),
			VendorID:   vendorID,
			Condition:  r.Condition,
			GLAccount:  r.GLAccount,
			CostCenter: r.CostCenter,
			Enabled:    r.Enabled,
			RuleOrder:  i,
		}
	}

	if err := s.vendorRepo.ReplaceAutoCodingRules(ctx, vendorID, rules); err != nil {
		return nil, err
	}
	vendor.AutoCodingRules = rules
	return vendor, nil
}

// GetVendorStats computes document-derived projections for a vendor.
func (s *vendorService) GetVendorStats(ctx context.Context, vendorID string) (*domain.VendorStats, error) {
	if _, err := s.vendorRepo.FindVendorByID(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.vendorRepo.GetVendorStats(ctx, vendorID)
}
