package dto

import (
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// CreateVendorRequest defines the data needed to register a vendor.
type CreateVendorRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"omitempty,email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	DefaultGLAccount string `json:"defaultGLAccount"`
	PaymentTerms     string `json:"paymentTerms"`
}

// UpdateVendorRequest edits a vendor. Pointers distinguish "not provided"
// from zero values.
type UpdateVendorRequest struct {
	Name             *string `json:"name"`
	IsActive         *bool   `json:"isActive"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	DefaultGLAccount *string `json:"defaultGLAccount"`
	PaymentTerms     *string `json:"paymentTerms"`
}

// AutoCodingRuleRequest is one rule in a replacement set. Order in the slice
// is the evaluation order.
type AutoCodingRuleRequest struct {
	Condition  string `json:"condition" binding:"required"`
	GLAccount  string `json:"glAccount" binding:"required"`
	CostCenter string `json:"costCenter"`
	Enabled    bool   `json:"enabled"`
}

// ReplaceAutoCodingRulesRequest swaps a vendor's full rule set.
type ReplaceAutoCodingRulesRequest struct {
	Rules []AutoCodingRuleRequest `json:"rules" binding:"required,dive"`
}

// VendorResponse mirrors domain.Vendor.
type VendorResponse struct {
	VendorID         string                  `json:"vendorID"`
	Name             string                  `json:"name"`
	IsActive         bool                    `json:"isActive"`
	Email            string                  `json:"email,omitempty"`
	Phone            string                  `json:"phone,omitempty"`
	Address          string                  `json:"address,omitempty"`
	DefaultGLAccount string                  `json:"defaultGLAccount,omitempty"`
	PaymentTerms     string                  `json:"paymentTerms,omitempty"`
	AutoCodingRules  []domain.AutoCodingRule `json:"autoCodingRules,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	LastUpdatedAt    time.Time               `json:"lastUpdatedAt"`
}

// ToVendorResponse converts a domain.Vendor to its response DTO.
func ToVendorResponse(v *domain.Vendor) VendorResponse {
	return VendorResponse{
		VendorID:         v.VendorID,
		Name:             v.Name,
		IsActive:         v.IsActive,
		Email:            v.Email,
		Phone:            v.Phone,
		Address:          v.Address,
		DefaultGLAccount: v.DefaultGLAccount,
		PaymentTerms:     v.PaymentTerms,
		AutoCodingRules:  v.AutoCodingRules,
		CreatedAt:        v.CreatedAt,
		LastUpdatedAt:    v.LastUpdatedAt,
	}
}

// ToListVendorsResponse converts a page of vendors.
func ToListVendorsResponse(vendors []domain.Vendor, nextToken *string) ListVendorsResponse {
	out := make([]VendorResponse, len(vendors))
	for i := range vendors {
		out[i] = ToVendorResponse(&vendors[i])
	}
	return ListVendorsResponse{Vendors: out, NextToken: nextToken}
}

// ListVendorsResponse wraps a vendors page.
type ListVendorsResponse struct {
	Vendors   []VendorResponse `json:"vendors"`
	NextToken *string          `json:"nextToken,omitempty"`
}
