package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
)

// vendorHandler handles HTTP requests related to the vendor registry.
type vendorHandler struct {
	vendorService portssvc.VendorSvcFacade
}

// registerVendorRoutes registers routes related to vendors.
func registerVendorRoutes(rg *gin.RouterGroup, vendorService portssvc.VendorSvcFacade) {
	h := &vendorHandler{vendorService: vendorService}

	vendors := rg.Group("/vendors")
	{
		vendors.POST("", h.createVendor)
		vendors.GET("", h.listVendors)
		vendors.GET("/:id", h.getVendorByID)
		vendors.PATCH("/:id", h.updateVendor)
		vendors.GET("/:id/stats", h.getVendorStats)
		vendors.PUT("/:id/auto-coding-rules", h.replaceAutoCodingRules)
	}
}

// createVendor godoc
// @Summary Register a vendor
// @Tags vendors
// @Accept  json
// @Produce  json
// @Param   vendor body dto.CreateVendorRequest true "Vendor details"
// @Success 201 {object} dto.VendorResponse
// @Failure 409 {object} map[string]string "Vendor name already registered"
// @Security BearerAuth
// @Router /vendors [post]
func (h *vendorHandler) createVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "create vendor")
		return
	}
	c.JSON(http.StatusCreated, dto.ToVendorResponse(vendor))
}

// listVendors godoc
// @Summary List vendors
// @Description Retrieves vendors ordered by name, token-paginated
// @Tags vendors
// @Produce  json
// @Param   includeInactive query bool false "Include inactive vendors"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListVendorsResponse
// @Security BearerAuth
// @Router /vendors [get]
func (h *vendorHandler) listVendors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("includeInactive", "false"))

	vendors, nextToken, err := h.vendorService.ListVendors(c.Request.Context(), includeInactive, params)
	if err != nil {
		handleServiceError(c, logger, err, "list vendors")
		return
	}
	c.JSON(http.StatusOK, dto.ToListVendorsResponse(vendors, nextToken))
}

// getVendorByID godoc
// @Summary Get a vendor
// @Tags vendors
// @Produce  json
// @Param   id path string true "Vendor ID"
// @Success 200 {object} dto.VendorResponse
// @Failure 404 {object} map[string]string "Vendor not found"
// @Security BearerAuth
// @Router /vendors/{id} [get]
func (h *vendorHandler) getVendorByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	vendor, err := h.vendorService.GetVendorByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "get vendor")
		return
	}
	c.JSON(http.StatusOK, dto.ToVendorResponse(vendor))
}

// updateVendor godoc
// @Summary Edit vendor master data
// @Tags vendors
// @Accept  json
// @Produce  json
// @Param   id path string true "Vendor ID"
// @Param   vendor body dto.UpdateVendorRequest true "Fields to edit"
// @Success 200 {object} dto.VendorResponse
// @Security BearerAuth
// @Router /vendors/{id} [patch]
func (h *vendorHandler) updateVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "update vendor")
		return
	}
	c.JSON(http.StatusOK, dto.ToVendorResponse(vendor))
}

// getVendorStats godoc
// @Summary Get vendor statistics
// @Description Computes invoice volume and posting accuracy from historical documents
// @Tags vendors
// @Produce  json
// @Param   id path string true "Vendor ID"
// @Success 200 {object} domain.VendorStats
// @Security BearerAuth
// @Router /vendors/{id}/stats [get]
func (h *vendorHandler) getVendorStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	stats, err := h.vendorService.GetVendorStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "get vendor stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// replaceAutoCodingRules godoc
// @Summary Replace a vendor's auto-coding rules
// @Description Swaps the full ordered rule set; slice order is the evaluation order
// @Tags vendors
// @Accept  json
// @Produce  json
// @Param   id path string true "Vendor ID"
// @Param   rules body dto.ReplaceAutoCodingRulesRequest true "Ordered rule set"
// @Success 200 {object} dto.VendorResponse
// @Security BearerAuth
// @Router /vendors/{id}/auto-coding-rules [put]
func (h *vendorHandler) replaceAutoCodingRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReplaceAutoCodingRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	vendor, err := h.vendorService.ReplaceAutoCodingRules(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "replace auto-coding rules")
		return
	}
	c.JSON(http.StatusOK, dto.ToVendorResponse(vendor))
}
