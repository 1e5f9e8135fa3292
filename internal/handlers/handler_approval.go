package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
)

// approvalHandler handles HTTP requests related to approvals and routing rules.
type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

// registerApprovalRoutes registers routes related to approvals.
func registerApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := &approvalHandler{approvalService: approvalService}

	approvals := rg.Group("/approvals")
	{
		approvals.GET("", h.listPendingApprovals)
		approvals.POST("/:id/decide", h.decide)
	}

	rules := rg.Group("/approval-rules")
	{
		rules.GET("", h.listRules)
		rules.POST("", h.createRule)
		rules.PATCH("/:id", h.updateRule)
		rules.DELETE("/:id", h.deleteRule)
	}
}

// listPendingApprovals godoc
// @Summary List pending approvals
// @Description Retrieves the approvals queue, tightest SLA first, token-paginated
// @Tags approvals
// @Produce  json
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListApprovalsResponse
// @Security BearerAuth
// @Router /approvals [get]
func (h *approvalHandler) listPendingApprovals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	approvals, nextToken, err := h.approvalService.ListPendingApprovals(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, logger, err, "list approvals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListApprovalsResponse(approvals, nextToken, time.Now()))
}

// decide godoc
// @Summary Record an approval decision
// @Description Approve, reject, or request more information on a pending approval
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   id path string true "Approval ID"
// @Param   decision body dto.DecideApprovalRequest true "Outcome and optional comment"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Approval not found"
// @Failure 422 {object} map[string]string "Document not pending approval"
// @Security BearerAuth
// @Router /approvals/{id}/decide [post]
func (h *approvalHandler) decide(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DecideApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	doc, err := h.approvalService.Decide(c.Request.Context(), c.Param("id"), req.Outcome, req.Comment, userID)
	if err != nil {
		handleServiceError(c, logger, err, "decide approval")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// listRules godoc
// @Summary List approval routing rules
// @Tags approvals
// @Produce  json
// @Success 200 {array} domain.ApprovalRule
// @Security BearerAuth
// @Router /approval-rules [get]
func (h *approvalHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rules, err := h.approvalService.ListRules(c.Request.Context())
	if err != nil {
		handleServiceError(c, logger, err, "list approval rules")
		return
	}
	c.JSON(http.StatusOK, rules)
}

// createRule godoc
// @Summary Create an approval routing rule
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   rule body dto.CreateApprovalRuleRequest true "Rule details"
// @Success 201 {object} domain.ApprovalRule
// @Security BearerAuth
// @Router /approval-rules [post]
func (h *approvalHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	rule, err := h.approvalService.CreateRule(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "create approval rule")
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// updateRule godoc
// @Summary Edit an approval routing rule
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   id path string true "Rule ID"
// @Param   rule body dto.UpdateApprovalRuleRequest true "Fields to edit"
// @Success 200 {object} domain.ApprovalRule
// @Security BearerAuth
// @Router /approval-rules/{id} [patch]
func (h *approvalHandler) updateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	rule, err := h.approvalService.UpdateRule(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "update approval rule")
		return
	}
	c.JSON(http.StatusOK, rule)
}

// deleteRule godoc
// @Summary Delete an approval routing rule
// @Tags approvals
// @Param   id path string true "Rule ID"
// @Success 204 "Deleted"
// @Security BearerAuth
// @Router /approval-rules/{id} [delete]
func (h *approvalHandler) deleteRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.approvalService.DeleteRule(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, logger, err, "delete approval rule")
		return
	}
	c.Status(http.StatusNoContent)
}
