package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
)

// exceptionHandler handles HTTP requests related to the exception queue.
type exceptionHandler struct {
	exceptionService portssvc.ExceptionSvcFacade
}

// registerExceptionRoutes registers routes related to exceptions.
func registerExceptionRoutes(rg *gin.RouterGroup, exceptionService portssvc.ExceptionSvcFacade) {
	h := &exceptionHandler{exceptionService: exceptionService}

	exceptions := rg.Group("/exceptions")
	{
		exceptions.GET("", h.listOpenExceptions)
		exceptions.POST("/:id/resolve", h.resolveException)
		exceptions.POST("/:id/assign", h.assignException)
	}
}

// listOpenExceptions godoc
// @Summary List the open exception queue
// @Description Retrieves unresolved exceptions ordered by severity then age, token-paginated
// @Tags exceptions
// @Produce  json
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListExceptionsResponse
// @Security BearerAuth
// @Router /exceptions [get]
func (h *exceptionHandler) listOpenExceptions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	exceptions, nextToken, err := h.exceptionService.ListOpenExceptions(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, logger, err, "list exceptions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExceptionsResponse(exceptions, nextToken, time.Now()))
}

// resolveException godoc
// @Summary Resolve an exception
// @Description Marks the exception resolved; when it was the last one the document leaves EXCEPTION
// @Tags exceptions
// @Accept  json
// @Produce  json
// @Param   id path string true "Exception ID"
// @Param   resolution body dto.ResolveExceptionRequest true "Resolution note"
// @Success 204 "Resolved"
// @Failure 400 {object} map[string]string "Blank note or already resolved"
// @Failure 404 {object} map[string]string "Exception not found"
// @Security BearerAuth
// @Router /exceptions/{id}/resolve [post]
func (h *exceptionHandler) resolveException(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ResolveExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.exceptionService.ResolveException(c.Request.Context(), c.Param("id"), req.Resolution, userID); err != nil {
		handleServiceError(c, logger, err, "resolve exception")
		return
	}
	c.Status(http.StatusNoContent)
}

// assignException godoc
// @Summary Assign an exception owner
// @Tags exceptions
// @Accept  json
// @Param   id path string true "Exception ID"
// @Param   assignment body dto.AssignExceptionRequest true "Owner"
// @Success 204 "Assigned"
// @Security BearerAuth
// @Router /exceptions/{id}/assign [post]
func (h *exceptionHandler) assignException(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AssignExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.exceptionService.AssignException(c.Request.Context(), c.Param("id"), req.OwnerUserID, userID); err != nil {
		handleServiceError(c, logger, err, "assign exception")
		return
	}
	c.Status(http.StatusNoContent)
}
