package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportingHandler handles HTTP requests for the dashboard and reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// registerReportingRoutes registers routes related to reporting.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	{
		reports.GET("/kpis", h.kpiSummary)
		reports.GET("/spend-by-vendor", h.spendByVendor)
		reports.GET("/spend-by-vendor/export", h.exportSpendByVendor)
	}
}

// kpiSummary godoc
// @Summary Dashboard KPI summary
// @Description Headline counts and cycle metrics for documents uploaded since the given time (default last 30 days)
// @Tags reports
// @Produce  json
// @Param   since query string false "RFC 3339 window start"
// @Success 200 {object} domain.KPISummary
// @Security BearerAuth
// @Router /reports/kpis [get]
func (h *reportingHandler) kpiSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	since := time.Now().AddDate(0, 0, -30)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since parameter, expected RFC 3339"})
			return
		}
		since = parsed
	}

	summary, err := h.reportingService.KPISummary(c.Request.Context(), since)
	if err != nil {
		handleServiceError(c, logger, err, "compute KPI summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// spendByVendor godoc
// @Summary Posted spend per vendor
// @Tags reports
// @Produce  json
// @Param   from query string false "RFC 3339 window start (default last 30 days)"
// @Param   to query string false "RFC 3339 window end (default now)"
// @Success 200 {array} domain.VendorSpendRow
// @Security BearerAuth
// @Router /reports/spend-by-vendor [get]
func (h *reportingHandler) spendByVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := h.bindWindow(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.SpendByVendor(c.Request.Context(), from, to)
	if err != nil {
		handleServiceError(c, logger, err, "compute spend by vendor")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// exportSpendByVendor godoc
// @Summary Export posted spend per vendor as xlsx
// @Tags reports
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   from query string false "RFC 3339 window start (default last 30 days)"
// @Param   to query string false "RFC 3339 window end (default now)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/spend-by-vendor/export [get]
func (h *reportingHandler) exportSpendByVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := h.bindWindow(c)
	if !ok {
		return
	}

	workbook, err := h.reportingService.ExportSpendByVendorXLSX(c.Request.Context(), from, to)
	if err != nil {
		handleServiceError(c, logger, err, "export spend by vendor")
		return
	}

	filename := "spend-by-vendor-" + to.Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// bindWindow parses the optional from/to query window, answering 400 itself
// on malformed timestamps.
func (h *reportingHandler) bindWindow(c *gin.Context) (time.Time, time.Time, bool) {
	from := time.Now().AddDate(0, 0, -30)
	to := time.Now()

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from parameter, expected RFC 3339"})
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to parameter, expected RFC 3339"})
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	return from, to, true
}
