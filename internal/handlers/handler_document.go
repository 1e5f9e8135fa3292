package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
)

// maxUploadBytes caps the multipart upload body.
const maxUploadBytes = 20 << 20

// documentHandler handles HTTP requests related to documents.
type documentHandler struct {
	documentService  portssvc.DocumentSvcFacade
	exceptionService portssvc.ExceptionSvcFacade
	approvalService  portssvc.ApprovalSvcFacade
	syncService      portssvc.SyncSvcFacade
	extractionClient portssvc.ExtractionClient
}

// registerDocumentRoutes registers routes related to documents.
func registerDocumentRoutes(
	rg *gin.RouterGroup,
	documentService portssvc.DocumentSvcFacade,
	exceptionService portssvc.ExceptionSvcFacade,
	approvalService portssvc.ApprovalSvcFacade,
	syncService portssvc.SyncSvcFacade,
	extractionClient portssvc.ExtractionClient,
) {
	h := &documentHandler{
		documentService:  documentService,
		exceptionService: exceptionService,
		approvalService:  approvalService,
		syncService:      syncService,
		extractionClient: extractionClient,
	}

	documents := rg.Group("/documents")
	{
		documents.POST("", h.createDocument)
		documents.POST("/upload", h.uploadDocument)
		documents.GET("", h.listDocuments)
		documents.GET("/:id", h.getDocumentByID)
		documents.PATCH("/:id", h.updateDocument)
		documents.POST("/:id/transition", h.transitionDocument)
		documents.POST("/:id/assign", h.assignDocument)
		documents.POST("/:id/comments", h.addComment)
		documents.GET("/:id/audit", h.getAuditTrail)
		documents.GET("/:id/exceptions", h.getDocumentExceptions)
		documents.POST("/:id/submit", h.submitForApproval)
		documents.POST("/:id/post", h.postToERP)
		documents.POST("/:id/resync", h.resync)
	}
}

// createDocument godoc
// @Summary Create a document from a pre-computed extraction payload
// @Description Seeds a document, applies vendor auto-coding and runs the exception checks
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   document body dto.CreateDocumentRequest true "Extraction payload"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /documents [post]
func (h *documentHandler) createDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), req.ToExtractionResult(), userID)
	if err != nil {
		handleServiceError(c, logger, err, "create document")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// uploadDocument godoc
// @Summary Upload a document file for extraction
// @Description Runs the uploaded file through the extraction collaborator and creates a document from the result
// @Tags documents
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "Invoice or bill (PDF or image)"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid upload"
// @Failure 502 {object} map[string]string "Extraction failed"
// @Security BearerAuth
// @Router /documents/upload [post]
func (h *documentHandler) uploadDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Missing file in upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the upload size limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	extraction, err := h.extractionClient.Extract(c.Request.Context(), content, mimeType)
	if err != nil {
		handleServiceError(c, logger, err, "extract document")
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), *extraction, userID)
	if err != nil {
		handleServiceError(c, logger, err, "create document")
		return
	}

	logger.Info("Document created from upload",
		slog.String("document_id", doc.DocumentID),
		slog.String("filename", fileHeader.Filename),
	)
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List documents
// @Description Retrieves a filtered, token-paginated page of documents, newest uploads first
// @Tags documents
// @Produce  json
// @Param   status query string false "Filter by lifecycle status"
// @Param   vendorID query string false "Filter by vendor"
// @Param   assignedTo query string false "Filter by assignee"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListDocumentsResponse
// @Security BearerAuth
// @Router /documents [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	docs, nextToken, err := h.documentService.ListDocuments(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, logger, err, "list documents")
		return
	}
	c.JSON(http.StatusOK, dto.ToListDocumentsResponse(docs, nextToken))
}

// getDocumentByID godoc
// @Summary Get a document
// @Description Retrieves a document with its line items, extracted fields and comments
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *documentHandler) getDocumentByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "get document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// updateDocument godoc
// @Summary Edit document fields
// @Description Applies field edits, appending one audit entry per changed field
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   document body dto.UpdateDocumentRequest true "Fields to edit"
// @Success 200 {object} dto.DocumentResponse
// @Failure 409 {object} map[string]string "Concurrent modification"
// @Failure 422 {object} map[string]string "Document is terminal"
// @Security BearerAuth
// @Router /documents/{id} [patch]
func (h *documentHandler) updateDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	doc, err := h.documentService.UpdateDocument(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "update document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// transitionDocument godoc
// @Summary Move a document through its lifecycle
// @Description Transitions the document to the target status if the lifecycle permits it
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   transition body dto.TransitionDocumentRequest true "Target status"
// @Success 200 {object} dto.DocumentResponse
// @Failure 422 {object} map[string]string "Transition not permitted"
// @Security BearerAuth
// @Router /documents/{id}/transition [post]
func (h *documentHandler) transitionDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransitionDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	doc, err := h.documentService.TransitionDocument(c.Request.Context(), c.Param("id"), req.TargetStatus, userID)
	if err != nil {
		handleServiceError(c, logger, err, "transition document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// assignDocument godoc
// @Summary Assign a reviewer
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   assignment body dto.AssignDocumentRequest true "Assignee"
// @Success 200 {object} dto.DocumentResponse
// @Security BearerAuth
// @Router /documents/{id}/assign [post]
func (h *documentHandler) assignDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AssignDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	doc, err := h.documentService.AssignDocument(c.Request.Context(), c.Param("id"), req.AssigneeUserID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "assign document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// addComment godoc
// @Summary Add a comment
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   comment body dto.AddCommentRequest true "Comment text"
// @Success 201 {object} domain.Comment
// @Security BearerAuth
// @Router /documents/{id}/comments [post]
func (h *documentHandler) addComment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	comment, err := h.documentService.AddComment(c.Request.Context(), c.Param("id"), req.Text, userID)
	if err != nil {
		handleServiceError(c, logger, err, "add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// getAuditTrail godoc
// @Summary Get the audit trail
// @Description Returns all audit entries for a document, oldest first
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {array} domain.AuditEntry
// @Security BearerAuth
// @Router /documents/{id}/audit [get]
func (h *documentHandler) getAuditTrail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entries, err := h.documentService.GetAuditTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "get audit trail")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// getDocumentExceptions godoc
// @Summary List a document's exceptions
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {array} dto.ExceptionResponse
// @Security BearerAuth
// @Router /documents/{id}/exceptions [get]
func (h *documentHandler) getDocumentExceptions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	exceptions, err := h.exceptionService.GetExceptionsForDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "list document exceptions")
		return
	}

	now := time.Now()
	out := make([]dto.ExceptionResponse, len(exceptions))
	for i := range exceptions {
		out[i] = dto.ToExceptionResponse(&exceptions[i], now)
	}
	c.JSON(http.StatusOK, out)
}

// submitForApproval godoc
// @Summary Submit a document for approval
// @Description Evaluates the routing rules and creates the approval record
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 201 {object} dto.ApprovalResponse
// @Failure 400 {object} map[string]string "Amount within the auto-approve limit"
// @Failure 422 {object} map[string]string "Document not ready for approval"
// @Security BearerAuth
// @Router /documents/{id}/submit [post]
func (h *documentHandler) submitForApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	approval, err := h.approvalService.RouteForApproval(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, logger, err, "submit for approval")
		return
	}
	c.JSON(http.StatusCreated, dto.ToApprovalResponse(approval, time.Now()))
}

// postToERP godoc
// @Summary Post a document to the ERP
// @Description Transmits the document with automatic retries; on success it lands in POSTED
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} domain.SyncResult
// @Failure 422 {object} map[string]string "Document not postable"
// @Security BearerAuth
// @Router /documents/{id}/post [post]
func (h *documentHandler) postToERP(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.syncService.PostDocument(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, logger, err, "post document")
		return
	}
	c.JSON(http.StatusOK, result)
}

// resync godoc
// @Summary Retry posting a document to the ERP
// @Description Performs one manual attempt, independent of the automatic retry counter
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} domain.SyncResult
// @Security BearerAuth
// @Router /documents/{id}/resync [post]
func (h *documentHandler) resync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.syncService.Resync(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, logger, err, "resync document")
		return
	}
	c.JSON(http.StatusOK, result)
}
