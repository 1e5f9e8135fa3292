package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/invoxel/ap_console_app/cmd/docs"
	"github.com/invoxel/ap_console_app/internal/apperrors"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/middleware"
	"github.com/invoxel/ap_console_app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	extractionClient portssvc.ExtractionClient,
) {
	registerCustomValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Register public authentication routes
	registerAuthRoutes(r, services)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, extractionClient)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	extractionClient portssvc.ExtractionClient,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Delegate route registration to specific handlers, passing required services
	registerDocumentRoutes(v1, services.Document, services.Exception, services.Approval, services.Sync, extractionClient)
	registerExceptionRoutes(v1, services.Exception)
	registerApprovalRoutes(v1, services.Approval)
	registerVendorRoutes(v1, services.Vendor)
	registerUserRoutes(v1, services.User)
	registerReportingRoutes(v1, services.Reporting)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// handleServiceError maps service errors onto HTTP statuses. Every handler
// funnels its service failures through here so the mapping stays in one place.
func handleServiceError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Concurrent modification conflict", slog.String("action", action))
		c.JSON(http.StatusConflict, gin.H{"error": "The document was modified concurrently, reload and retry"})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		logger.Warn("Invalid lifecycle transition", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		logger.Warn("Unauthorized", slog.String("action", action))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("action", action))
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrExternalService):
		logger.Error("External service failure", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service failure"})
	default:
		logger.Error("Unexpected service error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// requireUserID pulls the authenticated user from the request context,
// answering 401 itself when missing.
func requireUserID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
