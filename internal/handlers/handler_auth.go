package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
)

// authHandler handles credential exchange.
type authHandler struct {
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
}

// registerAuthRoutes registers the public authentication routes. These sit
// outside the authenticated v1 group.
func registerAuthRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	h := &authHandler{userService: services.User, tokenService: services.Token}

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", h.login)
	}
}

// login godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer token
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   credentials body dto.LoginRequest true "Email and password"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, logger, err, "log in")
		return
	}

	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, logger, err, "log in")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        dto.ToUserResponse(user),
	})
}
