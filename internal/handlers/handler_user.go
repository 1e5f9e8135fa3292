package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/middleware"
)

// userHandler handles HTTP requests related to user accounts.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// registerUserRoutes registers routes related to users.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := &userHandler{userService: userService}

	users := rg.Group("/users")
	{
		users.POST("", h.createUser)
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUserByID)
		users.PATCH("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}
}

// createUser godoc
// @Summary Create a user account
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user body dto.CreateUserRequest true "Account details"
// @Success 201 {object} dto.UserResponse
// @Failure 409 {object} map[string]string "Email already registered"
// @Security BearerAuth
// @Router /users [post]
func (h *userHandler) createUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// listUsers godoc
// @Summary List user accounts
// @Tags users
// @Produce  json
// @Param   limit query int false "Page size (default 20)"
// @Param   offset query int false "Rows to skip"
// @Success 200 {array} dto.UserResponse
// @Security BearerAuth
// @Router /users [get]
func (h *userHandler) listUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.userService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		handleServiceError(c, logger, err, "list users")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUsersResponse(users))
}

// getUserByID godoc
// @Summary Get a user account
// @Tags users
// @Produce  json
// @Param   id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *userHandler) getUserByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "get user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateUser godoc
// @Summary Edit a user account
// @Tags users
// @Accept  json
// @Produce  json
// @Param   id path string true "User ID"
// @Param   user body dto.UpdateUserRequest true "Fields to edit"
// @Success 200 {object} dto.UserResponse
// @Security BearerAuth
// @Router /users/{id} [patch]
func (h *userHandler) updateUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "update user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// deleteUser godoc
// @Summary Deactivate a user account
// @Description Soft-deletes the account; users cannot delete themselves
// @Tags users
// @Param   id path string true "User ID"
// @Success 204 "Deleted"
// @Failure 400 {object} map[string]string "Attempted self-deletion"
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *userHandler) deleteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, logger, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
