package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/services"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// GetProfile returns the caller's own profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the caller's own profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers lists users with optional role and query filters (admin only)
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parseLimitOffset(c)
	filters := repositories.UserFilters{
		Query:  c.Query("query"),
		Limit:  limit,
		Offset: offset,
	}
	if role := c.Query("role"); role != "" {
		r := models.Role(role)
		filters.Role = &r
	}

	users, err := h.userService.ListUsers(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateRoles replaces a user's role set (admin only)
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	var req services.UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.UpdateRoles(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateStatus changes a user's status (admin only)
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.UpdateStatus(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
