package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/services"
	"github.com/mentorlink/feedback-service/internal/validator"
)

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps payloads that carry an extra message
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type BaseHandler struct {
	logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...interface{}) {
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	h.logger.Info(msg, args...)
}

// handleServiceError translates service errors into HTTP responses. Order
// matters: validation errors and permission errors carry their own payloads.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request validation failed",
			Details: verrs,
		})
		return
	}

	if services.IsPermissionError(err) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrFormNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrNotAssigned):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrFormLocked),
		errors.Is(err, services.ErrFormInUse),
		errors.Is(err, services.ErrLastAdmin),
		errors.Is(err, services.ErrRoleMismatch),
		errors.Is(err, services.ErrExtractionFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})

	default:
		h.logger.Error("Unhandled service error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}

// currentUserID reads the authenticated user id set by the auth middleware.
// Writes a 401 and returns false when it is missing.
func (h *BaseHandler) currentUserID(c *gin.Context) (string, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return "", false
	}
	return userID, true
}

func (h *BaseHandler) parseLimitOffset(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
