package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/services"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	importExport      services.ImportExportService
}

func NewAssignmentHandler(assignmentService services.AssignmentService, importExport services.ImportExportService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		importExport:      importExport,
	}
}

// CreateAssignment pairs a mentee and mentor for an event
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.AssignRequest
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

	resp, err := h.assignmentService.Assign(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if !resp.Created {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// BulkAssign processes a batch of email pairs
func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	var req services.BulkAssignRequest
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

	result, err := h.assignmentService.BulkAssign(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportRoster accepts an xlsx upload and bulk-assigns its rows
func (h *AssignmentHandler) ImportRoster(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("roster")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Missing roster file upload",
			Details: err.Error(),
		})
		return
	}

	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to open roster file",
			Details: err.Error(),
		})
		return
	}
	defer reader.Close()

	h.LogRequest(c, "Importing assignment roster", "event_id", c.Param("id"), "filename", file.Filename)

	result, err := h.importExport.ImportAssignments(c.Request.Context(), c.Param("id"), reader, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListEventAssignments lists the assignments of an event
func (h *AssignmentHandler) ListEventAssignments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parseLimitOffset(c)
	filters := repositories.AssignmentFilters{Limit: limit, Offset: offset}

	assignments, err := h.assignmentService.ListForEvent(c.Request.Context(), c.Param("id"), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// ListMyAssignments lists the caller's assignments as a mentor
func (h *AssignmentHandler) ListMyAssignments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parseLimitOffset(c)
	filters := repositories.AssignmentFilters{Limit: limit, Offset: offset}
	if eventID := c.Query("event_id"); eventID != "" {
		filters.EventID = &eventID
	}

	assignments, err := h.assignmentService.ListForMentor(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// RemoveAssignment deletes an assignment
func (h *AssignmentHandler) RemoveAssignment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.assignmentService.Remove(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Assignment removed"})
}

// SearchUsers finds users by name or email for roster building
func (h *AssignmentHandler) SearchUsers(c *gin.Context) {
	if _, ok := h.currentUserID(c); !ok {
		return
	}

	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "query parameter is required",
		})
		return
	}

	limit, _ := h.parseLimitOffset(c)
	users, err := h.assignmentService.SearchUsers(c.Request.Context(), query, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: users})
}

// CheckUserByEmail reports whether an email already has an account
func (h *AssignmentHandler) CheckUserByEmail(c *gin.Context) {
	if _, ok := h.currentUserID(c); !ok {
		return
	}

	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "email parameter is required",
		})
		return
	}

	user, err := h.assignmentService.CheckUserByEmail(c.Request.Context(), email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: user})
}
