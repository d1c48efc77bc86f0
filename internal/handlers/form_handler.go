package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/services"
)

type FormHandler struct {
	BaseHandler
	formService services.FormService
}

func NewFormHandler(formService services.FormService, logger *slog.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger),
		formService: formService,
	}
}

// CreateForm creates a new feedback form
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.CreateFormRequest
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

	form, err := h.formService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, form)
}

// GetForm retrieves a feedback form by ID
func (h *FormHandler) GetForm(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	form, err := h.formService.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// UpdateForm edits a feedback form. Forms with submissions are locked.
func (h *FormHandler) UpdateForm(c *gin.Context) {
	var req services.UpdateFormRequest
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

	form, err := h.formService.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// DeleteForm removes a feedback form not referenced by any event
func (h *FormHandler) DeleteForm(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.formService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Form deleted"})
}

// ListForms lists feedback forms; ?mine=true restricts to the caller's own
func (h *FormHandler) ListForms(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parseLimitOffset(c)
	filters := repositories.FormFilters{
		Query:  c.Query("query"),
		Limit:  limit,
		Offset: offset,
	}
	if c.Query("mine") == "true" {
		filters.CreatedBy = &userID
	}

	forms, err := h.formService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, forms)
}

// ExtractQuestions runs OCR over an uploaded form image and returns question
// candidates for review. Nothing is saved.
func (h *FormHandler) ExtractQuestions(c *gin.Context) {
	var req services.ExtractQuestionsRequest
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

	h.LogRequest(c, "Extracting questions from image", "user_id", userID)

	questions, err := h.formService.ExtractFromImage(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: questions})
}
