package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/services"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// SubmitFeedback records the caller's feedback for an assigned mentee.
// Resubmitting overwrites the previous answers.
func (h *SubmissionHandler) SubmitFeedback(c *gin.Context) {
	var req services.SubmitFeedbackRequest
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

	resp, err := h.submissionService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetSubmission retrieves one submission for a participant or admin
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.submissionService.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMyFeedback lists the feedback the caller has received as a mentee
func (h *SubmissionHandler) ListMyFeedback(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.submissionService.ListForMentee(c.Request.Context(), userID, h.submissionFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMySubmissions lists the feedback the caller has written as a mentor
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.submissionService.ListForMentor(c.Request.Context(), userID, h.submissionFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) submissionFilters(c *gin.Context) repositories.SubmissionFilters {
	limit, offset := h.parseLimitOffset(c)
	filters := repositories.SubmissionFilters{Limit: limit, Offset: offset}
	if eventID := c.Query("event_id"); eventID != "" {
		filters.EventID = &eventID
	}
	if mentorID := c.Query("mentor_id"); mentorID != "" {
		filters.MentorID = &mentorID
	}
	return filters
}
