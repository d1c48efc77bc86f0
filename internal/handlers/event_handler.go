package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/services"
)

type EventHandler struct {
	BaseHandler
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		BaseHandler:  NewBaseHandler(logger),
		eventService: eventService,
	}
}

// CreateEvent creates an event bound to a feedback form
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req services.CreateEventRequest
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

	event, err := h.eventService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetEvent retrieves an event with organizer, form and counts
func (h *EventHandler) GetEvent(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	event, err := h.eventService.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdateEvent edits event metadata and dates. The form binding is fixed.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req services.UpdateEventRequest
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

	event, err := h.eventService.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event together with its assignments and submissions
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Event deleted"})
}

// ListEvents lists events; ?mine=true restricts to the caller's own
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parseLimitOffset(c)
	filters := repositories.EventFilters{
		Query:  c.Query("query"),
		Limit:  limit,
		Offset: offset,
	}
	if c.Query("mine") == "true" {
		filters.OrganizerID = &userID
	}

	events, err := h.eventService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
