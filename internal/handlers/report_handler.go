package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/services"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
	importExport  services.ImportExportService
}

func NewReportHandler(reportService services.ReportService, importExport services.ImportExportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
		importExport:  importExport,
	}
}

// GetSubmissionRates returns the per-event submission rate report
func (h *ReportHandler) GetSubmissionRates(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	report, err := h.reportService.SubmissionRates(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportSubmissionRates streams the rate report as an xlsx download
func (h *ReportHandler) ExportSubmissionRates(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting submission rates", "event_id", c.Param("id"))

	data, filename, err := h.importExport.ExportSubmissionRates(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
