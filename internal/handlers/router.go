package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/feedback-service/internal/config"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/services"
)

type HandlerManager struct {
	formHandler       *FormHandler
	eventHandler      *EventHandler
	assignmentHandler *AssignmentHandler
	submissionHandler *SubmissionHandler
	userHandler       *UserHandler
	reportHandler     *ReportHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger *slog.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, serviceManager.User())

	return &HandlerManager{
		formHandler:       NewFormHandler(serviceManager.Form(), logger),
		eventHandler:      NewEventHandler(serviceManager.Event(), logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), serviceManager.ImportExport(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), serviceManager.ImportExport(), logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		organizerOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleOrganizer)
		mentorOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleMentor, models.RoleOrganizer)
		menteeOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleMentee)
		adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

		// Feedback form routes
		forms := v1.Group("/forms")
		{
			forms.POST("", organizerOnly, hm.formHandler.CreateForm)
			forms.PUT("/:id", organizerOnly, hm.formHandler.UpdateForm)
			forms.DELETE("/:id", organizerOnly, hm.formHandler.DeleteForm)
			forms.POST("/extract", organizerOnly, hm.formHandler.ExtractQuestions)

			// View forms - all authenticated users
			forms.GET("", hm.formHandler.ListForms)
			forms.GET("/:id", hm.formHandler.GetForm)
		}

		// Event routes
		events := v1.Group("/events")
		{
			events.POST("", organizerOnly, hm.eventHandler.CreateEvent)
			events.PUT("/:id", organizerOnly, hm.eventHandler.UpdateEvent)
			events.DELETE("/:id", organizerOnly, hm.eventHandler.DeleteEvent)

			events.GET("", hm.eventHandler.ListEvents)
			events.GET("/:id", hm.eventHandler.GetEvent)

			// Roster management - organizers only
			events.GET("/:id/assignments", organizerOnly, hm.assignmentHandler.ListEventAssignments)
			events.POST("/:id/assignments/import", organizerOnly, hm.assignmentHandler.ImportRoster)

			// Reports - organizers only
			events.GET("/:id/reports/submission-rates", organizerOnly, hm.reportHandler.GetSubmissionRates)
			events.GET("/:id/reports/submission-rates/export", organizerOnly, hm.reportHandler.ExportSubmissionRates)
		}

		// Assignment routes
		assignments := v1.Group("/assignments")
		{
			assignments.POST("", organizerOnly, hm.assignmentHandler.CreateAssignment)
			assignments.POST("/bulk", organizerOnly, hm.assignmentHandler.BulkAssign)
			assignments.DELETE("/:id", organizerOnly, hm.assignmentHandler.RemoveAssignment)

			// Mentor's own assignments
			assignments.GET("/my", mentorOnly, hm.assignmentHandler.ListMyAssignments)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.POST("", mentorOnly, hm.submissionHandler.SubmitFeedback)
			submissions.GET("/my", mentorOnly, hm.submissionHandler.ListMySubmissions)
			submissions.GET("/received", menteeOnly, hm.submissionHandler.ListMyFeedback)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetProfile)
			users.PUT("/me", hm.userHandler.UpdateProfile)
			users.GET("/search", organizerOnly, hm.assignmentHandler.SearchUsers)
			users.GET("/check-email", organizerOnly, hm.assignmentHandler.CheckUserByEmail)

			// Administration
			users.GET("", adminOnly, hm.userHandler.ListUsers)
			users.PUT("/:id/roles", adminOnly, hm.userHandler.UpdateRoles)
			users.PUT("/:id/status", adminOnly, hm.userHandler.UpdateStatus)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "feedback-service",
		})
	})
}
