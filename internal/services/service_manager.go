package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/email"
	"github.com/mentorlink/feedback-service/internal/events"
	"github.com/mentorlink/feedback-service/internal/ocr"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/validator"
)

// ServiceManagerConfig bundles the external dependencies the services need
// beyond the repository.
type ServiceManagerConfig struct {
	Publisher events.EventPublisher
	Email     email.EmailClient
	Extractor ocr.Extractor
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	formService         FormService
	eventService        EventService
	assignmentService   AssignmentService
	submissionService   SubmissionService
	userService         UserService
	reportService       ReportService
	importExportService ImportExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.config.Publisher == nil {
		sm.config.Publisher = events.NewMockEventPublisher(sm.logger)
		sm.logger.Warn("No event publisher configured, using mock publisher")
	}
	if sm.config.Email == nil {
		sm.config.Email = email.NewLogEmailClient(sm.logger)
		sm.logger.Warn("No email client configured, logging emails instead")
	}

	sm.formService = NewFormService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Extractor)
	sm.logger.Info("Form service initialized")

	sm.eventService = NewEventService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Event service initialized")

	sm.assignmentService = NewAssignmentService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Publisher, sm.config.Email)
	sm.logger.Info("Assignment service initialized")

	sm.submissionService = NewSubmissionService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Publisher, sm.config.Email)
	sm.logger.Info("Submission service initialized")

	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("User service initialized")

	sm.reportService = NewReportService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("Report service initialized")

	sm.importExportService = NewImportExportService(sm.assignmentService, sm.reportService, sm.logger)
	sm.logger.Info("ImportExport service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Form() FormService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.formService
}

func (sm *serviceManager) Event() EventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.eventService
}

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.assignmentService
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.submissionService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.importExportService
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.logger.Warn("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")
	return nil
}
