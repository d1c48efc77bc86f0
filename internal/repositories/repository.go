package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates all sub-repository interfaces
type Repository interface {
	// User domain
	User() UserRepository

	// Form domain
	Form() FormRepository

	// Event domain
	Event() EventRepository

	// Assignment domain
	Assignment() AssignmentRepository

	// Submission domain
	Submission() SubmissionRepository

	// Report domain (read-only aggregates)
	Report() ReportRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
