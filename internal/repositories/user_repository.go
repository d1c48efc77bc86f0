package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string       // Search query for name or email
	Role   *models.Role // Only users holding this role
	Limit  int          // Page size
	Offset int          // Offset for pagination
}

// UserRepository interface for user operations. Identity lives in Casdoor;
// this service keeps a local row per user for roles, status and profile.
type UserRepository interface {
	// Provisioning and profile writes
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateRoles(ctx context.Context, tx *gorm.DB, id string, roles models.RoleList) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.UserStatus) error

	// Basic read operations
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error)

	// List and search operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*models.User, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	HasRole(ctx context.Context, tx *gorm.DB, id string, role models.Role) (bool, error)

	// CountAdminsForUpdate counts admin rows while holding row locks, so a
	// role change cannot race another transaction past the last admin.
	CountAdminsForUpdate(ctx context.Context, tx *gorm.DB) (int64, error)
}
