package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// roleContainsArg renders the jsonb array literal for a `roles @>` match.
func roleContainsArg(role models.Role) string {
	return fmt.Sprintf(`[%q]`, string(role))
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return handleDBError(err, "update user")
	}
	return nil
}

func (u *UserPostgreSQL) UpdateRoles(ctx context.Context, tx *gorm.DB, id string, roles models.RoleList) error {
	db := u.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("roles", roles)
	if result.Error != nil {
		return handleDBError(result.Error, "update user roles")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update user roles")
	}
	return nil
}

func (u *UserPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.UserStatus) error {
	db := u.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return handleDBError(result.Error, "update user status")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update user status")
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := u.getDB(tx)
	var users []*models.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, handleDBError(err, "get users by ids")
	}
	return users, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := u.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filters.Role != nil {
		query = query.Where("roles @> ?::jsonb", roleContainsArg(*filters.Role))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = u.helpers.ApplyPaginationAndSort(query, "email", "asc", filters.Limit, filters.Offset)

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (u *UserPostgreSQL) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*models.User, error) {
	db := u.getDB(tx)
	var users []*models.User

	pattern := "%" + query + "%"
	q := db.WithContext(ctx).
		Where("name ILIKE ? OR email ILIKE ?", pattern, pattern).
		Order("email ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&users).Error; err != nil {
		return nil, handleDBError(err, "search users")
	}
	return users, nil
}

func (u *UserPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := u.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user exists")
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := u.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user email exists")
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.Role) (bool, error) {
	db := u.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND roles @> ?::jsonb", id, roleContainsArg(role)).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check user role")
	}
	return count > 0, nil
}

// CountAdminsForUpdate locks every admin row with FOR UPDATE and returns the
// count. Callers run it inside a transaction so concurrent role edits
// serialize on the admin set instead of both seeing two admins.
func (u *UserPostgreSQL) CountAdminsForUpdate(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := u.getDB(tx)
	var ids []string
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("roles @> ?::jsonb", roleContainsArg(models.RoleAdmin)).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, handleDBError(err, "count admins")
	}
	return int64(len(ids)), nil
}
