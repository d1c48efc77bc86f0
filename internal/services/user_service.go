package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return requireUser(ctx, s.repo, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = req.Name
	}
	if req.CompanyName != nil {
		user.CompanyName = req.CompanyName
	}
	if req.Description != nil {
		user.Description = req.Description
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", "user_id", userID)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filters repositories.UserFilters, callerID string) (*UserListResponse, error) {
	if err := s.requireAdmin(ctx, callerID, "", "list"); err != nil {
		return nil, err
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  pageFromOffset(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}, nil
}

// UpdateRoles replaces the target's role set. Removing the admin role from
// the last remaining admin is refused; the count runs under row locks inside
// the same transaction as the write.
func (s *userService) UpdateRoles(ctx context.Context, targetID string, req *UpdateRolesRequest, callerID string) (*models.User, error) {
	s.logger.Info("Updating roles", "target_id", targetID, "caller_id", callerID, "roles", req.Roles)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, callerID, targetID, "update_roles"); err != nil {
		return nil, err
	}

	newRoles := make(models.RoleList, 0, len(req.Roles))
	for _, r := range req.Roles {
		newRoles = append(newRoles, models.Role(r))
	}

	var updated *models.User
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		target, err := txRepo.User().GetByID(ctx, nil, targetID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return err
		}

		if target.IsAdmin() && !newRoles.Has(models.RoleAdmin) {
			admins, err := txRepo.User().CountAdminsForUpdate(ctx, nil)
			if err != nil {
				return fmt.Errorf("count admins: %w", err)
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		if err := txRepo.User().UpdateRoles(ctx, nil, targetID, newRoles); err != nil {
			return fmt.Errorf("failed to update roles: %w", err)
		}

		target.Roles = newRoles
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Roles updated", "target_id", targetID)
	return updated, nil
}

func (s *userService) UpdateStatus(ctx context.Context, targetID string, req *UpdateStatusRequest, callerID string) (*models.User, error) {
	s.logger.Info("Updating status", "target_id", targetID, "caller_id", callerID, "status", req.Status)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, callerID, targetID, "update_status"); err != nil {
		return nil, err
	}

	target, err := requireUser(ctx, s.repo, targetID)
	if err != nil {
		return nil, err
	}

	status := models.UserStatus(req.Status)
	if err := s.repo.User().UpdateStatus(ctx, nil, targetID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	target.Status = status
	return target, nil
}

// Provision makes sure a local row exists for an authenticated identity.
// New users start with the plain user role and active status.
func (s *userService) Provision(ctx context.Context, id, email string, name *string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	user = &models.User{
		ID:     id,
		Email:  email,
		Name:   name,
		Roles:  models.RoleList{models.RoleUser},
		Status: models.StatusActive,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	s.logger.Info("User provisioned", "user_id", id, "email", email)
	return user, nil
}

func (s *userService) requireAdmin(ctx context.Context, callerID, resourceID, action string) error {
	caller, err := requireUser(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return NewPermissionError(callerID, resourceID, "user", action, "admin only")
	}
	return nil
}
