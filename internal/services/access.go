package services

import (
	"context"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

// requireUser loads the caller's user row. Every ownership decision starts
// here; a missing row means the auth layer and the database disagree.
func requireUser(ctx context.Context, repo repositories.Repository, userID string) (*models.User, error) {
	user, err := repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// canActOn is the shared ownership rule: the owner of the record, or an
// admin. Role-gating happens at the router; this is the second layer.
func canActOn(user *models.User, ownerID string) bool {
	if user == nil {
		return false
	}
	return user.ID == ownerID || user.IsAdmin()
}
