package services

import (
	"errors"
	"fmt"
)

// Not-found sentinels, mapped to 404 by the HTTP layer
var (
	ErrFormNotFound       = errors.New("feedback form not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	// A mentor submitting for a mentee they were never paired with. The
	// original surfaced this as not-found, not as forbidden.
	ErrNotAssigned = errors.New("no assignment exists for this mentee, mentor and event")
)

// Business rule sentinels, mapped to 400
var (
	// ErrFormLocked guards forms that already collected submissions. Admins
	// cannot bypass it; editing questions under live answers corrupts reports.
	ErrFormLocked = errors.New("form has submissions and can no longer be edited")

	// ErrFormInUse guards forms still bound to events.
	ErrFormInUse = errors.New("form is used by one or more events and cannot be deleted")

	// ErrLastAdmin guards the admin role of the sole remaining admin.
	ErrLastAdmin = errors.New("cannot remove the admin role from the last admin")

	ErrRoleMismatch     = errors.New("user does not hold the required role")
	ErrExtractionFailed = errors.New("could not extract questions from image")
)

// PermissionError describes a denied operation. The HTTP layer maps it to 403.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is (or wraps) a PermissionError
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
