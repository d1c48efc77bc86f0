package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleMentor    Role = "mentor"
	RoleMentee    Role = "mentee"
	RoleUser      Role = "user"
)

// AllRoles lists every role the system recognizes.
var AllRoles = []Role{RoleAdmin, RoleOrganizer, RoleMentor, RoleMentee, RoleUser}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// RoleList is a user's role set. Membership is multi-valued: an admin can also
// be an organizer and a mentor at the same time. Stored as a JSONB array.
type RoleList []Role

// Has reports whether the set contains the given role.
func (rl RoleList) Has(role Role) bool {
	for _, r := range rl {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the set intersects the required set. An empty
// required set matches nothing.
func (rl RoleList) HasAny(required ...Role) bool {
	for _, r := range required {
		if rl.Has(r) {
			return true
		}
	}
	return false
}

func (rl RoleList) Value() (driver.Value, error) {
	if rl == nil {
		rl = RoleList{}
	}
	return json.Marshal(rl)
}

func (rl *RoleList) Scan(value interface{}) error {
	if value == nil {
		*rl = RoleList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, rl)
	case string:
		return json.Unmarshal([]byte(v), rl)
	default:
		return fmt.Errorf("unsupported role list source type %T", value)
	}
}

type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

type User struct {
	ID    string   `json:"id" gorm:"primaryKey;size:255"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Name  *string  `json:"name" gorm:"size:100"`
	Roles RoleList `json:"roles" gorm:"type:jsonb;not null"`

	Status UserStatus `json:"status" gorm:"not null;default:active;size:20"`

	// Profile info
	CompanyName *string `json:"company_name" gorm:"size:200"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin is shorthand for the admin-override checks in the services.
func (u *User) IsAdmin() bool {
	return u.Roles.Has(RoleAdmin)
}
