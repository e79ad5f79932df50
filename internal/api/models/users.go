package models

import (
	"time"
)

// Role is the authorization tier of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName   string `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName    string `gorm:"size:150;not null;default:''" json:"last_name"`
	Bio         string `gorm:"type:text;not null;default:''" json:"bio"`
	Role        Role   `gorm:"size:16;not null;default:'user'" json:"role"`
	IsSuperuser bool   `gorm:"not null;default:false" json:"-"`
	// bcrypt hash of the last issued confirmation code, never serialized
	ConfirmationCode string    `gorm:"column:confirmation_code_hash;not null;default:''" json:"-"`
	DateJoined       time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin is true for admins and superusers.
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsSuperuser || u.Role == RoleAdmin)
}

// IsModerator is true for moderators; admins are checked separately.
func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}
