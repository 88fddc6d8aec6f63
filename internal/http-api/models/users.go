package models

import "time"

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

// ReservedUsername is the path segment of the self-service endpoint and can
// never be registered.
const ReservedUsername = "me"

type User struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string    `gorm:"uniqueIndex;not null" json:"username"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName        string    `gorm:"not null;default:''" json:"first_name"`
	LastName         string    `gorm:"not null;default:''" json:"last_name"`
	Bio              string    `gorm:"type:text;not null;default:''" json:"bio"`
	Role             Role      `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	ConfirmationCode string    `gorm:"column:confirmation_code;not null;default:''" json:"-"` // bcrypt hash, never the plain code
	IsActive         bool      `gorm:"not null;default:false" json:"is_active"`
	IsSuperuser      bool      `gorm:"not null;default:false" json:"is_superuser"`
	DateJoined       time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

func (User) TableName() string {
	return "users"
}

// HasPendingCode reports whether a confirmation code was already issued.
func (u *User) HasPendingCode() bool {
	return u.ConfirmationCode != ""
}
