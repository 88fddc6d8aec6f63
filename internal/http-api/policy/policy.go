// Package policy decides who may do what. Every check takes an Actor; an
// anonymous actor is always rejected as unauthenticated before any role
// comparison happens.
package policy

import (
	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/models"
)

// Actor is the identity a request acts as.
type Actor struct {
	authenticated bool
	UserID        int64
	Username      string
	Role          models.Role
	Superuser     bool
}

func Anonymous() Actor {
	return Actor{}
}

func Authenticated(userID int64, username string, role models.Role, superuser bool) Actor {
	return Actor{
		authenticated: true,
		UserID:        userID,
		Username:      username,
		Role:          role,
		Superuser:     superuser,
	}
}

// FromUser builds an authenticated actor from a stored user.
func FromUser(u *models.User) Actor {
	return Authenticated(u.ID, u.Username, u.Role, u.IsSuperuser)
}

func (a Actor) IsAuthenticated() bool {
	return a.authenticated
}

// IsAdmin covers the admin role and superusers.
func (a Actor) IsAdmin() bool {
	return a.authenticated && (a.Role == models.RoleAdmin || a.Superuser)
}

func (a Actor) IsModerator() bool {
	return a.authenticated && a.Role == models.RoleModerator
}

func RequireAuthenticated(a Actor) error {
	if !a.IsAuthenticated() {
		return apperror.ErrUnauthenticated
	}
	return nil
}

// CanModifyContent allows the author of a review or comment, moderators and
// admins to edit or delete it.
func CanModifyContent(a Actor, authorID int64) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.UserID == authorID || a.IsModerator() || a.IsAdmin() {
		return nil
	}
	return apperror.ErrForbidden
}

// CanAdminister gates catalogue writes and user management.
func CanAdminister(a Actor) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.IsAdmin() {
		return nil
	}
	return apperror.ErrForbidden
}
