package dto

import "yamdb/internal/http-api/models"

// CreateUserRequest is used by admins to provision accounts
type CreateUserRequest struct {
	Username  string      `json:"username" binding:"required,max=150,username"`
	Email     string      `json:"email" binding:"required,email,max=254"`
	FirstName string      `json:"first_name" binding:"max=150"`
	LastName  string      `json:"last_name" binding:"max=150"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest holds a partial update; nil fields are left untouched
type UpdateUserRequest struct {
	Username  *string      `json:"username" binding:"omitempty,max=150,username"`
	Email     *string      `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string      `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// Changes returns the column updates carried by the request.
func (r *UpdateUserRequest) Changes() map[string]any {
	changes := make(map[string]any)
	if r.Username != nil {
		changes["username"] = *r.Username
	}
	if r.Email != nil {
		changes["email"] = *r.Email
	}
	if r.FirstName != nil {
		changes["first_name"] = *r.FirstName
	}
	if r.LastName != nil {
		changes["last_name"] = *r.LastName
	}
	if r.Bio != nil {
		changes["bio"] = *r.Bio
	}
	if r.Role != nil {
		changes["role"] = *r.Role
	}
	return changes
}

type UserResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func FromModelToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
