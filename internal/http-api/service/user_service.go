package service

import (
	"context"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

type UserService interface {
	ListUsers(ctx context.Context, actor policy.Actor, username string, page repository.Pagination) ([]dto.UserResponse, int64, error)
	CreateUser(ctx context.Context, actor policy.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, actor policy.Actor, username string) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actor policy.Actor, username string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor policy.Actor, username string) error

	Me(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error)
	// UpdateMe lets anyone edit their own profile; plain users cannot change
	// their role this way.
	UpdateMe(ctx context.Context, actor policy.Actor, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers(ctx context.Context, actor policy.Actor, username string, page repository.Pagination) ([]dto.UserResponse, int64, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.List(ctx, username, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(users, dto.FromModelToUserResponse), total, nil
}

func (s *userService) CreateUser(ctx context.Context, actor policy.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	if req.Username == models.ReservedUsername {
		return nil, apperror.NewValidation("username", `"me" cannot be used as a username`)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) GetUser(ctx context.Context, actor policy.Actor, username string) (*dto.UserResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor policy.Actor, username string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, user.ID, req)
}

func (s *userService) DeleteUser(ctx context.Context, actor policy.Actor, username string) error {
	if err := policy.CanAdminister(actor); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, username)
}

func (s *userService) Me(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, actor policy.Actor, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleUser && !actor.Superuser {
		req.Role = nil
	}
	return s.update(ctx, actor.UserID, req)
}

func (s *userService) update(ctx context.Context, userID int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if req.Username != nil && *req.Username == models.ReservedUsername {
		return nil, apperror.NewValidation("username", `"me" cannot be used as a username`)
	}
	if req.Role != nil && !req.Role.Valid() {
		return nil, apperror.NewValidation("role", "unknown role")
	}

	user, err := s.userRepo.Update(ctx, userID, req.Changes())
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}
