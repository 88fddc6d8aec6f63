package service

import (
	"context"
	"fmt"
	"strings"

	"yamdb/internal/auth"
	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/mail"
)

const confirmationSubject = "Confirmation code"

type AuthService interface {
	RequestConfirmationCode(ctx context.Context, email, username string) (*dto.SignupResponse, error)
	ExchangeCodeForToken(ctx context.Context, username, code string) (*dto.TokenResponse, error)
	// Authenticate resolves a bearer token to the actor it belongs to,
	// reloading the user so role changes apply immediately.
	Authenticate(ctx context.Context, token string) (policy.Actor, error)
}

type authService struct {
	userRepo repository.UserRepository
	mailer   mail.Mailer
	tokens   *auth.TokenIssuer
	mailFrom string

	generateCode func() (string, error)
}

func NewAuthService(userRepo repository.UserRepository, mailer mail.Mailer, tokens *auth.TokenIssuer, mailFrom string) AuthService {
	return &authService{
		userRepo:     userRepo,
		mailer:       mailer,
		tokens:       tokens,
		mailFrom:     mailFrom,
		generateCode: auth.GenerateConfirmationCode,
	}
}

func (s *authService) RequestConfirmationCode(ctx context.Context, email, username string) (*dto.SignupResponse, error) {
	email = strings.TrimSpace(email)
	if username == models.ReservedUsername {
		return nil, apperror.NewValidation("username", `"me" cannot be used as a username`)
	}

	byName, err := s.lookup(s.userRepo.FindByUsername(ctx, username))
	if err != nil {
		return nil, err
	}
	byEmail, err := s.lookup(s.userRepo.FindByEmail(ctx, email))
	if err != nil {
		return nil, err
	}

	// The pair has to be jointly unique: either both halves belong to the
	// same record or neither is taken.
	var existing *models.User
	switch {
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		existing = byName
	case byName != nil || byEmail != nil:
		ve := &apperror.ValidationError{}
		if byName != nil {
			ve.Add("username", "a user with that username already exists")
		}
		if byEmail != nil {
			ve.Add("email", "a user with that email already exists")
		}
		return nil, ve
	}

	if existing != nil && existing.HasPendingCode() {
		return nil, apperror.NewValidation("non_field_errors", "this email and username are already registered")
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}
	hashed, err := auth.HashCode(code)
	if err != nil {
		return nil, err
	}

	deliver := func() error {
		return s.mailer.Send(ctx, mail.Message{
			Subject: confirmationSubject,
			Body:    code,
			From:    s.mailFrom,
			To:      []string{email},
		})
	}

	if existing != nil {
		err = s.userRepo.IssueCode(ctx, existing.ID, hashed, deliver)
	} else {
		err = s.userRepo.CreatePending(ctx, &models.User{
			Username:         username,
			Email:            email,
			Role:             models.RoleUser,
			ConfirmationCode: hashed,
		}, deliver)
	}
	if err != nil {
		return nil, err
	}

	return &dto.SignupResponse{Email: email, Username: username}, nil
}

// lookup turns a not-found result into a nil user.
func (s *authService) lookup(user *models.User, err error) (*models.User, error) {
	if isNotFound(err) {
		return nil, nil
	}
	return user, err
}

func (s *authService) ExchangeCodeForToken(ctx context.Context, username, code string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !user.HasPendingCode() || auth.VerifyCode(user.ConfirmationCode, code) != nil {
		return nil, apperror.NewValidation("confirmation_code", "invalid confirmation code")
	}

	if !user.IsActive {
		if err := s.userRepo.Activate(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &dto.TokenResponse{Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (policy.Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return policy.Anonymous(), fmt.Errorf("%w: %v", apperror.ErrUnauthenticated, err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return policy.Anonymous(), fmt.Errorf("%w: user no longer exists", apperror.ErrUnauthenticated)
		}
		return policy.Anonymous(), err
	}
	return policy.FromUser(user), nil
}
