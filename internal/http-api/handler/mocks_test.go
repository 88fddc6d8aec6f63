package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RequestConfirmationCode(ctx context.Context, email, username string) (*dto.SignupResponse, error) {
	args := m.Called(ctx, email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SignupResponse), args.Error(1)
}

func (m *MockAuthService) ExchangeCodeForToken(ctx context.Context, username, code string) (*dto.TokenResponse, error) {
	args := m.Called(ctx, username, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

// Authenticate recognises three fixed bearer tokens: "user", "moderator" and
// "admin". Anything else is rejected.
func (m *MockAuthService) Authenticate(ctx context.Context, token string) (policy.Actor, error) {
	switch token {
	case "user":
		return policy.Authenticated(1, "alice", models.RoleUser, false), nil
	case "moderator":
		return policy.Authenticated(2, "mod", models.RoleModerator, false), nil
	case "admin":
		return policy.Authenticated(3, "root", models.RoleAdmin, false), nil
	}
	return policy.Anonymous(), apperror.ErrUnauthenticated
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, actor policy.Actor, username string, page repository.Pagination) ([]dto.UserResponse, int64, error) {
	args := m.Called(ctx, actor, username, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.UserResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) CreateUser(ctx context.Context, actor policy.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, actor policy.Actor, username string) (*dto.UserResponse, error) {
	args := m.Called(ctx, actor, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, actor policy.Actor, username string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, actor, username, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actor policy.Actor, username string) error {
	args := m.Called(ctx, actor, username)
	return args.Error(0)
}

func (m *MockUserService) Me(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) UpdateMe(ctx context.Context, actor policy.Actor, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context, search string, page repository.Pagination) ([]dto.ClassifierResponse, int64, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.ClassifierResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryService) Get(ctx context.Context, slug string) (*dto.ClassifierResponse, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClassifierResponse), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateClassifierRequest) (*dto.ClassifierResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClassifierResponse), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, actor policy.Actor, slug string, req *dto.UpdateClassifierRequest) (*dto.ClassifierResponse, error) {
	args := m.Called(ctx, actor, slug, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClassifierResponse), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, actor policy.Actor, slug string) error {
	args := m.Called(ctx, actor, slug)
	return args.Error(0)
}

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, filter dto.TitleFilter, page repository.Pagination) ([]dto.TitleResponse, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.TitleResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page repository.Pagination) ([]dto.ReviewResponse, int64, error) {
	args := m.Called(ctx, titleID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.ReviewResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, actor policy.Actor, titleID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req *dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	args := m.Called(ctx, actor, titleID, reviewID)
	return args.Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) List(ctx context.Context, titleID, reviewID int64, page repository.Pagination) ([]dto.CommentResponse, int64, error) {
	args := m.Called(ctx, titleID, reviewID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.CommentResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	args := m.Called(ctx, titleID, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, commentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error {
	args := m.Called(ctx, actor, titleID, reviewID, commentID)
	return args.Error(0)
}

func setupRouter(t *testing.T, svc Services) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if svc.Auth == nil {
		svc.Auth = new(MockAuthService)
	}
	router, err := NewRouter(svc, RouterOptions{})
	require.NoError(t, err)
	return router
}

// doRequest sends body as JSON (when non-nil) with an optional bearer token.
func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type jsonBody = map[string]any
