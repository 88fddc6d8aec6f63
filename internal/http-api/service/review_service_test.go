package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

func TestCreateReview(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)
	ctx := context.Background()

	titles.On("Exists", ctx, int64(9)).Return(true, nil)
	reviews.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.TitleID == 9 && r.AuthorID == plainActor.UserID && r.Score == 8
	})).Run(func(args mock.Arguments) {
		r := args.Get(1).(*models.Review)
		r.ID = 1
		r.Author = models.User{Username: "alice"}
		r.PubDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}).Return(nil)

	resp, err := svc.Create(ctx, plainActor, 9, &dto.CreateReviewDTO{Text: "great", Score: 8})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Author)
	assert.Equal(t, int64(1), resp.ID)
	reviews.AssertExpectations(t)
}

func TestCreateReview_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		svc := NewReviewService(new(MockReviewRepository), new(MockTitleRepository))
		_, err := svc.Create(ctx, policy.Anonymous(), 9, &dto.CreateReviewDTO{Text: "x", Score: 5})
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("missing title", func(t *testing.T) {
		titles := new(MockTitleRepository)
		svc := NewReviewService(new(MockReviewRepository), titles)
		titles.On("Exists", ctx, int64(9)).Return(false, nil)

		_, err := svc.Create(ctx, plainActor, 9, &dto.CreateReviewDTO{Text: "x", Score: 5})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("second review", func(t *testing.T) {
		reviews := new(MockReviewRepository)
		titles := new(MockTitleRepository)
		svc := NewReviewService(reviews, titles)
		titles.On("Exists", ctx, int64(9)).Return(true, nil)
		reviews.On("Create", ctx, mock.Anything).
			Return(apperror.NewValidation("non_field_errors", "you have already reviewed this title"))

		_, err := svc.Create(ctx, plainActor, 9, &dto.CreateReviewDTO{Text: "x", Score: 5})
		_, ok := apperror.AsValidation(err)
		assert.True(t, ok)
	})
}

func TestUpdateReview_Permissions(t *testing.T) {
	ctx := context.Background()
	other := policy.Authenticated(50, "bob", models.RoleUser, false)

	tests := []struct {
		name    string
		actor   policy.Actor
		wantErr error
	}{
		{"author", plainActor, nil},
		{"moderator", modActor, nil},
		{"admin", adminActor, nil},
		{"other user", other, apperror.ErrForbidden},
		{"anonymous", policy.Anonymous(), apperror.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(MockReviewRepository)
			svc := NewReviewService(reviews, new(MockTitleRepository))
			review := &models.Review{ID: 3, TitleID: 9, AuthorID: plainActor.UserID, Score: 5}

			reviews.On("Get", ctx, int64(9), int64(3)).Return(review, nil)
			reviews.On("Update", ctx, review, map[string]any{"score": 9}).Return(nil)

			_, err := svc.Update(ctx, tt.actor, 9, 3, &dto.UpdateReviewDTO{Score: intPtr(9)})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				reviews.AssertCalled(t, "Update", ctx, review, map[string]any{"score": 9})
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDeleteReview(t *testing.T) {
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockTitleRepository))
	ctx := context.Background()

	reviews.On("Get", ctx, int64(9), int64(3)).Return(&models.Review{ID: 3, AuthorID: plainActor.UserID}, nil)
	reviews.On("Delete", ctx, int64(3)).Return(nil)

	require.NoError(t, svc.Delete(ctx, plainActor, 9, 3))

	reviews.On("Get", ctx, int64(8), int64(3)).Return(nil, apperror.NotFound("review"))
	assert.ErrorIs(t, svc.Delete(ctx, plainActor, 8, 3), apperror.ErrNotFound)
}

func TestListReviews(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)
	ctx := context.Background()
	page := repository.Pagination{Limit: 10}

	titles.On("Exists", ctx, int64(9)).Return(true, nil)
	reviews.On("List", ctx, int64(9), page).Return([]models.Review{
		{ID: 1, Text: "a", Score: 5, Author: models.User{Username: "alice"}},
		{ID: 2, Text: "b", Score: 7, Author: models.User{Username: "bob"}},
	}, int64(2), nil)

	list, total, err := svc.List(ctx, 9, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "bob", list[1].Author)
}
