package service

import (
	"context"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page repository.Pagination) ([]dto.ReviewResponse, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor policy.Actor, titleID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req *dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("title")
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page repository.Pagination) ([]dto.ReviewResponse, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviewRepo.List(ctx, titleID, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(reviews, dto.FromModelToReviewResponse), total, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

// Create stamps the actor as author. A second review of the same title by
// that author is rejected by the unique constraint.
func (s *reviewService) Create(ctx context.Context, actor policy.Actor, titleID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req *dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModifyContent(actor, review.AuthorID); err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if req.Text != nil {
		changes["text"] = *req.Text
	}
	if req.Score != nil {
		changes["score"] = *req.Score
	}
	if err := s.reviewRepo.Update(ctx, review, changes); err != nil {
		return nil, err
	}

	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return err
	}
	review, err := s.reviewRepo.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := policy.CanModifyContent(actor, review.AuthorID); err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, review.ID)
}
