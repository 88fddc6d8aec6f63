package service

import (
	"context"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page repository.Pagination) ([]dto.CommentResponse, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// review checks that the review exists under the given title
func (s *commentService) review(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	return s.reviewRepo.Get(ctx, titleID, reviewID)
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page repository.Pagination) ([]dto.CommentResponse, int64, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.commentRepo.List(ctx, reviewID, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(comments, dto.FromModelToCommentResponse), total, nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.Get(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

// Create creates a new comment on a review
func (s *commentService) Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.UserID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

// Update updates an existing comment
func (s *commentService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	comment, err := s.authorize(ctx, actor, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.Update(ctx, comment, text); err != nil {
		return nil, err
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

// Delete deletes a comment
func (s *commentService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.authorize(ctx, actor, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *commentService) authorize(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.Get(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModifyContent(actor, comment.AuthorID); err != nil {
		return nil, err
	}
	return comment, nil
}
