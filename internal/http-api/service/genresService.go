package service

import (
	"context"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

type GenreService interface {
	List(ctx context.Context, search string, page repository.Pagination) ([]dto.ClassifierResponse, int64, error)
	Get(ctx context.Context, slug string) (*dto.ClassifierResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateClassifierRequest) (*dto.ClassifierResponse, error)
	Update(ctx context.Context, actor policy.Actor, slug string, req *dto.UpdateClassifierRequest) (*dto.ClassifierResponse, error)
	Delete(ctx context.Context, actor policy.Actor, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(r repository.GenreRepository) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page repository.Pagination) ([]dto.ClassifierResponse, int64, error) {
	list, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(list, dto.FromModelToGenreResponse), total, nil
}

func (s *genreService) Get(ctx context.Context, slug string) (*dto.ClassifierResponse, error) {
	g, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToGenreResponse(g)
	return &resp, nil
}

func (s *genreService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateClassifierRequest) (*dto.ClassifierResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	g := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	resp := dto.FromModelToGenreResponse(g)
	return &resp, nil
}

func (s *genreService) Update(ctx context.Context, actor policy.Actor, slug string, req *dto.UpdateClassifierRequest) (*dto.ClassifierResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	g, err := s.repo.Update(ctx, slug, classifierChanges(req))
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToGenreResponse(g)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, actor policy.Actor, slug string) error {
	if err := policy.CanAdminister(actor); err != nil {
		return err
	}
	return s.repo.Delete(ctx, slug)
}
