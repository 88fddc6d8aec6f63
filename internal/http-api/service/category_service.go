package service

import (
	"context"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

type CategoryService interface {
	List(ctx context.Context, search string, page repository.Pagination) ([]dto.ClassifierResponse, int64, error)
	Get(ctx context.Context, slug string) (*dto.ClassifierResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateClassifierRequest) (*dto.ClassifierResponse, error)
	Update(ctx context.Context, actor policy.Actor, slug string, req *dto.UpdateClassifierRequest) (*dto.ClassifierResponse, error)
	Delete(ctx context.Context, actor policy.Actor, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, search string, page repository.Pagination) ([]dto.ClassifierResponse, int64, error) {
	list, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(list, dto.FromModelToCategoryResponse), total, nil
}

func (s *categoryService) Get(ctx context.Context, slug string) (*dto.ClassifierResponse, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToCategoryResponse(c)
	return &resp, nil
}

func (s *categoryService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateClassifierRequest) (*dto.ClassifierResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	c := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.FromModelToCategoryResponse(c)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, actor policy.Actor, slug string, req *dto.UpdateClassifierRequest) (*dto.ClassifierResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	c, err := s.repo.Update(ctx, slug, classifierChanges(req))
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToCategoryResponse(c)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, actor policy.Actor, slug string) error {
	if err := policy.CanAdminister(actor); err != nil {
		return err
	}
	return s.repo.Delete(ctx, slug)
}

func classifierChanges(req *dto.UpdateClassifierRequest) map[string]any {
	changes := make(map[string]any)
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Slug != nil {
		changes["slug"] = *req.Slug
	}
	return changes
}
