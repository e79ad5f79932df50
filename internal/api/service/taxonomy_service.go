package service

import (
	"context"
	"errors"

	"yamdb/internal/api/dto"
	"yamdb/internal/api/models"
	"yamdb/internal/api/repository"
	"yamdb/internal/api/validation"

	"gorm.io/gorm"
)

// TaxonomyService manages categories and genres.
type TaxonomyService interface {
	ListCategories(ctx context.Context, search string, page dto.Pagination) ([]models.Category, int64, error)
	CreateCategory(ctx context.Context, req dto.TaxonRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, slug string) error

	ListGenres(ctx context.Context, search string, page dto.Pagination) ([]models.Genre, int64, error)
	CreateGenre(ctx context.Context, req dto.TaxonRequest) (*models.Genre, error)
	DeleteGenre(ctx context.Context, slug string) error
}

type taxonomyService struct {
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewTaxonomyService(categoryRepo repository.CategoryRepository, genreRepo repository.GenreRepository) TaxonomyService {
	return &taxonomyService{categoryRepo: categoryRepo, genreRepo: genreRepo}
}

func (s *taxonomyService) ListCategories(ctx context.Context, search string, page dto.Pagination) ([]models.Category, int64, error) {
	return s.categoryRepo.List(ctx, search, page.Offset(), page.PageSize)
}

func (s *taxonomyService) CreateCategory(ctx context.Context, req dto.TaxonRequest) (*models.Category, error) {
	taxon, err := checkTaxon(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetBySlug(ctx, taxon.Slug); err == nil {
		return nil, fieldError("slug", "category with this slug already exists.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &models.Category{Taxon: taxon}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if isDuplicate(err) {
			return nil, fieldError("slug", "category with this slug already exists.")
		}
		return nil, err
	}
	return category, nil
}

func (s *taxonomyService) DeleteCategory(ctx context.Context, slug string) error {
	return notFound(s.categoryRepo.Delete(ctx, slug))
}

func (s *taxonomyService) ListGenres(ctx context.Context, search string, page dto.Pagination) ([]models.Genre, int64, error) {
	return s.genreRepo.List(ctx, search, page.Offset(), page.PageSize)
}

func (s *taxonomyService) CreateGenre(ctx context.Context, req dto.TaxonRequest) (*models.Genre, error) {
	taxon, err := checkTaxon(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.genreRepo.GetBySlug(ctx, taxon.Slug); err == nil {
		return nil, fieldError("slug", "genre with this slug already exists.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	genre := &models.Genre{Taxon: taxon}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if isDuplicate(err) {
			return nil, fieldError("slug", "genre with this slug already exists.")
		}
		return nil, err
	}
	return genre, nil
}

func (s *taxonomyService) DeleteGenre(ctx context.Context, slug string) error {
	return notFound(s.genreRepo.Delete(ctx, slug))
}

func checkTaxon(req dto.TaxonRequest) (models.Taxon, error) {
	taxon := req.ToTaxon()
	if problems := taxon.Validate(); problems != nil {
		fields := validation.Errors{}
		for field, msg := range problems {
			fields.Add(field, msg)
		}
		return taxon, &ValidationError{Fields: fields}
	}
	return taxon, nil
}
