package service

import (
	"context"
	"errors"

	"yamdb/internal/api/dto"
	"yamdb/internal/api/models"
	"yamdb/internal/api/repository"

	"gorm.io/gorm"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page dto.Pagination) ([]dto.TitleWithRating, int64, error)
	Get(ctx context.Context, id uint) (*dto.TitleWithRating, error)
	Create(ctx context.Context, req dto.TitleCreateRequest) (*dto.TitleWithRating, error)
	Update(ctx context.Context, id uint, req dto.TitleUpdateRequest) (*dto.TitleWithRating, error)
	Delete(ctx context.Context, id uint) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

// MeanScore is the title rating: the arithmetic mean of its review scores, or
// nil when there are none.
func MeanScore(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return &mean
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page dto.Pagination) ([]dto.TitleWithRating, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	scores, err := s.titleRepo.Scores(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.TitleWithRating, 0, len(titles))
	for _, t := range titles {
		out = append(out, dto.TitleWithRating{Title: t, Rating: MeanScore(scores[t.ID])})
	}
	return out, total, nil
}

func (s *titleService) Get(ctx context.Context, id uint) (*dto.TitleWithRating, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	scores, err := s.titleRepo.Scores(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	return &dto.TitleWithRating{Title: *title, Rating: MeanScore(scores[id])}, nil
}

func (s *titleService) Create(ctx context.Context, req dto.TitleCreateRequest) (*dto.TitleWithRating, error) {
	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        *req.Year,
		Description: req.Description,
		CategoryID:  &category.ID,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}
	return s.Get(ctx, title.ID)
}

// Update applies a partial change. Omitted fields keep their values.
func (s *titleService) Update(ctx context.Context, id uint, req dto.TitleUpdateRequest) (*dto.TitleWithRating, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}
	replaceGenres := req.Genre != nil
	if replaceGenres {
		genres, err := s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Update(ctx, title, replaceGenres); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id uint) error {
	return notFound(s.titleRepo.Delete(ctx, id))
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError("category", "Object with slug=%s does not exist.", slug)
		}
		return nil, err
	}
	return category, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	genres, err := s.genreRepo.GetBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) == len(unique) {
		return genres, nil
	}

	found := make(map[string]bool, len(genres))
	for _, g := range genres {
		found[g.Slug] = true
	}
	for _, slug := range unique {
		if !found[slug] {
			return nil, fieldError("genre", "Object with slug=%s does not exist.", slug)
		}
	}
	return genres, nil
}
