package service

import (
	"context"
	"net/http"

	"yamdb/internal/api/access"
	"yamdb/internal/api/dto"
	"yamdb/internal/api/models"
	"yamdb/internal/api/repository"
	"yamdb/internal/api/validation"
)

const duplicateReviewMessage = "You have already reviewed this title."

type ReviewService interface {
	List(ctx context.Context, titleID uint, page dto.Pagination) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID uint) (*models.Review, error)
	Create(ctx context.Context, actor *models.User, titleID uint, req dto.ReviewCreateRequest) (*models.Review, error)
	Update(ctx context.Context, actor *models.User, titleID, reviewID uint, req dto.ReviewUpdateRequest) (*models.Review, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID uint) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID uint) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID uint, page dto.Pagination) ([]models.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page.Offset(), page.PageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err)
	}
	return review, nil
}

// Create allows one review per author and title.
func (s *reviewService) Create(ctx context.Context, actor *models.User, titleID uint, req dto.ReviewCreateRequest) (*models.Review, error) {
	if err := accessError(access.Check(actor, http.MethodPost, access.Review)); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.Exists(ctx, actor.ID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fieldError(validation.NonFieldErrors, duplicateReviewMessage)
	}

	review := &models.Review{
		Text:     req.Text,
		Score:    *req.Score,
		AuthorID: actor.ID,
		TitleID:  titleID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		// lost a race with a concurrent create
		if isDuplicate(err) {
			return nil, fieldError(validation.NonFieldErrors, duplicateReviewMessage)
		}
		return nil, err
	}
	review.Author = *actor
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, actor *models.User, titleID, reviewID uint, req dto.ReviewUpdateRequest) (*models.Review, error) {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := accessError(access.CheckObject(actor, http.MethodPatch, access.Review, owns(actor, review.AuthorID))); err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actor *models.User, titleID, reviewID uint) error {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := accessError(access.CheckObject(actor, http.MethodDelete, access.Review, owns(actor, review.AuthorID))); err != nil {
		return err
	}
	return notFound(s.reviewRepo.Delete(ctx, review.ID))
}
