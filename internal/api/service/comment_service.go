package service

import (
	"context"
	"net/http"

	"yamdb/internal/api/access"
	"yamdb/internal/api/dto"
	"yamdb/internal/api/models"
	"yamdb/internal/api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID uint, page dto.Pagination) ([]models.Comment, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID uint) (*models.Comment, error)
	Create(ctx context.Context, actor *models.User, titleID, reviewID uint, req dto.CommentCreateRequest) (*models.Comment, error)
	Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID uint, req dto.CommentUpdateRequest) (*models.Comment, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID uint) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

// review loads the parent review, which must belong to the addressed title.
func (s *commentService) review(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err)
	}
	return review, nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID uint, page dto.Pagination) ([]models.Comment, int64, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, page.Offset(), page.PageSize)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID uint) (*models.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err)
	}
	return comment, nil
}

func (s *commentService) Create(ctx context.Context, actor *models.User, titleID, reviewID uint, req dto.CommentCreateRequest) (*models.Comment, error) {
	if err := accessError(access.Check(actor, http.MethodPost, access.Comment)); err != nil {
		return nil, err
	}
	review, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     req.Text,
		AuthorID: actor.ID,
		TitleID:  review.TitleID,
		ReviewID: review.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = *actor
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID uint, req dto.CommentUpdateRequest) (*models.Comment, error) {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := accessError(access.CheckObject(actor, http.MethodPatch, access.Comment, owns(actor, comment.AuthorID))); err != nil {
		return nil, err
	}

	if req.Text != nil {
		comment.Text = *req.Text
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID uint) error {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := accessError(access.CheckObject(actor, http.MethodDelete, access.Comment, owns(actor, comment.AuthorID))); err != nil {
		return err
	}
	return notFound(s.commentRepo.Delete(ctx, comment.ID))
}
