package service

import (
	"context"
	"errors"
	"testing"

	"yamdb/internal/api/dto"
	"yamdb/internal/api/models"
	"yamdb/internal/api/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	alice = &models.User{ID: 1, Username: "alice", Role: models.RoleUser}
	bob   = &models.User{ID: 2, Username: "bob", Role: models.RoleUser}
	mod   = &models.User{ID: 3, Username: "mod", Role: models.RoleModerator}
	root  = &models.User{ID: 4, Username: "root", Role: models.RoleAdmin}
)

func newReviewFixture() (*MockReviewRepository, *MockTitleRepository, ReviewService) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	return reviews, titles, NewReviewService(reviews, titles)
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()
	reviews, titles, svc := newReviewFixture()

	titles.On("GetByID", ctx, uint(1)).Return(&models.Title{ID: 1}, nil)
	reviews.On("Exists", ctx, alice.ID, uint(1)).Return(false, nil)
	reviews.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.AuthorID == alice.ID && r.TitleID == 1 && r.Score == 10
	})).Return(nil)

	got, err := svc.Create(ctx, alice, 1, dto.ReviewCreateRequest{Text: "great", Score: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author.Username)
}

func TestReviewService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("PreCheck", func(t *testing.T) {
		reviews, titles, svc := newReviewFixture()
		titles.On("GetByID", ctx, uint(1)).Return(&models.Title{ID: 1}, nil)
		reviews.On("Exists", ctx, alice.ID, uint(1)).Return(true, nil)

		_, err := svc.Create(ctx, alice, 1, dto.ReviewCreateRequest{Text: "again", Score: intPtr(5)})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{duplicateReviewMessage}, verr.Fields[validation.NonFieldErrors])
		reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UniqueIndex", func(t *testing.T) {
		reviews, titles, svc := newReviewFixture()
		titles.On("GetByID", ctx, uint(1)).Return(&models.Title{ID: 1}, nil)
		reviews.On("Exists", ctx, alice.ID, uint(1)).Return(false, nil)
		reviews.On("Create", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := svc.Create(ctx, alice, 1, dto.ReviewCreateRequest{Text: "race", Score: intPtr(5)})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, validation.NonFieldErrors)
	})
}

func TestReviewService_CreateRequiresUserAndTitle(t *testing.T) {
	ctx := context.Background()
	reviews, titles, svc := newReviewFixture()
	titles.On("GetByID", ctx, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(ctx, nil, 1, dto.ReviewCreateRequest{Text: "x", Score: intPtr(5)})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Create(ctx, alice, 9, dto.ReviewCreateRequest{Text: "x", Score: intPtr(5)})
	assert.ErrorIs(t, err, ErrNotFound)
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_UpdatePermissions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		actor *models.User
		want  error
	}{
		{"Author", alice, nil},
		{"Stranger", bob, ErrForbidden},
		{"Moderator", mod, nil},
		{"Admin", root, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews, _, svc := newReviewFixture()
			review := &models.Review{ID: 5, TitleID: 1, AuthorID: alice.ID, Author: *alice, Text: "old", Score: 3}
			reviews.On("GetByID", ctx, uint(1), uint(5)).Return(review, nil)
			reviews.On("Update", ctx, review).Return(nil)

			got, err := svc.Update(ctx, tt.actor, 1, 5, dto.ReviewUpdateRequest{Score: intPtr(9)})
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 9, got.Score)
			assert.Equal(t, "old", got.Text)
		})
	}
}

func TestReviewService_DeleteByModerator(t *testing.T) {
	ctx := context.Background()
	reviews, _, svc := newReviewFixture()
	reviews.On("GetByID", ctx, uint(1), uint(5)).Return(&models.Review{ID: 5, TitleID: 1, AuthorID: alice.ID}, nil)
	reviews.On("Delete", ctx, uint(5)).Return(nil)

	require.NoError(t, svc.Delete(ctx, mod, 1, 5))
	reviews.AssertExpectations(t)
}

func TestReviewService_WrongTitle(t *testing.T) {
	ctx := context.Background()
	reviews, _, svc := newReviewFixture()
	reviews.On("GetByID", ctx, uint(2), uint(5)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(ctx, 2, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
