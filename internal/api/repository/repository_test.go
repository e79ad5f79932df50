package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"yamdb/database"
	"yamdb/internal/api/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RepositorySuite struct {
	suite.Suite
	ctx context.Context
	db  *gorm.DB

	users      UserRepository
	categories CategoryRepository
	genres     GenreRepository
	titles     TitleRepository
	reviews    ReviewRepository
	comments   CommentRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()

	db, err := database.OpenSQLite(filepath.Join(s.T().TempDir(), "yamdb_test.db"), nil)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db, zerolog.Nop()))
	s.db = db

	s.users = NewUserRepository(db)
	s.categories = NewCategoryRepository(db)
	s.genres = NewGenreRepository(db)
	s.titles = NewTitleRepository(db)
	s.reviews = NewReviewRepository(db)
	s.comments = NewCommentRepository(db)
}

func (s *RepositorySuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *RepositorySuite) createUser(username string) *models.User {
	u := &models.User{Username: username, Email: username + "@example.com"}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u
}

func (s *RepositorySuite) createCategory(slug string) *models.Category {
	c := &models.Category{Taxon: models.Taxon{Name: "Category " + slug, Slug: slug}}
	s.Require().NoError(s.categories.Create(s.ctx, c))
	return c
}

func (s *RepositorySuite) createGenre(slug string) *models.Genre {
	g := &models.Genre{Taxon: models.Taxon{Name: "Genre " + slug, Slug: slug}}
	s.Require().NoError(s.genres.Create(s.ctx, g))
	return g
}

func (s *RepositorySuite) createTitle(name string, year int, category *models.Category, genres ...models.Genre) *models.Title {
	t := &models.Title{Name: name, Year: year, Genres: genres}
	if category != nil {
		t.CategoryID = &category.ID
	}
	s.Require().NoError(s.titles.Create(s.ctx, t))
	return t
}

func (s *RepositorySuite) createReview(author *models.User, title *models.Title, score int) *models.Review {
	r := &models.Review{Text: "review by " + author.Username, AuthorID: author.ID, TitleID: title.ID, Score: score}
	s.Require().NoError(s.reviews.Create(s.ctx, r))
	return r
}

func (s *RepositorySuite) createComment(author *models.User, review *models.Review) *models.Comment {
	c := &models.Comment{Text: "comment", AuthorID: author.ID, TitleID: review.TitleID, ReviewID: review.ID}
	s.Require().NoError(s.comments.Create(s.ctx, c))
	return c
}

func (s *RepositorySuite) count(model any) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Count(&n).Error)
	return n
}

func (s *RepositorySuite) TestUser_CreateDefaultsRole() {
	u := s.createUser("alice")

	got, err := s.users.GetByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
	s.Equal(models.RoleUser, got.Role)
}

func (s *RepositorySuite) TestUser_NotFound() {
	_, err := s.users.GetByUsername(s.ctx, "ghost")
	s.True(errors.Is(err, gorm.ErrRecordNotFound))

	_, err = s.users.GetByEmail(s.ctx, "ghost@example.com")
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *RepositorySuite) TestUser_ListSearch() {
	s.createUser("alice")
	s.createUser("bob")
	s.createUser("Alina")

	users, total, err := s.users.List(s.ctx, "ali", 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(users, 2)
	s.Equal("alice", users[0].Username)

	users, total, err = s.users.List(s.ctx, "", 1, 1)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(users, 1)
	s.Equal("bob", users[0].Username)
}

func (s *RepositorySuite) TestUser_UpdateKeepsCode() {
	u := s.createUser("alice")
	s.Require().NoError(s.users.SetConfirmationCode(s.ctx, u.ID, "hash"))

	u.Bio = "hello"
	u.Role = models.RoleModerator
	s.Require().NoError(s.users.Update(s.ctx, u))

	got, err := s.users.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("hello", got.Bio)
	s.Equal(models.RoleModerator, got.Role)
	s.Equal("hash", got.ConfirmationCode)
}

func (s *RepositorySuite) TestUser_DeleteCascades() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	title := s.createTitle("Dune", 1965, nil)

	aliceReview := s.createReview(alice, title, 8)
	bobReview := s.createReview(bob, title, 6)
	s.createComment(bob, aliceReview)
	s.createComment(alice, bobReview)
	keep := s.createComment(bob, bobReview)

	s.Require().NoError(s.users.Delete(s.ctx, alice.ID))

	s.Equal(int64(1), s.count(&models.Review{}))
	s.Equal(int64(1), s.count(&models.Comment{}))
	_, err := s.comments.GetByID(s.ctx, bobReview.ID, keep.ID)
	s.NoError(err)

	err = s.users.Delete(s.ctx, alice.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *RepositorySuite) TestTaxonomy_SearchAndDuplicate() {
	s.createCategory("books")
	s.createCategory("films")

	list, total, err := s.categories.List(s.ctx, "BOOK", 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("books", list[0].Slug)

	err = s.categories.Create(s.ctx, &models.Category{Taxon: models.Taxon{Name: "again", Slug: "books"}})
	s.Error(err)
}

func (s *RepositorySuite) TestCategory_DeleteNullsTitles() {
	books := s.createCategory("books")
	title := s.createTitle("Dune", 1965, books)

	s.Require().NoError(s.categories.Delete(s.ctx, "books"))

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Nil(got.CategoryID)
	s.Nil(got.Category)

	err = s.categories.Delete(s.ctx, "books")
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *RepositorySuite) TestGenre_DeleteUnlinks() {
	scifi := s.createGenre("sci-fi")
	drama := s.createGenre("drama")
	title := s.createTitle("Dune", 1965, nil, *scifi, *drama)

	s.Require().NoError(s.genres.Delete(s.ctx, "sci-fi"))

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Genres, 1)
	s.Equal("drama", got.Genres[0].Slug)
}

func (s *RepositorySuite) TestGenre_GetBySlugs() {
	s.createGenre("sci-fi")
	s.createGenre("drama")

	got, err := s.genres.GetBySlugs(s.ctx, []string{"drama", "missing"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("drama", got[0].Slug)
}

func (s *RepositorySuite) TestTitle_CreateAndGet() {
	books := s.createCategory("books")
	scifi := s.createGenre("sci-fi")
	title := s.createTitle("Dune", 1965, books, *scifi)

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Equal("Dune", got.Name)
	s.Require().NotNil(got.Category)
	s.Equal("books", got.Category.Slug)
	s.Require().Len(got.Genres, 1)
	s.Equal("sci-fi", got.Genres[0].Slug)
}

func (s *RepositorySuite) TestTitle_ListFilters() {
	books := s.createCategory("books")
	films := s.createCategory("films")
	scifi := s.createGenre("sci-fi")
	drama := s.createGenre("drama")

	s.createTitle("Dune", 1965, books, *scifi)
	s.createTitle("Dune", 2021, films, *scifi, *drama)
	s.createTitle("Amadeus", 1984, films, *drama)

	tests := []struct {
		name   string
		filter TitleFilter
		want   int64
	}{
		{"All", TitleFilter{}, 3},
		{"NameSubstring", TitleFilter{Name: "dun"}, 2},
		{"Year", TitleFilter{Year: intPtr(1984)}, 1},
		{"Category", TitleFilter{Category: "film"}, 2},
		{"Genre", TitleFilter{Genre: "drama"}, 2},
		{"Combined", TitleFilter{Name: "dune", Genre: "drama"}, 1},
		{"NoMatch", TitleFilter{Name: "zzz"}, 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			list, total, err := s.titles.List(s.ctx, tt.filter, 0, 10)
			s.Require().NoError(err)
			s.Equal(tt.want, total)
			s.Len(list, int(tt.want))
		})
	}
}

func (s *RepositorySuite) TestTitle_UpdateReplacesGenres() {
	books := s.createCategory("books")
	scifi := s.createGenre("sci-fi")
	drama := s.createGenre("drama")
	title := s.createTitle("Dune", 1965, books, *scifi)

	title.Name = "Dune Messiah"
	title.CategoryID = nil
	title.Genres = []models.Genre{*drama}
	s.Require().NoError(s.titles.Update(s.ctx, title, true))

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Equal("Dune Messiah", got.Name)
	s.Nil(got.Category)
	s.Require().Len(got.Genres, 1)
	s.Equal("drama", got.Genres[0].Slug)
}

func (s *RepositorySuite) TestTitle_DeleteCascades() {
	alice := s.createUser("alice")
	scifi := s.createGenre("sci-fi")
	dune := s.createTitle("Dune", 1965, nil, *scifi)
	other := s.createTitle("Amadeus", 1984, nil, *scifi)

	review := s.createReview(alice, dune, 9)
	s.createComment(alice, review)
	otherReview := s.createReview(alice, other, 5)
	s.createComment(alice, otherReview)

	s.Require().NoError(s.titles.Delete(s.ctx, dune.ID))

	_, err := s.titles.GetByID(s.ctx, dune.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
	s.Equal(int64(1), s.count(&models.Review{}))
	s.Equal(int64(1), s.count(&models.Comment{}))
	s.Equal(int64(1), s.count(&models.TitleGenre{}))
	s.Equal(int64(1), s.count(&models.Genre{}))

	err = s.titles.Delete(s.ctx, dune.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *RepositorySuite) TestTitle_Scores() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	dune := s.createTitle("Dune", 1965, nil)
	empty := s.createTitle("Amadeus", 1984, nil)
	s.createReview(alice, dune, 4)
	s.createReview(bob, dune, 9)

	scores, err := s.titles.Scores(s.ctx, []uint{dune.ID, empty.ID})
	s.Require().NoError(err)
	s.ElementsMatch([]int{4, 9}, scores[dune.ID])
	s.Empty(scores[empty.ID])
}

func (s *RepositorySuite) TestReview_UniquePerAuthorAndTitle() {
	alice := s.createUser("alice")
	dune := s.createTitle("Dune", 1965, nil)
	s.createReview(alice, dune, 7)

	exists, err := s.reviews.Exists(s.ctx, alice.ID, dune.ID)
	s.Require().NoError(err)
	s.True(exists)

	err = s.reviews.Create(s.ctx, &models.Review{Text: "again", AuthorID: alice.ID, TitleID: dune.ID, Score: 3})
	s.Error(err)
}

func (s *RepositorySuite) TestReview_ScopedToTitle() {
	alice := s.createUser("alice")
	dune := s.createTitle("Dune", 1965, nil)
	other := s.createTitle("Amadeus", 1984, nil)
	review := s.createReview(alice, dune, 7)

	got, err := s.reviews.GetByID(s.ctx, dune.ID, review.ID)
	s.Require().NoError(err)
	s.Equal("alice", got.Author.Username)
	s.False(got.PubDate.IsZero())

	_, err = s.reviews.GetByID(s.ctx, other.ID, review.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *RepositorySuite) TestReview_UpdateKeepsPubDate() {
	alice := s.createUser("alice")
	dune := s.createTitle("Dune", 1965, nil)
	review := s.createReview(alice, dune, 7)

	before, err := s.reviews.GetByID(s.ctx, dune.ID, review.ID)
	s.Require().NoError(err)

	before.Text = "changed"
	before.Score = 10
	s.Require().NoError(s.reviews.Update(s.ctx, before))

	after, err := s.reviews.GetByID(s.ctx, dune.ID, review.ID)
	s.Require().NoError(err)
	s.Equal("changed", after.Text)
	s.Equal(10, after.Score)
	s.True(before.PubDate.Equal(after.PubDate))
}

func (s *RepositorySuite) TestReview_DeleteCascades() {
	alice := s.createUser("alice")
	dune := s.createTitle("Dune", 1965, nil)
	review := s.createReview(alice, dune, 7)
	s.createComment(alice, review)
	s.createComment(alice, review)

	s.Require().NoError(s.reviews.Delete(s.ctx, review.ID))
	s.Equal(int64(0), s.count(&models.Comment{}))
}

func (s *RepositorySuite) TestComment_ListAndScope() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	dune := s.createTitle("Dune", 1965, nil)
	review := s.createReview(alice, dune, 7)
	otherReview := s.createReview(bob, dune, 3)

	first := s.createComment(alice, review)
	s.createComment(bob, review)
	s.createComment(bob, otherReview)

	list, total, err := s.comments.ListByReview(s.ctx, review.ID, 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Equal("alice", list[0].Author.Username)
	s.Equal("bob", list[1].Author.Username)

	_, err = s.comments.GetByID(s.ctx, otherReview.ID, first.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))

	first.Text = "edited"
	s.Require().NoError(s.comments.Update(s.ctx, first))
	got, err := s.comments.GetByID(s.ctx, review.ID, first.ID)
	s.Require().NoError(err)
	s.Equal("edited", got.Text)

	s.Require().NoError(s.comments.Delete(s.ctx, first.ID))
	s.True(errors.Is(s.comments.Delete(s.ctx, first.ID), gorm.ErrRecordNotFound))
}

func intPtr(v int) *int {
	return &v
}
