package repository

import (
	"context"
	"fmt"

	"yamdb/internal/api/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, search string, offset, limit int) ([]models.Category, int64, error)
	Delete(ctx context.Context, slug string) error
}

type GenreRepository interface {
	Create(ctx context.Context, genre *models.Genre) error
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	List(ctx context.Context, search string, offset, limit int) ([]models.Genre, int64, error)
	Delete(ctx context.Context, slug string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, fmt.Errorf("get category %q: %w", slug, err)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, search string, offset, limit int) ([]models.Category, int64, error) {
	var list []models.Category
	total, err := listTaxa(r.db.WithContext(ctx).Model(&models.Category{}), search, offset, limit, &list)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return list, total, nil
}

// Delete detaches titles from the category before removing it.
func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.Where("slug = ?", slug).First(&c).Error; err != nil {
			return fmt.Errorf("get category %q: %w", slug, err)
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", c.ID).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach titles: %w", err)
		}
		if err := tx.Delete(&c).Error; err != nil {
			return fmt.Errorf("delete category %q: %w", slug, err)
		}
		return nil
	})
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, fmt.Errorf("get genre %q: %w", slug, err)
	}
	return &g, nil
}

// GetBySlugs returns the genres that exist; callers compare lengths to find
// unknown slugs.
func (r *genreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return list, nil
}

func (r *genreRepository) List(ctx context.Context, search string, offset, limit int) ([]models.Genre, int64, error) {
	var list []models.Genre
	total, err := listTaxa(r.db.WithContext(ctx).Model(&models.Genre{}), search, offset, limit, &list)
	if err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}
	return list, total, nil
}

// Delete unlinks the genre from all titles before removing it.
func (r *genreRepository) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Genre
		if err := tx.Where("slug = ?", slug).First(&g).Error; err != nil {
			return fmt.Errorf("get genre %q: %w", slug, err)
		}
		if err := tx.Where("genre_id = ?", g.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("unlink titles: %w", err)
		}
		if err := tx.Delete(&g).Error; err != nil {
			return fmt.Errorf("delete genre %q: %w", slug, err)
		}
		return nil
	})
}

// listTaxa runs the shared search + page query for categories and genres.
func listTaxa(q *gorm.DB, search string, offset, limit int, dest any) (int64, error) {
	var total int64
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := q.Order("id").Limit(limit).Offset(offset).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
