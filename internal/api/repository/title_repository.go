package repository

import (
	"context"
	"fmt"

	"yamdb/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows a title listing. Zero values match everything.
type TitleFilter struct {
	Name     string
	Year     *int
	Category string
	Genre    string
}

type TitleRepository interface {
	Create(ctx context.Context, title *models.Title) error
	GetByID(ctx context.Context, id uint) (*models.Title, error)
	List(ctx context.Context, filter TitleFilter, offset, limit int) ([]models.Title, int64, error)
	Update(ctx context.Context, title *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id uint) error
	Scores(ctx context.Context, titleIDs []uint) (map[uint][]int, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// Create inserts the title and links its genres, which must already exist.
func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return err
		}
		if len(title.Genres) > 0 {
			if err := tx.Model(title).Association("Genres").Append(title.Genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *titleRepository) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	var t models.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		First(&t, id).Error
	if err != nil {
		return nil, fmt.Errorf("get title %d: %w", id, err)
	}
	return &t, nil
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, offset, limit int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Title{})
	if filter.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", likePattern(filter.Name))
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}
	if filter.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("LOWER(slug) LIKE ?", likePattern(filter.Category)))
	}
	if filter.Genre != "" {
		q = q.Where("titles.id IN (?)",
			r.db.Model(&models.TitleGenre{}).Select("title_genres.title_id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("LOWER(genres.slug) LIKE ?", likePattern(filter.Genre)))
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}
	err := q.
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		Order("titles.id").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

// Update saves the scalar columns and, if asked, replaces the genre set.
func (r *titleRepository) Update(ctx context.Context, title *models.Title, replaceGenres bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(title).Omit(clause.Associations).
			Select("name", "year", "description", "category_id").
			Updates(title).Error; err != nil {
			return err
		}
		if replaceGenres {
			if err := tx.Model(title).Association("Genres").Replace(title.Genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update title %d: %w", title.ID, err)
	}
	return nil
}

// Delete removes the title, its reviews, their comments and the genre links.
func (r *titleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("title_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete title comments: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete title reviews: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("unlink title genres: %w", err)
		}

		result := tx.Delete(&models.Title{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete title %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete title %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// Scores returns the review scores of each requested title.
func (r *titleRepository) Scores(ctx context.Context, titleIDs []uint) (map[uint][]int, error) {
	out := make(map[uint][]int, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		TitleID uint
		Score   int
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id", "score").
		Where("title_id IN ?", titleIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	for _, row := range rows {
		out[row.TitleID] = append(out[row.TitleID], row.Score)
	}
	return out, nil
}
