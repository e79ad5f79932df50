package main

import (
	"context"
	"fmt"
	"os"

	"yamdb/database"
	"yamdb/internal/api/repository"
	"yamdb/internal/api/service"
	"yamdb/internal/config"
	"yamdb/internal/logging"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// bootstrap loads and validates the configuration, builds the logger and
// opens the migrated database. Callers close the returned DB.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, *database.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	db, err := database.Connect(ctx, cfg, logging.For(log, "database"))
	if err != nil {
		return nil, log, nil, err
	}
	if err := database.Migrate(db.Gorm, log); err != nil {
		db.Close()
		return nil, log, nil, err
	}
	return cfg, log, db, nil
}

// repositories groups the gorm repositories shared by the services
type repositories struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	titles     repository.TitleRepository
	reviews    repository.ReviewRepository
	comments   repository.CommentRepository
}

func newRepositories(db *gorm.DB) repositories {
	return repositories{
		users:      repository.NewUserRepository(db),
		categories: repository.NewCategoryRepository(db),
		genres:     repository.NewGenreRepository(db),
		titles:     repository.NewTitleRepository(db),
		reviews:    repository.NewReviewRepository(db),
		comments:   repository.NewCommentRepository(db),
	}
}

func (r repositories) userService() service.UserService {
	return service.NewUserService(r.users)
}
