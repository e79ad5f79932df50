package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/api/models"
	"yamdb/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const sqliteScheme = "sqlite://"

// DB bundles the gorm handle with the pgx pool it runs on. Pool is nil for
// sqlite databases.
type DB struct {
	Pool *pgxpool.Pool
	Gorm *gorm.DB
}

// Connect opens the database named by DATABASE_URL. postgres:// URLs go
// through a pgx pool; sqlite://<path> opens a local file for development.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*DB, error) {
	gormLogger := NewGormLogger(log, cfg.IsDevelopment())

	if path, ok := strings.CutPrefix(cfg.DatabaseURL, sqliteScheme); ok {
		gdb, err := OpenSQLite(path, gormLogger)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Msg("Connected to the sqlite database")
		return &DB{Gorm: gdb}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDBFromPool(pool),
	}), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	log.Info().Msg("Connected to the database successfully")
	return &DB{Pool: pool, Gorm: gdb}, nil
}

// OpenSQLite opens (or creates) a sqlite database file using the pure Go
// driver.
func OpenSQLite(path string, gormLogger logger.Interface) (*gorm.DB, error) {
	if gormLogger == nil {
		gormLogger = logger.Discard
	}
	gdb, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	if err := models.SetupJoinTables(db); err != nil {
		return fmt.Errorf("failed to set up join tables: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("Database migrations applied successfully")
	return nil
}

// Ping is used by the health check.
func (d *DB) Ping(ctx context.Context) error {
	if d.Pool != nil {
		return d.Pool.Ping(ctx)
	}
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) Close() {
	if sqlDB, err := d.Gorm.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
}

// NewGormLogger routes gorm's logging through zerolog. Verbose enables
// per-statement logging.
func NewGormLogger(log zerolog.Logger, verbose bool) logger.Interface {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	zl := log.With().Str("component", "gorm").Logger()
	return logger.New(&zl, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
