// Package bootstrap wires the process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"boostly/internal/cache"
	"boostly/internal/config"
	"boostly/internal/database"
	"boostly/internal/middleware"
	"boostly/internal/security"
	"boostly/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with generated companies.
	SeedDemo bool
}

// InitRuntime connects to the database and Redis. Redis is optional: a nil
// client is returned when it cannot be reached.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemo {
		if err := seedDemo(context.Background(), cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, rdb, nil
}

// seedDemo only runs in development and only against a database without companies.
func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.Env != "development" {
		return nil
	}

	var companies int64
	if err := db.WithContext(ctx).Table("companies").Count(&companies).Error; err != nil {
		return err
	}
	if companies > 0 {
		return nil
	}

	hasher, err := security.NewPasswordHasher(cfg)
	if err != nil {
		return err
	}

	result, err := seed.NewSeeder(db, hasher).Seed(ctx, seed.Options{
		Companies:       8,
		PostsPerCompany: 4,
		MaxLikesPerPost: 5,
	})
	if err != nil {
		return err
	}
	middleware.Logger.Info("demo data seeded",
		slog.Int("companies", len(result.Companies)),
		slog.Int("posts", len(result.Posts)),
		slog.String("password", seed.DefaultPassword))
	return nil
}
