// Package bootstrap wires up runtime dependencies for the application commands.
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"zxyspace/internal/cache"
	"zxyspace/internal/config"
	"zxyspace/internal/database"
	"zxyspace/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. The Redis client may be nil
// when the server is unreachable; the application degrades to uncached reads.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, r, nil
}

// ensureDevAdmin creates a local admin account in development so the protected
// taxonomy and user-management routes are reachable out of the box.
func ensureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("username = ?", "admin").First(&admin).Error
		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		admin = models.User{
			Username: "admin",
			Email:    "admin@zxyspace.local",
			Password: string(hash),
			Role:     models.RoleAdmin,
		}
		return tx.Create(&admin).Error
	})
}
