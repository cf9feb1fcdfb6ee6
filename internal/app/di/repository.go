// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	usersadapters "blog_backend/internal/feature/users/adapters"
	"blog_backend/internal/feature/users/usecase"
	"blog_backend/internal/platform/cache"
)

// NewUserRepository creates the profile/follow repository.
// If Redis is available, profiles are read through a Redis cache.
// Otherwise, every read goes to the database.
func NewUserRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.UserRepository {
	repo := usersadapters.NewProfileRepository(db)
	if rdb != nil {
		return cache.NewCachingProfileRepository(rdb, ttl, repo, "profiles")
	}
	return repo
}
