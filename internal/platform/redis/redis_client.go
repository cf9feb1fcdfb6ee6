// Package redis はプロフィールキャッシュ用のRedisクライアントを生成します。
package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/platform/config"
)

// ErrNotConfigured は REDIS_HOST が未設定の場合に返されます。
var ErrNotConfigured = errors.New("redis is not configured")

const pingTimeout = 3 * time.Second

// NewRedisClient は設定からクライアントを生成し、疎通確認を行います。
// 呼び出し側はエラー時にキャッシュなしで起動を続けられます。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
