package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	usersadapters "blog_backend/internal/feature/users/adapters"
	usersusecase "blog_backend/internal/feature/users/usecase"
	"blog_backend/internal/platform/cache"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
	infraredis "blog_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))

	gdb, err := db.Open(db.LoadConfig(cfg.Database))
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}
	uc := usersusecase.NewReconcileUsecase(usersadapters.NewGraphReconciler(gdb))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := uc.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// 補正した件数はキャッシュ済みプロフィールにも反映させる
	if report.Changed() && cfg.Redis.Enabled() {
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Println("[WARN] Redis unavailable. Cached profiles were not invalidated:", err)
		} else {
			defer rdb.Close()
			c := cache.NewCachingProfileRepository(rdb, cfg.Redis.CacheTTL, nil, "")
			if err := c.InvalidateAll(ctx); err != nil {
				log.Println("[WARN] failed to invalidate cached profiles:", err)
			}
		}
	}
	log.Println("reconcile ok")
}
