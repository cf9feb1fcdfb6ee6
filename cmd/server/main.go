package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	redisv9 "github.com/redis/go-redis/v9"

	"blog_backend/internal/app/di"
	"blog_backend/internal/app/router"
	authadapters "blog_backend/internal/feature/auth/adapters"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authusecase "blog_backend/internal/feature/auth/usecase"
	blogadapters "blog_backend/internal/feature/blog/adapters"
	bloghandler "blog_backend/internal/feature/blog/transport/handler"
	blogusecase "blog_backend/internal/feature/blog/usecase"
	categoryadapters "blog_backend/internal/feature/category/adapters"
	categoryhandler "blog_backend/internal/feature/category/transport/handler"
	categoryusecase "blog_backend/internal/feature/category/usecase"
	usershandler "blog_backend/internal/feature/users/transport/handler"
	usersusecase "blog_backend/internal/feature/users/usecase"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
	"blog_backend/internal/platform/http/handler"
	jwtmw "blog_backend/internal/platform/jwt"
	infraredis "blog_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.Open(db.LoadConfig(cfg.Database))
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		if !errors.Is(err, infraredis.ErrNotConfigured) {
			slog.Warn("redis unavailable, running without cache", "error", err)
		}
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close redis client", "error", err)
			}
		}()
	}

	tokens, err := jwtmw.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	// Repository
	userRepo := authadapters.NewUserRepository(gdb)
	profileRepo := di.NewUserRepository(rdb, gdb, cfg.Redis.CacheTTL)
	postRepo := blogadapters.NewPostRepository(gdb)
	commentRepo := blogadapters.NewCommentRepository(gdb)
	categoryRepo := categoryadapters.NewCategoryRepository(gdb)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, tokens)
	usersUC := usersusecase.NewUsersUsecase(profileRepo)
	blogUC := blogusecase.NewBlogUsecase(postRepo, commentRepo)
	categoryUC := categoryusecase.NewCategoryUsecase(categoryRepo)

	// Handler
	healthH := handler.NewHealthHandler(sqlDB)
	authH := authhandler.NewAuthHandler(authUC)
	usersH := usershandler.NewUsersHandler(usersUC)
	blogH := bloghandler.NewBlogHandler(blogUC)
	categoryH := categoryhandler.NewCategoryHandler(categoryUC)

	// ルータ生成
	r := router.NewRouter(
		jwtmw.AuthRequired(tokens, authUC),
		jwtmw.OptionalAuth(tokens, authUC),
		healthH, authH, usersH, blogH, categoryH,
	)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		slog.Info("server started", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
