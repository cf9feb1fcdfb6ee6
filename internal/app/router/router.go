package router

import (
	"github.com/gin-gonic/gin"

	authhandler "blog_backend/internal/feature/auth/transport/handler"
	bloghandler "blog_backend/internal/feature/blog/transport/handler"
	categoryhandler "blog_backend/internal/feature/category/transport/handler"
	usershandler "blog_backend/internal/feature/users/transport/handler"
	"blog_backend/internal/platform/http/handler"
)

// NewRouter はすべてのルートを登録したGinエンジンを返します。
// authRequired は認証必須、optionalAuth は任意認証のミドルウェアです。
func NewRouter(authRequired, optionalAuth gin.HandlerFunc, health *handler.HealthHandler,
	auth *authhandler.AuthHandler, users *usershandler.UsersHandler, blog *bloghandler.BlogHandler,
	category *categoryhandler.CategoryHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	// 新規ユーザー登録
	r.POST("/users/register", auth.Register)
	// ログイン（JWT 発行）
	r.POST("/users/login", auth.Login)
	// 期限切れトークンの再発行（ハンドラー内でヘッダーを検証）
	r.POST("/users/refresh-token", auth.RefreshToken)

	r.GET("/users/:id/posts", blog.ListAuthorPosts)
	r.GET("/blog/all", blog.ListPosts)
	r.GET("/blog/comments/all", blog.ListRecentComments)
	r.GET("/blog/:id", blog.GetPost)
	r.PATCH("/blog/:id/views", blog.IncrementViews)
	r.GET("/blog/:id/comments", blog.ListComments)
	r.GET("/category/all", category.List)

	// 認証済みなら is_following を返す
	r.GET("/users/:id", optionalAuth, users.GetProfile)

	// 認証必須のルート
	authed := r.Group("/")
	authed.Use(authRequired)
	{
		authed.GET("/users/me", users.GetMe)
		authed.PUT("/users/me", users.UpdateMe)
		authed.DELETE("/users/me", users.DeleteMe)
		authed.POST("/users/:id/follow", users.Follow)
		authed.POST("/users/:id/unfollow", users.Unfollow)

		authed.POST("/blog", blog.CreatePost)
		authed.DELETE("/blog/:id", blog.DeletePost)
		authed.POST("/blog/:id/like", blog.Like)
		authed.POST("/blog/:id/unlike", blog.Unlike)
		authed.POST("/blog/:id/comments", blog.AddComment)
		authed.DELETE("/blog/:id/comments/:commentId", blog.DeleteComment)

		// カテゴリの変更は管理者のみ（ユースケースで判定）
		authed.POST("/category", category.Create)
		authed.PUT("/category/:id", category.Rename)
		authed.DELETE("/category/:id", category.Delete)
	}

	return r
}
