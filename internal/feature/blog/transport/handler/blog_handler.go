// Package handler はblogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/transport/http/dto"
	"blog_backend/internal/feature/blog/usecase"
	"blog_backend/internal/platform/http/httperr"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/principal"
)

// BlogUsecase は投稿・いいね・コメント操作のユースケースを定義します。
type BlogUsecase interface {
	CreatePost(ctx context.Context, authorID string, in usecase.CreatePostInput) (*entity.Post, error)
	GetPost(ctx context.Context, id string) (*entity.Post, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	DeletePost(ctx context.Context, actor principal.Principal, postID string) error
	ListAuthorPosts(ctx context.Context, authorID, excludeID string) ([]entity.Post, error)
	ListPosts(ctx context.Context) ([]entity.Post, error)
	Like(ctx context.Context, actorID, postID string) (entity.LikeState, error)
	Unlike(ctx context.Context, actorID, postID string) (entity.LikeState, error)
	AddComment(ctx context.Context, actorID, postID, text string) (*entity.Comment, error)
	ListComments(ctx context.Context, postID string) ([]entity.Comment, error)
	ListRecentComments(ctx context.Context) ([]entity.Comment, error)
	DeleteComment(ctx context.Context, actor principal.Principal, postID, commentID string) error
}

// BlogHandler は投稿関連のHTTPリクエストを処理します。
type BlogHandler struct {
	blog BlogUsecase
}

// NewBlogHandler はBlogHandlerの新しいインスタンスを生成します。
func NewBlogHandler(blog BlogUsecase) *BlogHandler {
	return &BlogHandler{blog: blog}
}

func currentPrincipal(c *gin.Context, op string) (principal.Principal, bool) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		httperr.Abort(c, op, jwtmw.ErrNoToken)
		return principal.Principal{}, false
	}
	return p, true
}

// postID はパスパラメータ :id を投稿IDとして取り出します。不正な場合は400で中断します。
func postID(c *gin.Context, op string) (string, bool) {
	id, err := api.BindID(c, "id")
	if err != nil {
		httperr.BadRequest(c, op, "Invalid post ID", err)
		return "", false
	}
	return id, true
}

// CreatePost は POST /blog を処理します。
func (h *BlogHandler) CreatePost(c *gin.Context) {
	p, ok := currentPrincipal(c, "create post")
	if !ok {
		return
	}
	var req api.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "create post", "Invalid request body", err)
		return
	}

	post, err := h.blog.CreatePost(c.Request.Context(), p.ID, usecase.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		httperr.Abort(c, "create post", err)
		return
	}
	slog.Info("post created", "post_id", post.ID, "author_id", p.ID)
	c.JSON(http.StatusCreated, dto.FromPost(post))
}

// GetPost は GET /blog/:id を処理します。閲覧数を1増やしてから返します。
func (h *BlogHandler) GetPost(c *gin.Context) {
	id, ok := postID(c, "get post")
	if !ok {
		return
	}
	post, err := h.blog.GetPost(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, "get post", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromPost(post))
}

// IncrementViews は PATCH /blog/:id/views を処理します。
func (h *BlogHandler) IncrementViews(c *gin.Context) {
	id, ok := postID(c, "increment views")
	if !ok {
		return
	}
	views, err := h.blog.IncrementViews(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, "increment views", err)
		return
	}
	c.JSON(http.StatusOK, api.ViewsResponse{Views: views})
}

// DeletePost は DELETE /blog/:id を処理します。
// - 作成者・管理者以外は403
// - いいねとコメントも合わせて削除
func (h *BlogHandler) DeletePost(c *gin.Context) {
	p, ok := currentPrincipal(c, "delete post")
	if !ok {
		return
	}
	id, ok := postID(c, "delete post")
	if !ok {
		return
	}
	if err := h.blog.DeletePost(c.Request.Context(), p, id); err != nil {
		httperr.Abort(c, "delete post", err)
		return
	}
	slog.Info("post deleted", "post_id", id, "user_id", p.ID, "admin", p.IsAdmin)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Post deleted successfully"})
}

// ListAuthorPosts は GET /users/:id/posts を処理します。?exclude= で1件を除外できます。
func (h *BlogHandler) ListAuthorPosts(c *gin.Context) {
	authorID, err := api.BindID(c, "id")
	if err != nil {
		httperr.BadRequest(c, "list author posts", "Invalid user ID", err)
		return
	}
	excludeID, err := api.BindOptionalQueryID(c, "exclude")
	if err != nil {
		httperr.BadRequest(c, "list author posts", "Invalid exclude ID", err)
		return
	}

	posts, err := h.blog.ListAuthorPosts(c.Request.Context(), authorID, excludeID)
	if err != nil {
		httperr.Abort(c, "list author posts", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromPosts(posts))
}

// ListPosts は GET /blog/all を処理します。
func (h *BlogHandler) ListPosts(c *gin.Context) {
	posts, err := h.blog.ListPosts(c.Request.Context())
	if err != nil {
		httperr.Abort(c, "list posts", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromPosts(posts))
}

// Like は POST /blog/:id/like を処理します。
func (h *BlogHandler) Like(c *gin.Context) {
	p, ok := currentPrincipal(c, "like post")
	if !ok {
		return
	}
	id, ok := postID(c, "like post")
	if !ok {
		return
	}
	state, err := h.blog.Like(c.Request.Context(), p.ID, id)
	if err != nil {
		httperr.Abort(c, "like post", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLikeState(state))
}

// Unlike は POST /blog/:id/unlike を処理します。
func (h *BlogHandler) Unlike(c *gin.Context) {
	p, ok := currentPrincipal(c, "unlike post")
	if !ok {
		return
	}
	id, ok := postID(c, "unlike post")
	if !ok {
		return
	}
	state, err := h.blog.Unlike(c.Request.Context(), p.ID, id)
	if err != nil {
		httperr.Abort(c, "unlike post", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLikeState(state))
}

// AddComment は POST /blog/:id/comments を処理します。
func (h *BlogHandler) AddComment(c *gin.Context) {
	p, ok := currentPrincipal(c, "add comment")
	if !ok {
		return
	}
	id, ok := postID(c, "add comment")
	if !ok {
		return
	}
	var req api.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "add comment", "Invalid request body", err)
		return
	}

	comment, err := h.blog.AddComment(c.Request.Context(), p.ID, id, req.Text)
	if err != nil {
		httperr.Abort(c, "add comment", err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromComment(comment))
}

// ListComments は GET /blog/:id/comments を処理します。
func (h *BlogHandler) ListComments(c *gin.Context) {
	id, ok := postID(c, "list comments")
	if !ok {
		return
	}
	comments, err := h.blog.ListComments(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, "list comments", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromComments(comments))
}

// ListRecentComments は GET /blog/comments/all を処理します。
func (h *BlogHandler) ListRecentComments(c *gin.Context) {
	comments, err := h.blog.ListRecentComments(c.Request.Context())
	if err != nil {
		httperr.Abort(c, "list recent comments", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromComments(comments))
}

// DeleteComment は DELETE /blog/:id/comments/:commentId を処理します。
// コメントの作成者・管理者以外は403で、コメントは削除されません。
func (h *BlogHandler) DeleteComment(c *gin.Context) {
	p, ok := currentPrincipal(c, "delete comment")
	if !ok {
		return
	}
	id, ok := postID(c, "delete comment")
	if !ok {
		return
	}
	commentID, err := api.BindID(c, "commentId")
	if err != nil {
		httperr.BadRequest(c, "delete comment", "Invalid comment ID", err)
		return
	}

	if err := h.blog.DeleteComment(c.Request.Context(), p, id, commentID); err != nil {
		httperr.Abort(c, "delete comment", err)
		return
	}
	slog.Info("comment deleted", "post_id", id, "comment_id", commentID, "user_id", p.ID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Comment deleted successfully"})
}
