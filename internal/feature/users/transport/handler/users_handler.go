// Package handler はusersフィーチャー（プロフィールとフォロー）のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/users/domain/entity"
	"blog_backend/internal/feature/users/transport/http/dto"
	"blog_backend/internal/feature/users/usecase"
	"blog_backend/internal/platform/http/httperr"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/principal"
)

// UsersUsecase はプロフィールとフォロー操作のユースケースを定義します。
type UsersUsecase interface {
	GetProfile(ctx context.Context, viewerID, targetID string) (*usecase.ProfileView, error)
	GetMe(ctx context.Context, id string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error)
	DeleteAccount(ctx context.Context, id string) error
	Follow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error)
	Unfollow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error)
}

// UsersHandler はプロフィールとフォロー関係のHTTPリクエストを処理します。
type UsersHandler struct {
	users UsersUsecase
}

// NewUsersHandler はUsersHandlerの新しいインスタンスを生成します。
func NewUsersHandler(users UsersUsecase) *UsersHandler {
	return &UsersHandler{users: users}
}

// currentPrincipal は認証必須ルートで設定された呼び出し元を返します。
// ミドルウェアを通っていない場合は401で中断します。
func currentPrincipal(c *gin.Context, op string) (principal.Principal, bool) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		httperr.Abort(c, op, jwtmw.ErrNoToken)
		return principal.Principal{}, false
	}
	return p, true
}

// GetMe は GET /users/me を処理します。自分自身のためメールアドレスを含みます。
func (h *UsersHandler) GetMe(c *gin.Context) {
	p, ok := currentPrincipal(c, "get me")
	if !ok {
		return
	}
	profile, err := h.users.GetMe(c.Request.Context(), p.ID)
	if err != nil {
		httperr.Abort(c, "get me", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProfile(profile, true))
}

// GetProfile は GET /users/:id を処理します。
// 任意認証のルートで、認証済みの場合のみ is_following を返します。
func (h *UsersHandler) GetProfile(c *gin.Context) {
	id, err := api.BindID(c, "id")
	if err != nil {
		httperr.BadRequest(c, "get profile", "Invalid user id", err)
		return
	}

	var viewerID string
	if p, ok := jwtmw.PrincipalFrom(c); ok {
		viewerID = p.ID
	}

	view, err := h.users.GetProfile(c.Request.Context(), viewerID, id)
	if err != nil {
		httperr.Abort(c, "get profile", err)
		return
	}
	res := dto.FromProfile(view.Profile, view.IsSelf)
	res.IsFollowing = view.IsFollowing
	c.JSON(http.StatusOK, res)
}

// UpdateMe は PUT /users/me を処理します。
func (h *UsersHandler) UpdateMe(c *gin.Context) {
	p, ok := currentPrincipal(c, "update profile")
	if !ok {
		return
	}
	var req api.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "update profile", "Invalid request body", err)
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), p.ID, entity.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httperr.Abort(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProfile(profile, true))
}

// DeleteMe は DELETE /users/me を処理します。
// 投稿・いいね・コメント・フォロー関係も合わせて削除されます。
func (h *UsersHandler) DeleteMe(c *gin.Context) {
	p, ok := currentPrincipal(c, "delete account")
	if !ok {
		return
	}
	if err := h.users.DeleteAccount(c.Request.Context(), p.ID); err != nil {
		httperr.Abort(c, "delete account", err)
		return
	}
	slog.Info("account deleted", "user_id", p.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Account deleted successfully"})
}

// Follow は POST /users/:id/follow を処理します。
// - 自分自身は400、存在しないユーザーは404
// - 既にフォロー済みの場合も200で現在の件数を返却
func (h *UsersHandler) Follow(c *gin.Context) {
	p, ok := currentPrincipal(c, "follow")
	if !ok {
		return
	}
	targetID, err := api.BindID(c, "id")
	if err != nil {
		httperr.BadRequest(c, "follow", "Invalid user id", err)
		return
	}

	counts, err := h.users.Follow(c.Request.Context(), p.ID, targetID)
	if err != nil {
		httperr.Abort(c, "follow", err)
		return
	}
	slog.Info("user followed", "user_id", p.ID, "target_id", targetID)
	c.JSON(http.StatusOK, dto.FromFollowCounts("Successfully followed user", counts))
}

// Unfollow は POST /users/:id/unfollow を処理します。
func (h *UsersHandler) Unfollow(c *gin.Context) {
	p, ok := currentPrincipal(c, "unfollow")
	if !ok {
		return
	}
	targetID, err := api.BindID(c, "id")
	if err != nil {
		httperr.BadRequest(c, "unfollow", "Invalid user id", err)
		return
	}

	counts, err := h.users.Unfollow(c.Request.Context(), p.ID, targetID)
	if err != nil {
		httperr.Abort(c, "unfollow", err)
		return
	}
	slog.Info("user unfollowed", "user_id", p.ID, "target_id", targetID)
	c.JSON(http.StatusOK, dto.FromFollowCounts("Successfully unfollowed user", counts))
}
