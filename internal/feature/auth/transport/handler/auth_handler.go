// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/http/httperr"
	jwtmw "blog_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、パスワードハッシュを除いたユーザーを返します。
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	// Login はユーザーを認証し、成功時にトークンを発行します。
	Login(ctx context.Context, email, password string, shortLived bool) (*usecase.Session, error)
	// Refresh は期限切れでも署名が正しいトークンから新しいトークンを発行します。
	Refresh(ctx context.Context, token string) (*usecase.Session, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - JSONが不正な場合は400を返却
// - 入力検証エラー・メール重複時は400を返却
// - 成功時はパスワードを含まないユーザーと201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "register", "Invalid request body", err)
		return
	}
	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httperr.Abort(c, "register", err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// ユーザー不在とパスワード不一致はどちらも 401 Invalid credentials になります。
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "login", "Email and password are required", err)
		return
	}
	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.ShortLived)
	if err != nil {
		// ユーザー列挙攻撃を防止するため、理由はログにのみ残す
		httperr.Abort(c, "login", err)
		return
	}
	slog.Info("user login successful", "user_id", session.User.ID, "short_lived", req.ShortLived, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.FromSession(session))
}

// RefreshToken は Authorization ヘッダーのトークンを期限を無視して検証し、新しいトークンを返します。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		httperr.Abort(c, "refresh token", jwtmw.ErrNoToken)
		return
	}
	token, ok := jwtmw.BearerToken(header)
	if !ok {
		httperr.Abort(c, "refresh token", jwtmw.ErrMalformedHeader)
		return
	}

	session, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			// 発行後に削除されたアカウントは認証エラーとして扱う
			err = jwtmw.ErrPrincipalMissing.Wrap(err)
		}
		httperr.Abort(c, "refresh token", err)
		return
	}
	slog.Info("token refreshed", "user_id", session.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.FromSession(session))
}
