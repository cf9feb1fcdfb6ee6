package jwtmw

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/platform/http/httperr"
	"blog_backend/internal/shared/apperr"
	"blog_backend/internal/shared/principal"
)

// ContextPrincipal は認証済みユーザーを保存するgin.Contextのキーです。
const ContextPrincipal = "principal"

var (
	ErrNoToken          = apperr.New(apperr.Auth, "no_token", "No token provided")
	ErrMalformedHeader  = apperr.New(apperr.Auth, "malformed_header", "Malformed authorization header")
	ErrPrincipalMissing = apperr.New(apperr.Auth, "user_not_found", "User not found")
)

// TokenVerifier はトークンからユーザーIDを取り出します。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// PrincipalResolver はユーザーIDを認証済みユーザーに解決します。
// ユーザーが存在しない場合は apperr.NotFound 種別のエラーを返します。
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (principal.Principal, error)
}

// AuthRequired は認証必須ルート用のGinミドルウェアを返します。
// ヘッダーなし、形式不正、トークン不正、ユーザー不在のいずれも401で中断します。
// ユーザーの解決はリクエストごとに1回だけ行い、結果はキャッシュしません。
func AuthRequired(verifier TokenVerifier, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authenticate(c, verifier, resolver)
		if err != nil {
			httperr.Abort(c, "authenticate", err)
			return
		}
		c.Set(ContextPrincipal, p)
		c.Next()
	}
}

// OptionalAuth はAuthorizationヘッダーがない場合は匿名のまま通過させます。
// ヘッダーがある場合は AuthRequired と同じ検証を行います。
func OptionalAuth(verifier TokenVerifier, resolver PrincipalResolver) gin.HandlerFunc {
	required := AuthRequired(verifier, resolver)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		required(c)
	}
}

func authenticate(c *gin.Context, verifier TokenVerifier, resolver PrincipalResolver) (principal.Principal, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return principal.Principal{}, ErrNoToken
	}
	token, ok := BearerToken(header)
	if !ok {
		return principal.Principal{}, ErrMalformedHeader
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		if apperr.KindOf(err) != apperr.Auth {
			return principal.Principal{}, ErrTokenMalformed.Wrap(err)
		}
		return principal.Principal{}, err
	}

	p, err := resolver.ResolvePrincipal(c.Request.Context(), userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return principal.Principal{}, ErrPrincipalMissing.Wrap(err)
		}
		return principal.Principal{}, err
	}
	return p, nil
}

// BearerToken は "Bearer <token>" 形式のヘッダーからトークンを取り出します。
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// PrincipalFrom はミドルウェアが設定した認証済みユーザーを返します。
func PrincipalFrom(c *gin.Context) (principal.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return principal.Principal{}, false
	}
	p, ok := v.(principal.Principal)
	return p, ok
}
