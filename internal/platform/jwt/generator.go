// Package jwtmw はステートレスなBearerトークンの発行・検証と、
// それを使う認証ミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blog_backend/internal/shared/apperr"
)

const (
	// TokenTTL は通常トークンの有効期限です。
	TokenTTL = 24 * time.Hour
	// ShortTokenTTL は短期トークンの有効期限です。
	ShortTokenTTL = time.Hour
)

var (
	// ErrTokenExpired は署名は正しいが有効期限を過ぎたトークンです。
	ErrTokenExpired = apperr.New(apperr.Auth, "token_expired", "Token expired")
	// ErrTokenMalformed は署名または構造が不正なトークンです。
	ErrTokenMalformed = apperr.New(apperr.Auth, "invalid_token", "Invalid token")

	// ErrEmptySecret は署名用シークレットが空の場合に NewTokenService が返します。
	ErrEmptySecret = errors.New("jwt secret must not be empty")
)

// Token は署名済みトークンと発行・失効時刻です。
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService はHS256で署名されたトークンを発行・検証します。
// トークンは保存せず、署名と有効期限のみで有効性を判定します。
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService は TokenTTL と ShortTokenTTL のトークンを発行する TokenService を生成します。
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue は通常の有効期限のトークンを発行します。
func (s *TokenService) Issue(userID string) (Token, error) {
	return s.issue(userID, TokenTTL)
}

// IssueShortLived は短期の有効期限のトークンを発行します。
func (s *TokenService) IssueShortLived(userID string) (Token, error) {
	return s.issue(userID, ShortTokenTTL)
}

func (s *TokenService) issue(userID string, ttl time.Duration) (Token, error) {
	// NumericDate は秒精度なので、返却値とクレームを揃える
	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Token{Value: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返します。
// 期限切れは ErrTokenExpired、それ以外の失敗は ErrTokenMalformed です。
func (s *TokenService) Verify(tokenStr string) (string, error) {
	claims, err := s.parse(tokenStr, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed.Wrap(err)
	}
	return claims.Subject, nil
}

// ParseIgnoringExpiry は有効期限を無視して署名と構造のみを検証します。
// トークンのリフレッシュ以外では使用しないでください。
func (s *TokenService) ParseIgnoringExpiry(tokenStr string) (string, error) {
	claims, err := s.parse(tokenStr, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", ErrTokenMalformed.Wrap(err)
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(tokenStr string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC以外の署名方式は拒否する
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
