// Package dto はauthフィーチャーのエンティティをAPIレスポンスへ変換します。
package dto

import (
	"blog_backend/internal/api"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// FromUser はユーザーを公開レスポンスに変換します。パスワードハッシュは含みません。
func FromUser(u *entity.User) api.UserResponse {
	return api.UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		IsAdmin:        u.IsAdmin,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		CreatedAt:      u.CreatedAt,
	}
}

// FromSession はログイン・リフレッシュの結果をトークンレスポンスに変換します。
func FromSession(s *usecase.Session) api.TokenResponse {
	res := api.TokenResponse{
		Token:     s.Token.Value,
		ExpiresAt: s.Token.ExpiresAt,
	}
	if s.User != nil {
		u := FromUser(s.User)
		res.User = &u
	}
	return res
}
