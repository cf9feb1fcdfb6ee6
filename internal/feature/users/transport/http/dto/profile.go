// Package dto はusersフィーチャーのエンティティをAPIレスポンスへ変換します。
package dto

import (
	"blog_backend/internal/api"
	"blog_backend/internal/feature/users/domain/entity"
)

// FromProfile はプロフィールをレスポンスに変換します。
// includeEmail が false の場合はメールアドレスを含めません。
func FromProfile(p *entity.Profile, includeEmail bool) api.ProfileResponse {
	res := api.ProfileResponse{
		UserResponse: api.UserResponse{
			ID:             p.ID,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			IsAdmin:        p.IsAdmin,
			FollowersCount: p.FollowersCount,
			FollowingCount: p.FollowingCount,
			CreatedAt:      p.CreatedAt,
		},
		Followers: nonNil(p.Followers),
		Following: nonNil(p.Following),
	}
	if includeEmail {
		res.Email = p.Email
	}
	return res
}

// FromFollowCounts は follow/unfollow のレスポンスを組み立てます。
func FromFollowCounts(message string, c entity.FollowCounts) api.FollowResponse {
	return api.FollowResponse{
		Message:        message,
		FollowersCount: c.FollowersCount,
		FollowingCount: c.FollowingCount,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
