// Package entity はusersフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Follow は FollowerID が FolloweeID をフォローしていることを表すエッジです。
// 1行で両側の関係（フォロワー側とフォロー側）を表すため、片側だけが更新されることはありません。
type Follow struct {
	FollowerID string `gorm:"primaryKey;size:36"`
	FolloweeID string `gorm:"primaryKey;size:36;index"`
	CreatedAt  time.Time
}

// FollowCounts は follow/unfollow 後の件数です。
// FollowersCount は対象ユーザーのフォロワー数、FollowingCount は操作したユーザーのフォロー数です。
type FollowCounts struct {
	FollowersCount int64
	FollowingCount int64
}
