package entity

import "time"

// Profile はユーザーの公開ビューです。
// Followers と Following は follows テーブルから組み立てたID一覧です。
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	IsAdmin        bool      `json:"is_admin"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileUpdate は PUT /users/me の変更内容です。nil のフィールドは変更しません。
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
}
