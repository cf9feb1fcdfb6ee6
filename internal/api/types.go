// Package api はHTTP APIのリクエスト/レスポンス契約を定義します。
// ハンドラーはこれらの型でのみクライアントとやり取りし、エンティティを直接返しません。
package api

import "time"

// ErrorResponse はすべてのエラーレスポンスのボディです。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse は本文を持たない成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest は POST /users/register のボディです。
// 形式チェックはユースケース側で行い、フィールドごとのメッセージを返します。
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest は POST /users/login のボディです。
// ShortLived が true の場合は有効期限の短いトークンを発行します。
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	ShortLived bool   `json:"short_lived"`
}

// TokenResponse はログイン・リフレッシュ成功時のレスポンスです。
type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user,omitempty"`
}

// UserResponse はユーザーの公開フィールドです。パスワードハッシュは含みません。
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email,omitempty"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name,omitempty"`
	IsAdmin        bool      `json:"is_admin"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileResponse は GET /users/:id と GET /users/me のレスポンスです。
// IsFollowing は認証済みの呼び出し元がいる場合のみ設定されます。
type ProfileResponse struct {
	UserResponse
	Followers   []string `json:"followers"`
	Following   []string `json:"following"`
	IsFollowing *bool    `json:"is_following,omitempty"`
}

// UpdateProfileRequest は PUT /users/me のボディです。nil のフィールドは変更しません。
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// FollowResponse は follow/unfollow 後の件数です。
// FollowersCount は対象ユーザー、FollowingCount は呼び出し元の値です。
type FollowResponse struct {
	Message        string `json:"message"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// CreatePostRequest は POST /blog のボディです。Image は画像の参照のみを受け付けます。
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// PostResponse は投稿のレスポンスです。Comments は単一投稿の取得時のみ含まれます。
type PostResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	AuthorID  string            `json:"author_id"`
	Image     string            `json:"image,omitempty"`
	Views     int64             `json:"views"`
	Likes     int64             `json:"likes"`
	LikedBy   []string          `json:"liked_by"`
	Comments  []CommentResponse `json:"comments,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LikeResponse は like/unlike 後の状態です。Likes は常に len(LikedBy) と一致します。
type LikeResponse struct {
	Likes   int64    `json:"likes"`
	LikedBy []string `json:"liked_by"`
}

// ViewsResponse は PATCH /blog/:id/views 後の閲覧数です。
type ViewsResponse struct {
	Views int64 `json:"views"`
}

// CreateCommentRequest は POST /blog/:id/comments のボディです。
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse はコメントのレスポンスです。
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryRequest はカテゴリの作成・名前変更のボディです。
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse はカテゴリのレスポンスです。
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
