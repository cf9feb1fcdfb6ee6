// Package entity はblogフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post は投稿です。Likes は post_likes の行数と常に一致します。
type Post struct {
	ID       string `gorm:"primaryKey;size:36"`
	Title    string `gorm:"size:120;not null"`
	Content  string `gorm:"type:text;not null"`
	AuthorID string `gorm:"size:36;not null;index"`
	// Image は画像の参照（URLまたは相対パス）のみを保持します。
	Image string `gorm:"size:512"`
	Views int64  `gorm:"not null;default:0"`
	Likes int64  `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	LikedBy  []string  `gorm:"-"`
	Comments []Comment `gorm:"-"`
}

func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostLike はユーザーが投稿にいいねしたことを表します。複合主キーで重複を防ぎます。
type PostLike struct {
	PostID    string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

// LikeState は like/unlike 後の投稿の状態です。
type LikeState struct {
	Likes   int64
	LikedBy []string
}
