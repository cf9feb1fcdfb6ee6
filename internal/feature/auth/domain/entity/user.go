// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User はシステムに登録されたユーザーを表します。
// フォロー関係そのものは follows テーブルが持ち、ここには件数のみを保持します。
type User struct {
	// ID はUUID文字列の不透明な識別子です。
	ID string `gorm:"primaryKey;size:36"`

	// Email は小文字化・トリム済みで保存され、大文字小文字を区別せず一意です。
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password はbcryptハッシュです。平文は保存しません。
	Password string `gorm:"size:255;not null"`

	FirstName string `gorm:"size:50;not null"`
	LastName  string `gorm:"size:50"`

	// IsAdmin は他人の投稿やコメントを削除できる権限です。APIからは変更できません。
	IsAdmin bool `gorm:"not null;default:false"`

	FollowersCount int64 `gorm:"not null;default:0"`
	FollowingCount int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate はIDが未設定の場合に新しいUUIDを割り当てます。
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
