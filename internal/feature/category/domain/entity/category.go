// Package entity はcategoryフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category は投稿の分類です。Name は一意です。
type Category struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:50;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
