package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment は投稿へのコメントです。CreatedAt はサーバー側で設定されます。
type Comment struct {
	ID        string `gorm:"primaryKey;size:36"`
	PostID    string `gorm:"size:36;not null;index"`
	AuthorID  string `gorm:"size:36;not null;index"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
