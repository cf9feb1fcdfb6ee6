package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

type commentRepository struct {
	db *gorm.DB
}

var _ usecase.CommentRepository = (*commentRepository)(nil)

// NewCommentRepository は指定されたgorm.DB接続でcommentRepositoryを生成します。
func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{db: db}
}

// Add は投稿の存在確認とコメントの挿入を同じトランザクションで行います。
func (r *commentRepository) Add(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, comment.PostID); err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
}

func (r *commentRepository) List(ctx context.Context, postID string) ([]entity.Comment, error) {
	comments := []entity.Comment{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		return tx.Where("post_id = ?", postID).Order("created_at, id").Find(&comments).Error
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListRecent は全投稿のコメントを新しい順に最大 limit 件返します。
func (r *commentRepository) ListRecent(ctx context.Context, limit int) ([]entity.Comment, error) {
	comments := []entity.Comment{}
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) FindByID(ctx context.Context, postID, commentID string) (*entity.Comment, error) {
	var c entity.Comment
	err := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", commentID, postID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", commentID).Delete(&entity.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrCommentNotFound
	}
	return nil
}
