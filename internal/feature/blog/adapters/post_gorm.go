// Package adapters はblogフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

const decLikes = "CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END"

// postRepository はPostRepositoryインターフェースのGORM実装です。
// いいねは post_likes の1行で表し、likes カラムの更新と同じトランザクションで書き込みます。
type postRepository struct {
	db *gorm.DB
}

var _ usecase.PostRepository = (*postRepository)(nil)

// NewPostRepository は指定されたgorm.DB接続でpostRepositoryを生成します。
func NewPostRepository(db *gorm.DB) *postRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	return findPost(r.db.WithContext(ctx), id)
}

func findPost(tx *gorm.DB, id string) (*entity.Post, error) {
	var post entity.Post
	if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func requirePost(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&entity.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}

func incrementViews(tx *gorm.DB, id string) error {
	res := tx.Model(&entity.Post{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}

// View は閲覧数を増やしてから、いいねしたユーザーとコメントを読み込みます。
func (r *postRepository) View(ctx context.Context, id string) (*entity.Post, error) {
	var post *entity.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := incrementViews(tx, id); err != nil {
			return err
		}
		var err error
		if post, err = findPost(tx, id); err != nil {
			return err
		}
		if post.LikedBy, err = likedBy(tx, id); err != nil {
			return err
		}
		post.Comments = []entity.Comment{}
		if err := tx.Where("post_id = ?", id).Order("created_at, id").Find(&post.Comments).Error; err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := incrementViews(tx, id); err != nil {
			return err
		}
		post, err := findPost(tx, id)
		if err != nil {
			return err
		}
		views = post.Views
		return nil
	})
	if err != nil {
		return 0, err
	}
	return views, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&entity.PostLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&entity.Post{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return usecase.ErrPostNotFound
		}
		return nil
	})
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID, excludeID string) ([]entity.Post, error) {
	db := r.db.WithContext(ctx)

	var n int64
	if err := db.Model(&authentity.User{}).Where("id = ?", authorID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, usecase.ErrUserNotFound
	}

	q := db.Where("author_id = ?", authorID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	posts := []entity.Post{}
	if err := q.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListAll はすべての投稿を新しい順に返します。
func (r *postRepository) ListAll(ctx context.Context) ([]entity.Post, error) {
	posts := []entity.Post{}
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func likedBy(tx *gorm.DB, postID string) ([]string, error) {
	ids := []string{}
	if err := tx.Model(&entity.PostLike{}).
		Where("post_id = ?", postID).
		Order("created_at, user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	return ids, nil
}

func likeState(tx *gorm.DB, postID string) (entity.LikeState, error) {
	post, err := findPost(tx, postID)
	if err != nil {
		return entity.LikeState{}, err
	}
	ids, err := likedBy(tx, postID)
	if err != nil {
		return entity.LikeState{}, err
	}
	return entity.LikeState{Likes: post.Likes, LikedBy: ids}, nil
}

// Like は ON CONFLICT DO NOTHING で挿入し、挿入できた場合のみ likes を増やします。
func (r *postRepository) Like(ctx context.Context, postID, userID string) (entity.LikeState, error) {
	var state entity.LikeState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.PostLike{PostID: postID, UserID: userID})
		if res.Error != nil {
			return fmt.Errorf("failed to insert like: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return usecase.ErrAlreadyLiked
		}
		if err := tx.Model(&entity.Post{}).Where("id = ?", postID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment likes: %w", err)
		}
		var err error
		state, err = likeState(tx, postID)
		return err
	})
	if err != nil {
		return entity.LikeState{}, err
	}
	return state, nil
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID string) (entity.LikeState, error) {
	var state entity.LikeState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&entity.PostLike{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete like: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return usecase.ErrNotLiked
		}
		if err := tx.Model(&entity.Post{}).Where("id = ?", postID).
			UpdateColumn("likes", gorm.Expr(decLikes)).Error; err != nil {
			return fmt.Errorf("failed to decrement likes: %w", err)
		}
		var err error
		state, err = likeState(tx, postID)
		return err
	})
	if err != nil {
		return entity.LikeState{}, err
	}
	return state, nil
}
