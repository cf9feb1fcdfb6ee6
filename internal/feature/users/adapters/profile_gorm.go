// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	blogentity "blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/users/domain/entity"
	"blog_backend/internal/feature/users/usecase"
)

// 件数を0未満にしないデクリメント式
const (
	decFollowers = "CASE WHEN followers_count > 0 THEN followers_count - 1 ELSE 0 END"
	decFollowing = "CASE WHEN following_count > 0 THEN following_count - 1 ELSE 0 END"
	decLikes     = "CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END"
)

// profileRepository はUserRepositoryインターフェースのGORM実装です。
// フォロー関係は follows テーブルの1行で表し、件数の更新と同じトランザクションで書き込みます。
type profileRepository struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*profileRepository)(nil)

// NewProfileRepository は指定されたgorm.DB接続でprofileRepositoryを生成します。
func NewProfileRepository(db *gorm.DB) *profileRepository {
	return &profileRepository{db: db}
}

// FindProfile はユーザーとフォロワー・フォロー中のID一覧を返します。
func (r *profileRepository) FindProfile(ctx context.Context, id string) (*entity.Profile, error) {
	var profile *entity.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		profile, err = loadProfile(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func loadProfile(tx *gorm.DB, id string) (*entity.Profile, error) {
	var u authentity.User
	if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}

	followers := []string{}
	if err := tx.Model(&entity.Follow{}).
		Where("followee_id = ?", id).
		Order("created_at, follower_id").
		Pluck("follower_id", &followers).Error; err != nil {
		return nil, fmt.Errorf("failed to load followers: %w", err)
	}
	following := []string{}
	if err := tx.Model(&entity.Follow{}).
		Where("follower_id = ?", id).
		Order("created_at, followee_id").
		Pluck("followee_id", &following).Error; err != nil {
		return nil, fmt.Errorf("failed to load following: %w", err)
	}

	return &entity.Profile{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		IsAdmin:        u.IsAdmin,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		Followers:      followers,
		Following:      following,
		CreatedAt:      u.CreatedAt,
	}, nil
}

// UpdateNames は名前を更新し、更新後のプロフィールを返します。
func (r *profileRepository) UpdateNames(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error) {
	updates := map[string]any{}
	if upd.FirstName != nil {
		updates["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		updates["last_name"] = *upd.LastName
	}

	var profile *entity.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&authentity.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		var err error
		profile, err = loadProfile(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// requireUser はユーザーの存在を確認します。
func requireUser(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&authentity.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func readCounts(tx *gorm.DB, actorID, targetID string) (entity.FollowCounts, error) {
	var target, actor authentity.User
	if err := tx.Select("followers_count").Where("id = ?", targetID).First(&target).Error; err != nil {
		return entity.FollowCounts{}, err
	}
	if err := tx.Select("following_count").Where("id = ?", actorID).First(&actor).Error; err != nil {
		return entity.FollowCounts{}, err
	}
	return entity.FollowCounts{
		FollowersCount: target.FollowersCount,
		FollowingCount: actor.FollowingCount,
	}, nil
}

// Follow はフォローエッジを追加し、双方の件数を同じトランザクションで更新します。
// エッジの挿入は ON CONFLICT DO NOTHING で行い、既存の場合は件数を変更しません。
func (r *profileRepository) Follow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	var counts entity.FollowCounts
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, targetID); err != nil {
			return err
		}
		if err := requireUser(tx, actorID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.Follow{FollowerID: actorID, FolloweeID: targetID})
		if res.Error != nil {
			return fmt.Errorf("failed to insert follow: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&authentity.User{}).Where("id = ?", targetID).
				UpdateColumn("followers_count", gorm.Expr("followers_count + 1")).Error; err != nil {
				return err
			}
			if err := tx.Model(&authentity.User{}).Where("id = ?", actorID).
				UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
				return err
			}
		}

		var err error
		counts, err = readCounts(tx, actorID, targetID)
		return err
	})
	if err != nil {
		return entity.FollowCounts{}, err
	}
	return counts, nil
}

// Unfollow はフォローエッジを削除し、双方の件数を同じトランザクションで減らします。
func (r *profileRepository) Unfollow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	var counts entity.FollowCounts
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, targetID); err != nil {
			return err
		}

		res := tx.Where("follower_id = ? AND followee_id = ?", actorID, targetID).Delete(&entity.Follow{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete follow: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return usecase.ErrNotFollowing
		}

		if err := tx.Model(&authentity.User{}).Where("id = ?", targetID).
			UpdateColumn("followers_count", gorm.Expr(decFollowers)).Error; err != nil {
			return err
		}
		if err := tx.Model(&authentity.User{}).Where("id = ?", actorID).
			UpdateColumn("following_count", gorm.Expr(decFollowing)).Error; err != nil {
			return err
		}

		var err error
		counts, err = readCounts(tx, actorID, targetID)
		return err
	})
	if err != nil {
		return entity.FollowCounts{}, err
	}
	return counts, nil
}

// IsFollowing は actorID が targetID をフォローしているかを返します。
func (r *profileRepository) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete はユーザーと関連データを1つのトランザクションで削除し、他ユーザー・他投稿の件数を調整します。
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, id); err != nil {
			return err
		}

		// 自分の投稿と、それに付いたいいね・コメント
		ownPosts := tx.Model(&blogentity.Post{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("post_id IN (?)", ownPosts).Delete(&blogentity.PostLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes on own posts: %w", err)
		}
		if err := tx.Where("post_id IN (?)", ownPosts).Delete(&blogentity.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments on own posts: %w", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&blogentity.Post{}).Error; err != nil {
			return fmt.Errorf("failed to delete posts: %w", err)
		}

		// 他人の投稿へのいいね
		likedPosts := tx.Model(&blogentity.PostLike{}).Select("post_id").Where("user_id = ?", id)
		if err := tx.Model(&blogentity.Post{}).Where("id IN (?)", likedPosts).
			UpdateColumn("likes", gorm.Expr(decLikes)).Error; err != nil {
			return fmt.Errorf("failed to adjust like counters: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&blogentity.PostLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&blogentity.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}

		// フォロー関係と相手側の件数
		followees := tx.Model(&entity.Follow{}).Select("followee_id").Where("follower_id = ?", id)
		if err := tx.Model(&authentity.User{}).Where("id IN (?)", followees).
			UpdateColumn("followers_count", gorm.Expr(decFollowers)).Error; err != nil {
			return fmt.Errorf("failed to adjust followers counters: %w", err)
		}
		followers := tx.Model(&entity.Follow{}).Select("follower_id").Where("followee_id = ?", id)
		if err := tx.Model(&authentity.User{}).Where("id IN (?)", followers).
			UpdateColumn("following_count", gorm.Expr(decFollowing)).Error; err != nil {
			return fmt.Errorf("failed to adjust following counters: %w", err)
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).Delete(&entity.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete follows: %w", err)
		}

		if err := tx.Where("id = ?", id).Delete(&authentity.User{}).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
