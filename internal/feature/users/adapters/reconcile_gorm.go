package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	blogentity "blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/users/domain/entity"
	"blog_backend/internal/feature/users/usecase"
)

// 件数カラムをエッジテーブルの行数に合わせる。差分がある行だけを更新する。
const (
	fixFollowersSQL = `UPDATE users SET followers_count = (SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id)
WHERE followers_count <> (SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id)`

	fixFollowingSQL = `UPDATE users SET following_count = (SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id)
WHERE following_count <> (SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id)`

	fixLikesSQL = `UPDATE posts SET likes = (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id)
WHERE likes <> (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id)`
)

// graphReconciler は follows / post_likes と件数カラムの不整合を修正します。
type graphReconciler struct {
	db *gorm.DB
}

var _ usecase.GraphReconciler = (*graphReconciler)(nil)

func NewGraphReconciler(db *gorm.DB) *graphReconciler {
	return &graphReconciler{db: db}
}

// Reconcile は自己フォロー・参照先のないエッジを削除した後、件数を再計算します。
// すべて1つのトランザクションで実行します。
func (r *graphReconciler) Reconcile(ctx context.Context) (entity.ReconcileReport, error) {
	var report entity.ReconcileReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := tx.Model(&authentity.User{}).Select("id")
		posts := tx.Model(&blogentity.Post{}).Select("id")

		res := tx.Where("follower_id = followee_id").Delete(&entity.Follow{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete self follows: %w", res.Error)
		}
		report.SelfFollows = res.RowsAffected

		res = tx.Where("follower_id NOT IN (?) OR followee_id NOT IN (?)", users, users).Delete(&entity.Follow{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete orphan follows: %w", res.Error)
		}
		report.OrphanFollows = res.RowsAffected

		res = tx.Where("user_id NOT IN (?) OR post_id NOT IN (?)", users, posts).Delete(&blogentity.PostLike{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete orphan likes: %w", res.Error)
		}
		report.OrphanLikes = res.RowsAffected

		res = tx.Where("author_id NOT IN (?) OR post_id NOT IN (?)", users, posts).Delete(&blogentity.Comment{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete orphan comments: %w", res.Error)
		}
		report.OrphanComments = res.RowsAffected

		res = tx.Exec(fixFollowersSQL)
		if res.Error != nil {
			return fmt.Errorf("failed to fix followers counters: %w", res.Error)
		}
		report.FollowersFixed = res.RowsAffected

		res = tx.Exec(fixFollowingSQL)
		if res.Error != nil {
			return fmt.Errorf("failed to fix following counters: %w", res.Error)
		}
		report.FollowingFixed = res.RowsAffected

		res = tx.Exec(fixLikesSQL)
		if res.Error != nil {
			return fmt.Errorf("failed to fix like counters: %w", res.Error)
		}
		report.LikeCountersFixed = res.RowsAffected
		return nil
	})
	if err != nil {
		return entity.ReconcileReport{}, err
	}
	return report, nil
}
