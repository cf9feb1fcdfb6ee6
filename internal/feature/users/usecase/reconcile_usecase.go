package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blog_backend/internal/feature/users/domain/entity"
)

// GraphReconciler はフォロー・いいねのエッジと件数の不整合を検出して修正します。
type GraphReconciler interface {
	Reconcile(ctx context.Context) (entity.ReconcileReport, error)
}

// ReconcileUsecase はバッチジョブとして整合性修正を1回実行します。
type ReconcileUsecase struct {
	reconciler GraphReconciler
}

func NewReconcileUsecase(reconciler GraphReconciler) *ReconcileUsecase {
	return &ReconcileUsecase{reconciler: reconciler}
}

// Run は整合性修正を実行し、結果をログに出力します。
func (u *ReconcileUsecase) Run(ctx context.Context) (entity.ReconcileReport, error) {
	start := time.Now()
	report, err := u.reconciler.Reconcile(ctx)
	if err != nil {
		return entity.ReconcileReport{}, fmt.Errorf("failed to reconcile graph: %w", err)
	}

	attrs := []any{
		"self_follows", report.SelfFollows,
		"orphan_follows", report.OrphanFollows,
		"orphan_likes", report.OrphanLikes,
		"orphan_comments", report.OrphanComments,
		"followers_fixed", report.FollowersFixed,
		"following_fixed", report.FollowingFixed,
		"like_counters_fixed", report.LikeCountersFixed,
		"elapsed", time.Since(start),
	}
	if report.Changed() {
		slog.Warn("graph inconsistencies repaired", attrs...)
	} else {
		slog.Info("graph consistent", attrs...)
	}
	return report, nil
}
