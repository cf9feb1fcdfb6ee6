package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"blog_backend/internal/feature/users/domain/entity"
)

const maxNameLength = 50

// UserRepository はプロフィールとフォロー関係の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// FindProfile はフォロワー・フォロー中のID一覧を含むプロフィールを返します。
	FindProfile(ctx context.Context, id string) (*entity.Profile, error)

	// UpdateNames は名前を更新し、更新後のプロフィールを返します。
	UpdateNames(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error)

	// Delete はユーザーと、その投稿・いいね・コメント・フォロー関係を1つのトランザクションで削除します。
	Delete(ctx context.Context, id string) error

	// Follow はフォロー関係を追加します。既にフォロー済みの場合は何もせず現在の件数を返します。
	// 対象が存在しない場合は ErrUserNotFound を返します。
	Follow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error)

	// Unfollow はフォロー関係を削除します。関係がない場合は ErrNotFollowing を返します。
	Unfollow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error)

	// IsFollowing は actorID が targetID をフォローしているかを返します。
	IsFollowing(ctx context.Context, actorID, targetID string) (bool, error)
}

// ProfileView はプロフィールと閲覧者から見た関係です。
// IsFollowing は閲覧者が認証済みの場合のみ設定されます。
type ProfileView struct {
	Profile     *entity.Profile
	IsFollowing *bool
	IsSelf      bool
}

type usersUsecase struct {
	users UserRepository
}

// NewUsersUsecase はusersUsecaseの新しいインスタンスを生成します。
func NewUsersUsecase(users UserRepository) *usersUsecase {
	return &usersUsecase{users: users}
}

// GetProfile は targetID の公開プロフィールを返します。viewerID が空の場合は匿名として扱います。
func (u *usersUsecase) GetProfile(ctx context.Context, viewerID, targetID string) (*ProfileView, error) {
	profile, err := u.users.FindProfile(ctx, targetID)
	if err != nil {
		return nil, wrapRepoErr("find profile", err)
	}

	view := &ProfileView{Profile: profile, IsSelf: viewerID != "" && viewerID == targetID}
	if viewerID != "" {
		following, err := u.users.IsFollowing(ctx, viewerID, targetID)
		if err != nil {
			return nil, fmt.Errorf("failed to check follow state: %w", err)
		}
		view.IsFollowing = &following
	}
	return view, nil
}

// GetMe は認証済みユーザー自身のプロフィールを返します。
func (u *usersUsecase) GetMe(ctx context.Context, id string) (*entity.Profile, error) {
	profile, err := u.users.FindProfile(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("find profile", err)
	}
	return profile, nil
}

// UpdateProfile は名前を更新します。nil のフィールドは変更しません。
func (u *usersUsecase) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error) {
	if upd.FirstName == nil && upd.LastName == nil {
		return nil, ErrValidation.WithDetail("No fields to update")
	}
	if upd.FirstName != nil {
		v := strings.TrimSpace(*upd.FirstName)
		if v == "" {
			return nil, ErrValidation.WithDetail("First name is required")
		}
		if utf8.RuneCountInString(v) > maxNameLength {
			return nil, ErrValidation.WithDetail(fmt.Sprintf("First name must be at most %d characters", maxNameLength))
		}
		upd.FirstName = &v
	}
	if upd.LastName != nil {
		v := strings.TrimSpace(*upd.LastName)
		if utf8.RuneCountInString(v) > maxNameLength {
			return nil, ErrValidation.WithDetail(fmt.Sprintf("Last name must be at most %d characters", maxNameLength))
		}
		upd.LastName = &v
	}

	profile, err := u.users.UpdateNames(ctx, id, upd)
	if err != nil {
		return nil, wrapRepoErr("update profile", err)
	}
	return profile, nil
}

// DeleteAccount はアカウントと、それに紐づく投稿・いいね・コメント・フォロー関係を削除します。
func (u *usersUsecase) DeleteAccount(ctx context.Context, id string) error {
	if err := u.users.Delete(ctx, id); err != nil {
		return wrapRepoErr("delete account", err)
	}
	return nil
}

// Follow は actorID が targetID をフォローします。
// 自分自身は ErrSelfFollow、存在しないユーザーは ErrUserNotFound です。
// 既にフォロー済みの場合はエラーにせず、現在の件数を返します。
func (u *usersUsecase) Follow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	if actorID == targetID {
		return entity.FollowCounts{}, ErrSelfFollow
	}
	counts, err := u.users.Follow(ctx, actorID, targetID)
	if err != nil {
		return entity.FollowCounts{}, wrapRepoErr("follow", err)
	}
	return counts, nil
}

// Unfollow は actorID による targetID のフォローを解除します。
func (u *usersUsecase) Unfollow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	counts, err := u.users.Unfollow(ctx, actorID, targetID)
	if err != nil {
		return entity.FollowCounts{}, wrapRepoErr("unfollow", err)
	}
	return counts, nil
}

// wrapRepoErr は分類済みのエラーはそのまま返し、それ以外を内部エラーとしてラップします。
func wrapRepoErr(op string, err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNotFollowing):
		return err
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
