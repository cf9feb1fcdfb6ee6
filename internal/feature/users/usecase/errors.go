// Package usecase はusersフィーチャー（プロフィールとフォロー関係）のビジネスロジックを実装します。
package usecase

import "blog_backend/internal/shared/apperr"

var (
	// ErrValidation はプロフィール更新内容が不正な場合のエラーです。
	ErrValidation = apperr.New(apperr.Validation, "validation", "Invalid input")

	// ErrSelfFollow は自分自身をフォローしようとした場合のエラーです。状態は変更されません。
	ErrSelfFollow = apperr.New(apperr.Validation, "self_follow", "Cannot follow yourself")

	// ErrUserNotFound は対象ユーザーが存在しない場合のエラーです。
	ErrUserNotFound = apperr.New(apperr.NotFound, "user_not_found", "User not found")

	// ErrNotFollowing はフォローしていないユーザーをアンフォローしようとした場合のエラーです。
	ErrNotFollowing = apperr.New(apperr.Conflict, "not_following", "Not following this user")
)
