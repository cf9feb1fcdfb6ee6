// Package usecase はblogフィーチャー（投稿・いいね・コメント）のビジネスロジックを実装します。
package usecase

import "blog_backend/internal/shared/apperr"

var (
	// ErrValidation は投稿やコメントの内容が不正な場合のエラーです。
	ErrValidation = apperr.New(apperr.Validation, "validation", "Invalid input")

	ErrPostNotFound    = apperr.New(apperr.NotFound, "post_not_found", "Post not found")
	ErrCommentNotFound = apperr.New(apperr.NotFound, "comment_not_found", "Comment not found")
	ErrUserNotFound    = apperr.New(apperr.NotFound, "user_not_found", "User not found")

	// ErrAlreadyLiked は既にいいね済みの投稿に再度いいねした場合のエラーです。件数は変わりません。
	ErrAlreadyLiked = apperr.New(apperr.Conflict, "already_liked", "Post already liked")

	// ErrNotLiked はいいねしていない投稿のいいねを取り消そうとした場合のエラーです。
	ErrNotLiked = apperr.New(apperr.Conflict, "not_liked", "Post not liked")

	// ErrForbidden は作成者でも管理者でもないユーザーが削除しようとした場合のエラーです。
	ErrForbidden = apperr.New(apperr.Forbidden, "forbidden", "Not authorized to modify this resource")
)
