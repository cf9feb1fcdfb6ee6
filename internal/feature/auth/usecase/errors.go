// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import "blog_backend/internal/shared/apperr"

var (
	// ErrValidation は登録内容の形式・長さが不正な場合のエラーです。
	// 実際には WithDetail でフィールドごとのメッセージを付けて返します。
	ErrValidation = apperr.New(apperr.Validation, "validation", "Invalid input")

	// ErrDuplicateEmail は大文字小文字を区別せず同じメールアドレスが登録済みの場合のエラーです。
	ErrDuplicateEmail = apperr.New(apperr.Conflict, "duplicate_email", "Email already registered")

	// ErrInvalidCredentials はメールアドレス不在とパスワード不一致の両方で返されます。
	ErrInvalidCredentials = apperr.New(apperr.Auth, "invalid_credentials", "Invalid credentials")

	// ErrUserNotFound はIDまたはメールアドレスでユーザーが見つからない場合のエラーです。
	ErrUserNotFound = apperr.New(apperr.NotFound, "user_not_found", "User not found")
)
