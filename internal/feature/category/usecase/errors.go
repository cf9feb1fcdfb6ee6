// Package usecase はcategoryフィーチャーのビジネスロジックを実装します。
package usecase

import "blog_backend/internal/shared/apperr"

var (
	ErrValidation = apperr.New(apperr.Validation, "validation", "Invalid input")

	ErrCategoryNotFound = apperr.New(apperr.NotFound, "category_not_found", "Category not found")

	// ErrDuplicateCategory は同名のカテゴリが既に存在する場合のエラーです。
	ErrDuplicateCategory = apperr.New(apperr.Conflict, "duplicate_category", "Category already exists")

	// ErrForbidden は管理者以外がカテゴリを変更しようとした場合のエラーです。
	ErrForbidden = apperr.New(apperr.Forbidden, "forbidden", "Admin access required")
)
