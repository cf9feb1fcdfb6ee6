package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"blog_backend/internal/feature/category/domain/entity"
	"blog_backend/internal/shared/principal"
)

const maxCategoryNameLength = 50

// CategoryRepository はカテゴリの永続化層を抽象化します。
type CategoryRepository interface {
	// Create は同名のカテゴリがある場合 ErrDuplicateCategory を返します。
	Create(ctx context.Context, category *entity.Category) error
	// List は名前順にすべてのカテゴリを返します。
	List(ctx context.Context) ([]entity.Category, error)
	// Rename は名前を変更し、更新後のカテゴリを返します。
	Rename(ctx context.Context, id, name string) (*entity.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryUsecase struct {
	categories CategoryRepository
}

// NewCategoryUsecase はcategoryUsecaseの新しいインスタンスを生成します。
func NewCategoryUsecase(categories CategoryRepository) *categoryUsecase {
	return &categoryUsecase{categories: categories}
}

// Create はカテゴリを作成します。管理者のみ実行できます。
func (u *categoryUsecase) Create(ctx context.Context, actor principal.Principal, name string) (*entity.Category, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	category := &entity.Category{Name: name}
	if err := u.categories.Create(ctx, category); err != nil {
		return nil, wrapRepoErr("create category", err)
	}
	return category, nil
}

// List はすべてのカテゴリを返します。
func (u *categoryUsecase) List(ctx context.Context) ([]entity.Category, error) {
	categories, err := u.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Rename はカテゴリ名を変更します。管理者のみ実行できます。
func (u *categoryUsecase) Rename(ctx context.Context, actor principal.Principal, id, name string) (*entity.Category, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	category, err := u.categories.Rename(ctx, id, name)
	if err != nil {
		return nil, wrapRepoErr("rename category", err)
	}
	return category, nil
}

// Delete はカテゴリを削除します。管理者のみ実行できます。
func (u *categoryUsecase) Delete(ctx context.Context, actor principal.Principal, id string) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if err := u.categories.Delete(ctx, id); err != nil {
		return wrapRepoErr("delete category", err)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrValidation.WithDetail("Category name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return "", ErrValidation.WithDetail(fmt.Sprintf("Category name cannot exceed %d characters", maxCategoryNameLength))
	}
	return name, nil
}

func wrapRepoErr(op string, err error) error {
	if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrDuplicateCategory) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
