package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"blog_backend/internal/feature/category/domain/entity"
	"blog_backend/internal/feature/category/usecase"
	"blog_backend/internal/platform/db"
)

type categoryRepository struct {
	db *gorm.DB
}

var _ usecase.CategoryRepository = (*categoryRepository)(nil)

// NewCategoryRepository は指定されたgorm.DB接続でcategoryRepositoryを生成します。
func NewCategoryRepository(db *gorm.DB) *categoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *categoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	categories := []entity.Category{}
	if err := r.db.WithContext(ctx).Order("name, id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Rename は更新と再読み込みを同じトランザクションで行います。
func (r *categoryRepository) Rename(ctx context.Context, id, name string) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Category{}).Where("id = ?", id).Update("name", name)
		if res.Error != nil {
			if db.IsUniqueViolation(res.Error) {
				return usecase.ErrDuplicateCategory
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrCategoryNotFound
		}
		return tx.Where("id = ?", id).First(&category).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrCategoryNotFound
	}
	return nil
}
