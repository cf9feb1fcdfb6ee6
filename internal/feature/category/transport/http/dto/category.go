// Package dto はcategoryフィーチャーのエンティティをAPIレスポンスへ変換します。
package dto

import (
	"blog_backend/internal/api"
	"blog_backend/internal/feature/category/domain/entity"
)

func FromCategory(c *entity.Category) api.CategoryResponse {
	return api.CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromCategories(categories []entity.Category) []api.CategoryResponse {
	res := make([]api.CategoryResponse, 0, len(categories))
	for i := range categories {
		res = append(res, FromCategory(&categories[i]))
	}
	return res
}
