// Package handler はcategoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/category/domain/entity"
	"blog_backend/internal/feature/category/transport/http/dto"
	"blog_backend/internal/platform/http/httperr"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/principal"
)

// CategoryUsecase はカテゴリ操作のユースケースを定義します。
type CategoryUsecase interface {
	Create(ctx context.Context, actor principal.Principal, name string) (*entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
	Rename(ctx context.Context, actor principal.Principal, id, name string) (*entity.Category, error)
	Delete(ctx context.Context, actor principal.Principal, id string) error
}

// CategoryHandler はカテゴリ関連のHTTPリクエストを処理します。
type CategoryHandler struct {
	categories CategoryUsecase
}

// NewCategoryHandler はCategoryHandlerの新しいインスタンスを生成します。
func NewCategoryHandler(categories CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func currentPrincipal(c *gin.Context, op string) (principal.Principal, bool) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		httperr.Abort(c, op, jwtmw.ErrNoToken)
		return principal.Principal{}, false
	}
	return p, true
}

func categoryID(c *gin.Context, op string) (string, bool) {
	id, err := api.BindID(c, "id")
	if err != nil {
		httperr.BadRequest(c, op, "Invalid category ID", err)
		return "", false
	}
	return id, true
}

// Create は POST /category を処理します。
func (h *CategoryHandler) Create(c *gin.Context) {
	p, ok := currentPrincipal(c, "create category")
	if !ok {
		return
	}
	var req api.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "create category", "Invalid request body", err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), p, req.Name)
	if err != nil {
		httperr.Abort(c, "create category", err)
		return
	}
	slog.Info("category created", "category_id", category.ID, "user_id", p.ID)
	c.JSON(http.StatusCreated, dto.FromCategory(category))
}

// List は GET /category/all を処理します。
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCategories(categories))
}

// Rename は PUT /category/:id を処理します。
func (h *CategoryHandler) Rename(c *gin.Context) {
	p, ok := currentPrincipal(c, "rename category")
	if !ok {
		return
	}
	id, ok := categoryID(c, "rename category")
	if !ok {
		return
	}
	var req api.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "rename category", "Invalid request body", err)
		return
	}

	category, err := h.categories.Rename(c.Request.Context(), p, id, req.Name)
	if err != nil {
		httperr.Abort(c, "rename category", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCategory(category))
}

// Delete は DELETE /category/:id を処理します。
func (h *CategoryHandler) Delete(c *gin.Context) {
	p, ok := currentPrincipal(c, "delete category")
	if !ok {
		return
	}
	id, ok := categoryID(c, "delete category")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), p, id); err != nil {
		httperr.Abort(c, "delete category", err)
		return
	}
	slog.Info("category deleted", "category_id", id, "user_id", p.ID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Category deleted successfully"})
}
