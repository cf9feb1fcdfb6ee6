// Package httperr は apperr の分類をHTTPステータスとエラーボディに変換します。
package httperr

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/shared/apperr"
)

const internalMessage = "Internal server error"

// Status は種別に対応するHTTPステータスを返します。
// Conflict（メール重複・いいね済み等）はクライアントの入力誤りとして 400 を返します。
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation, apperr.Conflict:
		return http.StatusBadRequest
	case apperr.Auth:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Body はクライアントに返すエラーボディを組み立てます。
// Internal の場合は詳細を隠して汎用メッセージを返します。
func Body(err error) api.ErrorResponse {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.Internal {
		return api.ErrorResponse{Error: internalMessage, Code: "internal"}
	}
	return api.ErrorResponse{Error: e.Message, Code: e.Code}
}

// Abort はエラーをログに記録し、対応するレスポンスを書き込んでハンドラーチェーンを中断します。
// op はログに残す操作名です。
func Abort(c *gin.Context, op string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		slog.Error(op+" failed", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" rejected", "error", err, "kind", kind.String(), "remote_addr", c.ClientIP())
	}
	c.AbortWithStatusJSON(Status(kind), Body(err))
}

// BadRequest は apperr を経由しない入力エラー（JSON不正やパスパラメータ不正）を返します。
func BadRequest(c *gin.Context, op, message string, err error) {
	slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
	c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: message, Code: "validation"})
}
