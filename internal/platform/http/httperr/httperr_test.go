package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/api"
	"blog_backend/internal/shared/apperr"
)

// TestAbort は各エラー種別が期待するステータスとボディに変換されることを検証します。
func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   api.ErrorResponse
	}{
		{
			name:       "validation",
			err:        apperr.New(apperr.Validation, "validation", "Password must be at least 6 characters"),
			wantStatus: http.StatusBadRequest,
			wantBody:   api.ErrorResponse{Error: "Password must be at least 6 characters", Code: "validation"},
		},
		{
			name:       "conflict maps to 400",
			err:        fmt.Errorf("register: %w", apperr.New(apperr.Conflict, "duplicate_email", "Email already registered")),
			wantStatus: http.StatusBadRequest,
			wantBody:   api.ErrorResponse{Error: "Email already registered", Code: "duplicate_email"},
		},
		{
			name:       "auth",
			err:        apperr.New(apperr.Auth, "invalid_credentials", "Invalid credentials"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   api.ErrorResponse{Error: "Invalid credentials", Code: "invalid_credentials"},
		},
		{
			name:       "forbidden",
			err:        apperr.New(apperr.Forbidden, "forbidden", "Not allowed"),
			wantStatus: http.StatusForbidden,
			wantBody:   api.ErrorResponse{Error: "Not allowed", Code: "forbidden"},
		},
		{
			name:       "not found",
			err:        apperr.New(apperr.NotFound, "post_not_found", "Post not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   api.ErrorResponse{Error: "Post not found", Code: "post_not_found"},
		},
		{
			name:       "unclassified error hides detail",
			err:        errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   api.ErrorResponse{Error: "Internal server error", Code: "internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Abort(c, "test", tt.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.wantStatus, w.Code)
			var body api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

// TestBadRequest は入力エラーが 400 になることを検証します。
func TestBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	BadRequest(c, "create post", "Invalid request body", errors.New("unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body","code":"validation"}`, w.Body.String())
}
