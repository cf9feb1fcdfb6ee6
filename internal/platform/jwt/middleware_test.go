package jwtmw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/api"
	"blog_backend/internal/shared/apperr"
	"blog_backend/internal/shared/principal"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockVerifier struct {
	VerifyFunc func(token string) (string, error)
	calls      int
}

func (m *mockVerifier) Verify(token string) (string, error) {
	m.calls++
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	return "user-1", nil
}

type mockResolver struct {
	ResolvePrincipalFunc func(ctx context.Context, userID string) (principal.Principal, error)
	calls                int
}

func (m *mockResolver) ResolvePrincipal(ctx context.Context, userID string) (principal.Principal, error) {
	m.calls++
	if m.ResolvePrincipalFunc != nil {
		return m.ResolvePrincipalFunc(ctx, userID)
	}
	return principal.Principal{ID: userID, Email: "a@x.com", FirstName: "A"}, nil
}

var errUserGone = apperr.New(apperr.NotFound, "user_not_found", "User not found")

func runGate(t *testing.T, handler gin.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	handler(c)
	return w, c
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

// TestAuthRequired_Rejections は各拒否状態で401と理由別のメッセージが返されることを検証します。
func TestAuthRequired_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		authHeader   string
		verify       func(string) (string, error)
		resolve      func(context.Context, string) (principal.Principal, error)
		wantStatus   int
		wantMessage  string
		wantVerifies int
		wantResolves int
	}{
		{
			name:        "no header",
			authHeader:  "",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "basic auth",
			authHeader:  "Basic dXNlcjpwYXNz",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Malformed authorization header",
		},
		{
			name:        "bearer lowercase",
			authHeader:  "bearer token123",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Malformed authorization header",
		},
		{
			name:        "no space after Bearer",
			authHeader:  "Bearertoken123",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Malformed authorization header",
		},
		{
			name:        "bearer without token",
			authHeader:  "Bearer    ",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Malformed authorization header",
		},
		{
			name:        "extra segments",
			authHeader:  "Bearer abc def",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Malformed authorization header",
		},
		{
			name:         "expired token",
			authHeader:   "Bearer expired",
			verify:       func(string) (string, error) { return "", ErrTokenExpired },
			wantStatus:   http.StatusUnauthorized,
			wantMessage:  "Token expired",
			wantVerifies: 1,
		},
		{
			name:         "invalid token",
			authHeader:   "Bearer forged",
			verify:       func(string) (string, error) { return "", ErrTokenMalformed },
			wantStatus:   http.StatusUnauthorized,
			wantMessage:  "Invalid token",
			wantVerifies: 1,
		},
		{
			name:         "verifier returns unclassified error",
			authHeader:   "Bearer forged",
			verify:       func(string) (string, error) { return "", errors.New("boom") },
			wantStatus:   http.StatusUnauthorized,
			wantMessage:  "Invalid token",
			wantVerifies: 1,
		},
		{
			name:       "principal missing",
			authHeader: "Bearer valid",
			resolve: func(context.Context, string) (principal.Principal, error) {
				return principal.Principal{}, errUserGone
			},
			wantStatus:   http.StatusUnauthorized,
			wantMessage:  "User not found",
			wantVerifies: 1,
			wantResolves: 1,
		},
		{
			name:       "storage failure",
			authHeader: "Bearer valid",
			resolve: func(context.Context, string) (principal.Principal, error) {
				return principal.Principal{}, errors.New("connection refused")
			},
			wantStatus:   http.StatusInternalServerError,
			wantMessage:  "Internal server error",
			wantVerifies: 1,
			wantResolves: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{VerifyFunc: tt.verify}
			resolver := &mockResolver{ResolvePrincipalFunc: tt.resolve}

			w, c := runGate(t, AuthRequired(verifier, resolver), tt.authHeader)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.wantMessage, errorMessage(t, w))
			assert.Equal(t, tt.wantVerifies, verifier.calls)
			assert.Equal(t, tt.wantResolves, resolver.calls)
			_, ok := PrincipalFrom(c)
			assert.False(t, ok)
		})
	}
}

// TestAuthRequired_Authenticated は認証成功時にユーザーがコンテキストに設定され、
// ユーザー解決が1回だけ行われることを検証します。
func TestAuthRequired_Authenticated(t *testing.T) {
	verifier := &mockVerifier{VerifyFunc: func(token string) (string, error) {
		assert.Equal(t, "good-token", token)
		return "user-42", nil
	}}
	resolver := &mockResolver{}

	w, c := runGate(t, AuthRequired(verifier, resolver), "Bearer good-token")

	assert.False(t, c.IsAborted(), "response: %s", w.Body.String())
	assert.Equal(t, 1, resolver.calls)
	p, ok := PrincipalFrom(c)
	require.True(t, ok)
	assert.Equal(t, "user-42", p.ID)
	assert.Equal(t, "a@x.com", p.Email)
}

// TestAuthRequired_WithTokenService は実際の TokenService と組み合わせた場合の動作を検証します。
func TestAuthRequired_WithTokenService(t *testing.T) {
	svc, err := NewTokenService(testSecret)
	require.NoError(t, err)
	resolver := &mockResolver{}

	r := gin.New()
	r.GET("/me", AuthRequired(svc, resolver), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})

	tok, err := svc.Issue("user-7")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"user-7"}`, w.Body.String())

	svc.now = func() time.Time { return time.Now().Add(TokenTTL + time.Minute) }
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", errorMessage(t, w))
}

// TestOptionalAuth はヘッダーがない場合のみ匿名で通過することを検証します。
func TestOptionalAuth(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		verifier := &mockVerifier{}
		resolver := &mockResolver{}

		_, c := runGate(t, OptionalAuth(verifier, resolver), "")

		assert.False(t, c.IsAborted())
		assert.Equal(t, 0, verifier.calls)
		_, ok := PrincipalFrom(c)
		assert.False(t, ok)
	})

	t.Run("authenticated", func(t *testing.T) {
		_, c := runGate(t, OptionalAuth(&mockVerifier{}, &mockResolver{}), "Bearer good")

		assert.False(t, c.IsAborted())
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		assert.Equal(t, "user-1", p.ID)
	})

	t.Run("invalid header is rejected", func(t *testing.T) {
		w, c := runGate(t, OptionalAuth(&mockVerifier{}, &mockResolver{}), "Token abc")

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// TestBearerToken はAuthorizationヘッダーの解析を検証します。
func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"Bearer a b", "", false},
	}

	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
