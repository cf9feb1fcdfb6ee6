package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	LoginFunc    func(ctx context.Context, email, password string, shortLived bool) (*usecase.Session, error)
	RefreshFunc  func(ctx context.Context, token string) (*usecase.Session, error)
}

func (m *mockAuthUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return &entity.User{ID: "u1", Email: in.Email, FirstName: in.FirstName}, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string, shortLived bool) (*usecase.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, shortLived)
	}
	return nil, usecase.ErrInvalidCredentials // Default: failure
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, token string) (*usecase.Session, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, token)
	}
	return nil, jwtmw.ErrTokenMalformed
}

var expiresAt = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

func sessionFor(token string) *usecase.Session {
	return &usecase.Session{
		Token: jwtmw.Token{Value: token, ExpiresAt: expiresAt},
		User:  &entity.User{ID: "u1", Email: "a@x.com", FirstName: "A", Password: "must-not-leak"},
	}
}

func doJSON(t *testing.T, router *gin.Engine, path string, body any, header string) (*httptest.ResponseRecorder, gin.H) {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var responseBody gin.H
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responseBody))
	return w, responseBody
}

func TestAuthHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name             string
		requestBody      any
		mockRegisterFunc func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
		expectedStatus   int
		expectedError    string
	}{
		{
			name:           "success: user registration",
			requestBody:    gin.H{"email": "a@x.com", "password": "secret1", "first_name": "A"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "failure: malformed JSON",
			requestBody:    `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request body",
		},
		{
			name:        "failure: validation (usecase error)",
			requestBody: gin.H{"email": "a@x.com", "password": "123", "first_name": "A"},
			mockRegisterFunc: func(context.Context, usecase.RegisterInput) (*entity.User, error) {
				return nil, usecase.ErrValidation.WithDetail("Password must be at least 6 characters")
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Password must be at least 6 characters",
		},
		{
			name:        "failure: duplicate email",
			requestBody: gin.H{"email": "a@x.com", "password": "secret1", "first_name": "A"},
			mockRegisterFunc: func(context.Context, usecase.RegisterInput) (*entity.User, error) {
				return nil, usecase.ErrDuplicateEmail
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email already registered",
		},
		{
			name:        "failure: storage error is hidden",
			requestBody: gin.H{"email": "a@x.com", "password": "secret1", "first_name": "A"},
			mockRegisterFunc: func(context.Context, usecase.RegisterInput) (*entity.User, error) {
				return nil, errors.New("pq: relation users does not exist")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthUsecase{RegisterFunc: tt.mockRegisterFunc})
			router := gin.New()
			router.POST("/users/register", handler.Register)

			w, body := doJSON(t, router, "/users/register", tt.requestBody, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				return
			}
			assert.Equal(t, "u1", body["id"])
			assert.Equal(t, "a@x.com", body["email"])
			assert.NotContains(t, body, "password")
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    any
		mockLoginFunc  func(ctx context.Context, email, password string, shortLived bool) (*usecase.Session, error)
		expectedStatus int
		expectedError  string
		expectedToken  string
	}{
		{
			name:        "success: user login",
			requestBody: gin.H{"email": "a@x.com", "password": "secret1"},
			mockLoginFunc: func(_ context.Context, _, _ string, shortLived bool) (*usecase.Session, error) {
				if shortLived {
					return sessionFor("short"), nil
				}
				return sessionFor("primary"), nil
			},
			expectedStatus: http.StatusOK,
			expectedToken:  "primary",
		},
		{
			name:        "success: short lived login",
			requestBody: gin.H{"email": "a@x.com", "password": "secret1", "short_lived": true},
			mockLoginFunc: func(_ context.Context, _, _ string, shortLived bool) (*usecase.Session, error) {
				if shortLived {
					return sessionFor("short"), nil
				}
				return sessionFor("primary"), nil
			},
			expectedStatus: http.StatusOK,
			expectedToken:  "short",
		},
		{
			name:           "failure: missing password",
			requestBody:    gin.H{"email": "a@x.com"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email and password are required",
		},
		{
			name:        "failure: unknown email",
			requestBody: gin.H{"email": "nobody@x.com", "password": "secret1"},
			mockLoginFunc: func(context.Context, string, string, bool) (*usecase.Session, error) {
				return nil, usecase.ErrInvalidCredentials.Wrap(errors.New("no user with this email"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid credentials",
		},
		{
			name:        "failure: wrong password",
			requestBody: gin.H{"email": "a@x.com", "password": "wrong"},
			mockLoginFunc: func(context.Context, string, string, bool) (*usecase.Session, error) {
				return nil, usecase.ErrInvalidCredentials.Wrap(errors.New("password mismatch"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthUsecase{LoginFunc: tt.mockLoginFunc})
			router := gin.New()
			router.POST("/users/login", handler.Login)

			w, body := doJSON(t, router, "/users/login", tt.requestBody, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, gin.H{"error": tt.expectedError, "code": body["code"]}, body)
				return
			}
			assert.Equal(t, tt.expectedToken, body["token"])
			assert.Equal(t, "2030-01-02T03:04:05Z", body["expires_at"])
			user, ok := body["user"].(map[string]any)
			require.True(t, ok)
			assert.NotContains(t, user, "password")
		})
	}
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		authHeader      string
		mockRefreshFunc func(ctx context.Context, token string) (*usecase.Session, error)
		expectedStatus  int
		expectedError   string
	}{
		{
			name:       "success: expired but valid token",
			authHeader: "Bearer expired-token",
			mockRefreshFunc: func(_ context.Context, token string) (*usecase.Session, error) {
				if token != "expired-token" {
					return nil, jwtmw.ErrTokenMalformed
				}
				return sessionFor("fresh"), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure: no header",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "No token provided",
		},
		{
			name:           "failure: malformed header",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Malformed authorization header",
		},
		{
			name:           "failure: forged token",
			authHeader:     "Bearer forged",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token",
		},
		{
			name:       "failure: account deleted",
			authHeader: "Bearer orphan",
			mockRefreshFunc: func(context.Context, string) (*usecase.Session, error) {
				return nil, usecase.ErrUserNotFound
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthUsecase{RefreshFunc: tt.mockRefreshFunc})
			router := gin.New()
			router.POST("/users/refresh-token", handler.RefreshToken)

			w, body := doJSON(t, router, "/users/refresh-token", gin.H{}, tt.authHeader)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				return
			}
			assert.Equal(t, "fresh", body["token"])
		})
	}
}
