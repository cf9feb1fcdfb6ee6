package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/users/domain/entity"
	"blog_backend/internal/feature/users/transport/handler"
	"blog_backend/internal/feature/users/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/principal"
)

const (
	callerID = "11111111-1111-1111-1111-111111111111"
	targetID = "22222222-2222-2222-2222-222222222222"
)

// mockUsersUsecase はUsersUsecaseインターフェースのモック実装です。
type mockUsersUsecase struct {
	GetProfileFunc    func(ctx context.Context, viewerID, targetID string) (*usecase.ProfileView, error)
	GetMeFunc         func(ctx context.Context, id string) (*entity.Profile, error)
	UpdateProfileFunc func(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error)
	DeleteAccountFunc func(ctx context.Context, id string) error
	FollowFunc        func(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error)
	UnfollowFunc      func(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error)
}

func (m *mockUsersUsecase) GetProfile(ctx context.Context, viewerID, targetID string) (*usecase.ProfileView, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, viewerID, targetID)
	}
	return &usecase.ProfileView{Profile: &entity.Profile{ID: targetID, Email: "secret@x.com"}}, nil
}

func (m *mockUsersUsecase) GetMe(ctx context.Context, id string) (*entity.Profile, error) {
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx, id)
	}
	return &entity.Profile{ID: id, Email: "me@x.com"}, nil
}

func (m *mockUsersUsecase) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, upd)
	}
	return &entity.Profile{ID: id}, nil
}

func (m *mockUsersUsecase) DeleteAccount(ctx context.Context, id string) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, id)
	}
	return nil
}

func (m *mockUsersUsecase) Follow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	if m.FollowFunc != nil {
		return m.FollowFunc(ctx, actorID, targetID)
	}
	return entity.FollowCounts{FollowersCount: 1, FollowingCount: 1}, nil
}

func (m *mockUsersUsecase) Unfollow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	if m.UnfollowFunc != nil {
		return m.UnfollowFunc(ctx, actorID, targetID)
	}
	return entity.FollowCounts{}, nil
}

// newRouter は呼び出し元を固定で設定するミドルウェア付きのルーターを返します。
// authenticated が false の場合は匿名リクエストになります。
func newRouter(uc handler.UsersUsecase, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewUsersHandler(uc)

	r := gin.New()
	if authenticated {
		r.Use(func(c *gin.Context) {
			c.Set(jwtmw.ContextPrincipal, principal.Principal{ID: callerID})
			c.Next()
		})
	}
	r.GET("/users/me", h.GetMe)
	r.PUT("/users/me", h.UpdateMe)
	r.DELETE("/users/me", h.DeleteMe)
	r.GET("/users/:id", h.GetProfile)
	r.POST("/users/:id/follow", h.Follow)
	r.POST("/users/:id/unfollow", h.Unfollow)
	return r
}

func serve(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, gin.H) {
	t.Helper()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res gin.H
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

// TestUsersHandler_Follow はフォローAPIのステータスとボディを検証します。
func TestUsersHandler_Follow(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		followFunc     func(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name: "success",
			path: "/users/" + targetID + "/follow",
			followFunc: func(ctx context.Context, actorID, target string) (entity.FollowCounts, error) {
				assert.Equal(t, callerID, actorID)
				assert.Equal(t, targetID, target)
				return entity.FollowCounts{FollowersCount: 3, FollowingCount: 1}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   gin.H{"message": "Successfully followed user", "followers_count": float64(3), "following_count": float64(1)},
		},
		{
			name:           "self follow",
			path:           "/users/" + callerID + "/follow",
			followFunc:     func(ctx context.Context, actorID, target string) (entity.FollowCounts, error) { return entity.FollowCounts{}, usecase.ErrSelfFollow },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Cannot follow yourself", "code": "self_follow"},
		},
		{
			name:           "target missing",
			path:           "/users/" + targetID + "/follow",
			followFunc:     func(ctx context.Context, actorID, target string) (entity.FollowCounts, error) { return entity.FollowCounts{}, usecase.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
			expectedBody:   gin.H{"error": "User not found", "code": "user_not_found"},
		},
		{
			name:           "database failure is hidden",
			path:           "/users/" + targetID + "/follow",
			followFunc:     func(ctx context.Context, actorID, target string) (entity.FollowCounts, error) { return entity.FollowCounts{}, errors.New("pq: timeout") },
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "Internal server error", "code": "internal"},
		},
		{
			name:           "malformed id",
			path:           "/users/not-a-uuid/follow",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Invalid user id", "code": "validation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&mockUsersUsecase{FollowFunc: tt.followFunc}, true)

			w, body := serve(t, r, http.MethodPost, tt.path, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}

// TestUsersHandler_Unfollow はアンフォローAPIを検証します。
func TestUsersHandler_Unfollow(t *testing.T) {
	r := newRouter(&mockUsersUsecase{}, true)
	w, body := serve(t, r, http.MethodPost, "/users/"+targetID+"/unfollow", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully unfollowed user", body["message"])
	assert.Equal(t, float64(0), body["followers_count"])

	r = newRouter(&mockUsersUsecase{
		UnfollowFunc: func(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
			return entity.FollowCounts{}, usecase.ErrNotFollowing
		},
	}, true)
	w, body = serve(t, r, http.MethodPost, "/users/"+targetID+"/unfollow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not following this user", body["error"])
}

// TestUsersHandler_RequiresPrincipal は呼び出し元がいない場合に401を返すことを検証します。
func TestUsersHandler_RequiresPrincipal(t *testing.T) {
	r := newRouter(&mockUsersUsecase{}, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodDelete, "/users/me"},
		{http.MethodPost, "/users/" + targetID + "/follow"},
	} {
		w, body := serve(t, r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.Equal(t, "No token provided", body["error"])
	}
}

// TestUsersHandler_GetProfile は公開プロフィールでメールアドレスが隠されることを検証します。
func TestUsersHandler_GetProfile(t *testing.T) {
	following := true

	t.Run("anonymous", func(t *testing.T) {
		r := newRouter(&mockUsersUsecase{
			GetProfileFunc: func(ctx context.Context, viewerID, id string) (*usecase.ProfileView, error) {
				assert.Empty(t, viewerID)
				return &usecase.ProfileView{Profile: &entity.Profile{ID: id, Email: "secret@x.com"}}, nil
			},
		}, false)

		w, body := serve(t, r, http.MethodGet, "/users/"+targetID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, targetID, body["id"])
		assert.NotContains(t, body, "email")
		assert.NotContains(t, body, "is_following")
		assert.Equal(t, []any{}, body["followers"])
	})

	t.Run("authenticated", func(t *testing.T) {
		r := newRouter(&mockUsersUsecase{
			GetProfileFunc: func(ctx context.Context, viewerID, id string) (*usecase.ProfileView, error) {
				assert.Equal(t, callerID, viewerID)
				return &usecase.ProfileView{
					Profile:     &entity.Profile{ID: id, Email: "secret@x.com", Followers: []string{callerID}},
					IsFollowing: &following,
				}, nil
			},
		}, true)

		w, body := serve(t, r, http.MethodGet, "/users/"+targetID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, body, "email")
		assert.Equal(t, true, body["is_following"])
		assert.Equal(t, []any{callerID}, body["followers"])
	})

	t.Run("not found", func(t *testing.T) {
		r := newRouter(&mockUsersUsecase{
			GetProfileFunc: func(ctx context.Context, viewerID, id string) (*usecase.ProfileView, error) {
				return nil, usecase.ErrUserNotFound
			},
		}, false)

		w, body := serve(t, r, http.MethodGet, "/users/"+targetID, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", body["error"])
	})
}

// TestUsersHandler_Me は自分自身のプロフィール取得・更新・削除を検証します。
func TestUsersHandler_Me(t *testing.T) {
	var gotUpdate entity.ProfileUpdate
	deleted := ""
	r := newRouter(&mockUsersUsecase{
		UpdateProfileFunc: func(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error) {
			gotUpdate = upd
			return &entity.Profile{ID: id, Email: "me@x.com", FirstName: *upd.FirstName}, nil
		},
		DeleteAccountFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}, true)

	w, body := serve(t, r, http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me@x.com", body["email"])

	w, body = serve(t, r, http.MethodPut, "/users/me", `{"first_name":"Ada"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", body["first_name"])
	require.NotNil(t, gotUpdate.FirstName)
	assert.Nil(t, gotUpdate.LastName)

	w, body = serve(t, r, http.MethodPut, "/users/me", `{"first_name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", body["error"])

	w, body = serve(t, r, http.MethodDelete, "/users/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account deleted successfully", body["message"])
	assert.Equal(t, callerID, deleted)
}
