package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cancer-not-cancer/api/internal/api/middleware"
	"github.com/cancer-not-cancer/api/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(user *model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name     string
		user     *model.User
		cap      model.Capability
		wantCode int
	}{
		{
			name:     "no user in context",
			user:     nil,
			cap:      model.CapViewImages,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "disabled pathologist cannot grade",
			user:     &model.User{ID: 1, Permissions: model.Permissions{Pathologist: true}},
			cap:      model.CapGradeImages,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "enabled pathologist can grade",
			user:     &model.User{ID: 1, Permissions: model.Permissions{Enabled: true, Pathologist: true}},
			cap:      model.CapGradeImages,
			wantCode: http.StatusOK,
		},
		{
			name:     "pathologist cannot manage users",
			user:     &model.User{ID: 1, Permissions: model.Permissions{Enabled: true, Pathologist: true}},
			cap:      model.CapManageUsers,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "admin manages users",
			user:     &model.User{ID: 1, Permissions: model.Permissions{Enabled: true, Admin: true}},
			cap:      model.CapManageUsers,
			wantCode: http.StatusOK,
		},
		{
			name:     "uploader uploads",
			user:     &model.User{ID: 1, Permissions: model.Permissions{Enabled: true, Uploader: true}},
			cap:      model.CapUploadImages,
			wantCode: http.StatusOK,
		},
		{
			name:     "any authenticated user uploads",
			user:     &model.User{ID: 1, Permissions: model.Permissions{Enabled: true}},
			cap:      model.CapUploadImages,
			wantCode: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			middleware.RequireCapability(tc.cap)(okHandler()).ServeHTTP(rec, requestAs(tc.user))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
