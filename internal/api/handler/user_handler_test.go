package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cancer-not-cancer/api/internal/api/handler"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRouter(t *testing.T) (chi.Router, func()) {
	db := testutil.SetupTestDB(t)
	h := handler.NewUserHandler(service.NewUserService(repository.NewPgUserRepository(db)))
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, func() { db.Close() }
}

func postJSON(r chi.Router, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateUserEndpoint(t *testing.T) {
	r, cleanup := newUserRouter(t)
	defer cleanup()

	rec := postJSON(r, `{"fullname":"Jordan Doe","email":"jordan@example.org","password":"hunter22","permissions":{"enabled":true,"pathologist":true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp service.CreateUserRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jordan@example.org", resp.Email)
	assert.Empty(t, resp.Password, "response must not echo the password")
	assert.True(t, resp.Permissions.Pathologist)
}

func TestCreateUserWrongFieldType(t *testing.T) {
	r, cleanup := newUserRouter(t)
	defer cleanup()

	rec := postJSON(r, `{"fullname":12345,"email":"jordan@example.org","password":"hunter22"}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCreateUserOversizedField(t *testing.T) {
	r, cleanup := newUserRouter(t)
	defer cleanup()

	body := fmt.Sprintf(`{"fullname":%q,"email":"jordan@example.org","password":"hunter22"}`,
		strings.Repeat("x", service.MaxFullnameLen+1))
	rec := postJSON(r, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreateUserDuplicateEmailEndpoint(t *testing.T) {
	r, cleanup := newUserRouter(t)
	defer cleanup()

	body := `{"fullname":"Jordan Doe","email":"jordan@example.org","password":"hunter22"}`
	require.Equal(t, http.StatusOK, postJSON(r, body).Code)

	rec := postJSON(r, body)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp handler.DuplicateUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Email already exists in database.", resp.Message)
	assert.Equal(t, "jordan@example.org", resp.User.Email)
}

func TestCreateUserMalformedJSON(t *testing.T) {
	r, cleanup := newUserRouter(t)
	defer cleanup()

	rec := postJSON(r, `{"fullname":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUsersEmpty(t *testing.T) {
	r, cleanup := newUserRouter(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.NotNil(t, users)
	assert.Empty(t, users)
}
