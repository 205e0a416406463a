package handlers

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

	"github.com/mahammedjunedattar/cloth-invent/internal/auth"
	"github.com/mahammedjunedattar/cloth-invent/internal/middleware"
	"github.com/mahammedjunedattar/cloth-invent/internal/models"
)

func newAuthRouter() (*gin.Engine, *memUsers, *auth.Issuer) {
	users := &memUsers{}
	issuer := auth.NewIssuer("test-secret", time.Hour)
	h := &AuthHandler{Users: users, Issuer: issuer}

	r := gin.New()
	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	return r, users, issuer
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSignup(t *testing.T) {
	r, users, _ := newAuthRouter()

	rec := postJSON(r, "/api/auth/signup", gin.H{"name": "Ada", "email": "Ada@Example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	u, err := users.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, u.Role)
	assert.NotEmpty(t, u.StoreID)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	rec = postJSON(r, "/api/auth/signup", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", decode[ErrorResponse](t, rec).Error)
}

func TestSignupValidation(t *testing.T) {
	r, _, _ := newAuthRouter()

	bad := []gin.H{
		{"name": "A", "email": "a@b.co", "password": "secret1"},
		{"name": "Ada", "email": "not-an-email", "password": "secret1"},
		{"name": "Ada", "email": "a@b.co", "password": "short"},
	}
	for _, body := range bad {
		assert.Equal(t, http.StatusBadRequest, postJSON(r, "/api/auth/signup", body).Code, body)
	}
}

func TestLogin(t *testing.T) {
	r, users, issuer := newAuthRouter()
	require.Equal(t, http.StatusCreated,
		postJSON(r, "/api/auth/signup", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"}).Code)

	rec := postJSON(r, "/api/auth/login", gin.H{"email": "ADA@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[LoginResponse](t, rec)
	claims, err := issuer.Parse(resp.Token)
	require.NoError(t, err)

	u, _ := users.FindByEmail(context.Background(), "ada@example.com")
	assert.Equal(t, u.StoreID, claims.StoreID)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.NotContains(t, rec.Body.String(), u.PasswordHash)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, resp.Token, cookie.Value)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _, _ := newAuthRouter()
	require.Equal(t, http.StatusCreated,
		postJSON(r, "/api/auth/signup", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"}).Code)

	assert.Equal(t, http.StatusUnauthorized,
		postJSON(r, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "wrong!"}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		postJSON(r, "/api/auth/login", gin.H{"email": "bob@example.com", "password": "secret1"}).Code)
}

func TestHealthz(t *testing.T) {
	healthy := &HealthHandler{Ping: func(context.Context) error { return nil }}
	down := &HealthHandler{Ping: func(context.Context) error { return errors.New("no reachable servers") }}

	r := gin.New()
	r.GET("/up", healthy.Healthz)
	r.GET("/down", down.Healthz)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/up", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
