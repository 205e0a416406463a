package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mahammedjunedattar/cloth-invent/internal/auth"
	"github.com/mahammedjunedattar/cloth-invent/internal/cache"
	"github.com/mahammedjunedattar/cloth-invent/internal/handlers"
	"github.com/mahammedjunedattar/cloth-invent/internal/metrics"
	"github.com/mahammedjunedattar/cloth-invent/internal/models"
	"github.com/mahammedjunedattar/cloth-invent/internal/ratelimit"
	"github.com/mahammedjunedattar/cloth-invent/internal/repository"
	"github.com/mahammedjunedattar/cloth-invent/internal/validation"
)

type emptyItems struct{ handlers.ItemStore }

func (emptyItems) List(context.Context, string, repository.ItemFilter) ([]models.Item, int64, error) {
	return nil, 0, nil
}

func newTestRouter(t *testing.T, points int) (*gin.Engine, *auth.Issuer, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.New(time.Minute, 0)
	t.Cleanup(store.Close)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	issuer := auth.NewIssuer("secret", time.Hour)

	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Logger:  zap.NewNop(),
		Metrics: m,
		Issuer:  issuer,
		Limiter: ratelimit.New(ratelimit.Config{Points: points, Window: time.Hour, Block: time.Minute}, store),
		Items:   &handlers.ItemHandler{Items: emptyItems{}, Validator: validation.New(), Cache: store},
		Auth:    &handlers.AuthHandler{Issuer: issuer},
		Health:  &handlers.HealthHandler{},
	})
	return r, issuer, m
}

func TestItemsRequireSession(t *testing.T) {
	r, issuer, _ := newTestRouter(t, 10)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := issuer.Issue("u1", "s1", models.RoleOwner, "a@b.co")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListingIsRateLimited(t *testing.T) {
	r, issuer, m := newTestRouter(t, 2)
	token, err := issuer.Issue("u1", "s1", models.RoleOwner, "a@b.co")
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))
}

func TestOperationalEndpoints(t *testing.T) {
	r, _, _ := newTestRouter(t, 10)

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
