package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notes_system/internal/domain"
	"notes_system/internal/store"
	"notes_system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func protectedRouter(st store.Store) *gin.Engine {
	log, _ := logtest.NewNullLogger()
	return protectedRouterWithLog(st, log)
}

func protectedRouterWithLog(st store.Store, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.GET("/users", JWTAuthMiddleware(secret), RequireRoles(st, log, domain.RoleAdmin, domain.RoleManager), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserID))
	})
	return r
}

func bearer(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(u.ID, u.Username, u.Roles, secret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJWTAuthMiddleware_RejectsMissingAndBadTokens(t *testing.T) {
	r := protectedRouter(store.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	other, err := utils.GenerateJWT("u1", "alice", []string{"Admin"}, "other-secret")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

type brokenStore struct {
	store.Store
}

func (brokenStore) FindUserByID(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestRequireRoles_StoreFailureLogsToInjectedLogger(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	r := protectedRouterWithLog(brokenStore{}, log)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", bearer(t, &domain.User{ID: "u1", Username: "alice", Roles: []string{domain.RoleAdmin}}))
	w := serve(r, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Role lookup failed", entry.Message)
	assert.Equal(t, "u1", entry.Data["user_id"])
}

func TestRequireRoles(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	admin := &domain.User{Username: "admin", Roles: []string{domain.RoleAdmin}, Active: true}
	employee := &domain.User{Username: "emp", Roles: []string{domain.RoleEmployee}, Active: true}
	inactive := &domain.User{Username: "gone", Roles: []string{domain.RoleManager}, Active: false}
	for _, u := range []*domain.User{admin, employee, inactive} {
		require.NoError(t, st.InsertUser(ctx, u))
	}
	r := protectedRouter(st)

	cases := []struct {
		name string
		user *domain.User
		want int
	}{
		{"admin allowed", admin, http.StatusOK},
		{"employee forbidden", employee, http.StatusForbidden},
		{"inactive forbidden", inactive, http.StatusForbidden},
		{"deleted user", &domain.User{ID: "ghost", Roles: []string{domain.RoleAdmin}}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("Authorization", bearer(t, tc.user))
			w := serve(r, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, tc.user.ID, w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "clients have separate buckets")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))

	now = now.Add(limiterIdleTTL + time.Second)
	l.Allow("c")
	l.mu.Lock()
	_, kept := l.clients["a"]
	l.mu.Unlock()
	assert.False(t, kept)
}

func TestRateLimiter_Handler(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(0.001, 1).Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}
