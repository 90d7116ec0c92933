package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/models"
	"github.com/healthconnect/portal/internal/pkg/jwt"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	active map[string]string
}

func (f *fakeSessions) Issue(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

func (f *fakeSessions) IsActive(_ context.Context, userID, sessionID string) (bool, error) {
	return f.active[sessionID] == userID, nil
}

func (f *fakeSessions) Revoke(context.Context, string, string) error { return nil }

func newAuthRouter(t *testing.T, store *fakeSessions, roles ...models.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(store), RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": CurrentUserID(c), "role": CurrentRole(c), "sid": CurrentSessionID(c)})
	})
	return r
}

func doGet(r http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthAcceptsLiveSession(t *testing.T) {
	store := &fakeSessions{active: map[string]string{"sid-1": "doctor1"}}
	r := newAuthRouter(t, store, models.RoleDoctor)
	token, err := jwt.Sign("doctor1", string(models.RoleDoctor), "sid-1", time.Hour)
	require.NoError(t, err)

	rec := doGet(r, "/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uid":"doctor1","role":"Doctor","sid":"sid-1"}`, rec.Body.String())
}

func TestAuthAcceptsQueryToken(t *testing.T) {
	store := &fakeSessions{active: map[string]string{"sid-1": "doctor1"}}
	r := newAuthRouter(t, store, models.RoleDoctor)
	token, err := jwt.Sign("doctor1", string(models.RoleDoctor), "sid-1", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "/me?token="+token, "").Code)
}

func TestAuthRejects(t *testing.T) {
	store := &fakeSessions{active: map[string]string{}}
	r := newAuthRouter(t, store, models.RoleDoctor)
	revoked, err := jwt.Sign("doctor1", string(models.RoleDoctor), "sid-gone", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", revoked).Code)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	store := &fakeSessions{active: map[string]string{"sid-2": "patient1"}}
	r := newAuthRouter(t, store, models.RoleDoctor, models.RoleHospitalAdmin)
	token, err := jwt.Sign("patient1", string(models.RolePatient), "sid-2", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(r, "/me", token).Code)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken("  "))
}

type fakeCounter struct {
	counts  map[string]int64
	expired []string
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, _ time.Duration) *redis.BoolCmd {
	f.expired = append(f.expired, key)
	return redis.NewBoolResult(true, nil)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	counter := &fakeCounter{counts: map[string]int64{}}
	r := gin.New()
	r.POST("/summary", func(c *gin.Context) {
		c.Set(ContextKeyUserID, "doctor1")
		c.Next()
	}, RateLimit(counter, "summary", 2), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/summary", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)
	assert.Len(t, counter.expired, 1)
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/summary", RateLimit(nil, "summary", 1), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/summary", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	}
}
