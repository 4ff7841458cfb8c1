package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]*service.Claims

func (f fakeTokens) ValidateToken(tokenStr string) (*service.Claims, error) {
	if tokenStr == "expired" {
		return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenExpired)
	}
	if c, ok := f[tokenStr]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type fakeSessions map[int]string

func (f fakeSessions) ValidateStudentSession(_ context.Context, studentID int, jti string) error {
	if f[studentID] != jti {
		return service.ErrSessionInvalidated
	}
	return nil
}

func studentClaims(id int, jti string) *service.Claims {
	return &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: jti},
		TokenType:        service.TokenTypeStudent,
		UserID:           id,
	}
}

func adminClaims(perms ...model.Permission) *service.Claims {
	c := &service.Claims{TokenType: service.TokenTypeAdmin, UserID: 1, RoleID: 1}
	for _, p := range perms {
		c.Permissions = append(c.Permissions, string(p))
	}
	return c
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body struct {
		Error struct {
			Code response.ErrCode `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func serve(r *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRequireStudentJWT(t *testing.T) {
	tokens := fakeTokens{
		"student": studentClaims(7, "jti-1"),
		"admin":   adminClaims(),
	}
	r := gin.New()
	r.GET("/me", RequireStudentJWT(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", GetClaims(c).UserID)
	})

	tests := []struct {
		name   string
		target string
		auth   string
		status int
		code   response.ErrCode
	}{
		{name: "missing token", target: "/me", status: http.StatusUnauthorized, code: response.ErrTokenRequired},
		{name: "garbage token", target: "/me", auth: "Bearer nope", status: http.StatusUnauthorized, code: response.ErrTokenInvalid},
		{name: "expired token", target: "/me", auth: "Bearer expired", status: http.StatusUnauthorized, code: response.ErrTokenExpired},
		{name: "admin token", target: "/me", auth: "Bearer admin", status: http.StatusForbidden, code: response.ErrStudentAccessOnly},
		{name: "student header", target: "/me", auth: "bearer student", status: http.StatusOK},
		{name: "student query", target: "/me?token=student", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.auth != "" {
				h.Set("Authorization", tt.auth)
			}
			w := serve(r, http.MethodGet, tt.target, h)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
			} else {
				assert.Equal(t, "7", w.Body.String())
			}
		})
	}
}

func TestRequireAdminJWTRejectsStudents(t *testing.T) {
	tokens := fakeTokens{"student": studentClaims(7, "jti-1")}
	r := gin.New()
	r.GET("/admin", RequireAdminJWT(tokens), ok)

	h := http.Header{}
	h.Set("Authorization", "Bearer student")
	w := serve(r, http.MethodGet, "/admin", h)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrAdminAccessOnly, errorCode(t, w))
}

func TestRequireStudentWSAuthIgnoresHeader(t *testing.T) {
	tokens := fakeTokens{"student": studentClaims(7, "jti-1")}
	r := gin.New()
	r.GET("/ws", RequireStudentWSAuth(tokens), ok)

	h := http.Header{}
	h.Set("Authorization", "Bearer student")
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/ws", h).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ws?token=student", nil).Code)
}

func TestCheckStudentSession(t *testing.T) {
	tokens := fakeTokens{
		"current": studentClaims(7, "jti-new"),
		"stale":   studentClaims(7, "jti-old"),
		"admin":   adminClaims(),
	}
	sessions := fakeSessions{7: "jti-new"}

	r := gin.New()
	r.GET("/student", RequireStudentJWT(tokens), CheckStudentSession(sessions), ok)
	r.GET("/admin", RequireAdminJWT(tokens), CheckStudentSession(sessions), ok)

	auth := func(tok string) http.Header {
		h := http.Header{}
		h.Set("Authorization", "Bearer "+tok)
		return h
	}

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/student", auth("current")).Code)

	w := serve(r, http.MethodGet, "/student", auth("stale"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrSessionInvalidated, errorCode(t, w))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin", auth("admin")).Code)
}

func TestRequirePermission(t *testing.T) {
	tokens := fakeTokens{
		"reader":    adminClaims(model.PermissionResultsRead),
		"registrar": adminClaims(model.PermissionResultsRead, model.PermissionResultsWrite),
	}
	r := gin.New()
	admin := r.Group("/", RequireAdminJWT(tokens))
	admin.GET("/results", RequirePermission(model.PermissionResultsRead), ok)
	admin.POST("/results", RequirePermission(model.PermissionResultsWrite), ok)
	admin.POST("/recalc", RequireAnyPermission(model.PermissionGradesRecalculate, model.PermissionResultsWrite), ok)

	tests := []struct {
		token  string
		method string
		path   string
		status int
	}{
		{"reader", http.MethodGet, "/results", http.StatusOK},
		{"reader", http.MethodPost, "/results", http.StatusForbidden},
		{"reader", http.MethodPost, "/recalc", http.StatusForbidden},
		{"registrar", http.MethodPost, "/results", http.StatusOK},
		{"registrar", http.MethodPost, "/recalc", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.token+" "+tt.method+" "+tt.path, func(t *testing.T) {
			h := http.Header{}
			h.Set("Authorization", "Bearer "+tt.token)
			w := serve(r, tt.method, tt.path, h)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, response.ErrPermissionDenied, errorCode(t, w))
			}
		})
	}
}

func TestRequirePermissionWithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequirePermission(model.PermissionSettingsRead), ok)

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, allowed)

	allowed, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, allowed, "buckets are per key")

	now = now.Add(time.Minute)
	allowed, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, allowed, "bucket refills after the interval")
}

func TestMemoryLimiterCleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "1.2.3.4")
	now = now.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "5.6.7.8")

	now = now.Add(40 * time.Second)
	assert.Equal(t, 1, l.Cleanup())
	assert.NotContains(t, l.visitors, "1.2.3.4")
	assert.Contains(t, l.visitors, "5.6.7.8")

	allowed, _ := l.Allow(ctx, "5.6.7.8")
	assert.False(t, allowed, "recent visitor keeps its spent bucket")
	allowed, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, allowed, "evicted visitor starts with a full bucket")
}

func TestMemoryLimiterRunStops(t *testing.T) {
	l := NewMemoryLimiter(1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewAuthLimiter(t *testing.T) {
	l, err := NewAuthLimiter(config.RateLimitStoreMemory, nil, 5, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &MemoryLimiter{}, l)

	l, err = NewAuthLimiter(config.RateLimitStoreRedis, nil, 5, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &RedisLimiter{}, l)

	_, err = NewAuthLimiter("memcached", nil, 5, time.Minute)
	assert.Error(t, err)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(NewMemoryLimiter(1, time.Hour), zerolog.Nop()), ok)
	r.POST("/open", RateLimit(failingLimiter{}, zerolog.Nop()), ok)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login", nil).Code)

	w := serve(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.ErrRateLimitExceeded, errorCode(t, w))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/open", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/open", nil).Code)
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.GET("/x", NoStore(), ok)

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
