package config

import (
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "PROJECTION_CREDIT_WEIGHT", "DEFAULT_REMAINING_UNITS", "GPA_CACHE_TTL_MINUTES", "RECALC_CRON", "ALLOWED_ORIGINS", "JWT_EXPIRY_HOURS", "RATE_LIMIT_STORE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 3, cfg.ProjectionCreditWeight)
	assert.Equal(t, 8, cfg.DefaultRemainingUnits)
	assert.Equal(t, 30*time.Minute, cfg.GPACacheTTL)
	assert.Equal(t, "0 2 * * *", cfg.RecalcCron)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Equal(t, RateLimitStoreRedis, cfg.RateLimitStore)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROJECTION_CREDIT_WEIGHT", "4")
	t.Setenv("GPA_CACHE_TTL_MINUTES", "5")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("RATE_LIMIT_STORE", "memory")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.example.ac.ke, ,https://admin.example.ac.ke")

	cfg := Load()

	assert.Equal(t, 4, cfg.ProjectionCreditWeight)
	assert.Equal(t, 5*time.Minute, cfg.GPACacheTTL)
	assert.EqualValues(t, 16, cfg.MaxDBConns)
	assert.Equal(t, RateLimitStoreMemory, cfg.RateLimitStore)
	assert.Equal(t, []string{"https://portal.example.ac.ke", "https://admin.example.ac.ke"}, cfg.AllowedOrigins)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "login:7", CacheKey.StudentSessionKey(7))
	assert.Equal(t, "student:7:gpa", CacheKey.StudentGPAKey(7))
	assert.Equal(t, "student:7:year:3:gpa", CacheKey.StudentYearGPAKey(7, 3))
	assert.Equal(t, "student:7:gpa_updates", CacheKey.StudentGPAChannel(7))
	assert.Equal(t, "ratelimit:auth:10.0.0.1", CacheKey.AuthRateLimitKey("10.0.0.1"))
	assert.Equal(t, "recalc_gpa_queue", WorkerKey.RecalcGPAQueue)
}

func TestGenerationKeysOutsideStandingPatterns(t *testing.T) {
	assert.Equal(t, "student:7:gpa_gen", CacheKey.StudentGPAGenKey(7))
	assert.Equal(t, "settings:gpa_gen", CacheKey.GPAGenKey())

	for _, pattern := range []string{CacheKey.StudentGPAKeyPattern(7), "student:*gpa"} {
		matched, err := path.Match(pattern, CacheKey.StudentGPAGenKey(7))
		assert.NoError(t, err)
		assert.False(t, matched, pattern)

		matched, err = path.Match(pattern, CacheKey.StudentYearGPAKey(7, 3))
		assert.NoError(t, err)
		assert.True(t, matched, pattern)
	}
}
