package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("ADMIN_SESSION_TTL", "30m")
	t.Setenv("SITE_URL", "https://duvarkagidi.example/")
	t.Setenv("ADMIN_PASSWORD", "s3cret-pass")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AdminSessionTTL)
	assert.Equal(t, "https://duvarkagidi.example", cfg.SiteURL)
	assert.Equal(t, "s3cret-pass", cfg.Seed.AdminPassword)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestLoad_SiteURLFallsBackToPublicBase(t *testing.T) {
	t.Setenv("SITE_URL", "")
	t.Setenv("NEXT_PUBLIC_BASE_URL", "https://magaza.example")

	cfg := Load()

	assert.Equal(t, "https://magaza.example", cfg.SiteURL)
	assert.Equal(t, "https://magaza.example", cfg.CORSOrigins)
}

func TestClientBaseURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("API_URL", "")
	t.Setenv("NEXT_PUBLIC_BACKEND_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://api.example/")
	assert.Equal(t, "http://api.example", ClientBaseURL())

	t.Setenv("BACKEND_URL", "http://internal:8080")
	assert.Equal(t, "http://internal:8080", ClientBaseURL())
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Minute))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}
