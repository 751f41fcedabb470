package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdb "github.com/yungbote/sealant-catalog-backend/internal/data/db"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("PREVIEW_LIMIT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := LoadConfig(nil)
	assert.Equal(t, catalogdb.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.PreviewLimit)
	assert.Equal(t, 50, cfg.AuditPageLimit)
	assert.Equal(t, 2*time.Minute, cfg.PromotionLockTTL)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("REDIS_PROMOTION_LOCK_TTL", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := LoadConfig(nil)
	assert.Equal(t, catalogdb.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.DB.SQLitePath)
	assert.Equal(t, 45*time.Second, cfg.PromotionLockTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CATALOG_TEST_ONLY_VAR=from-file\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("CATALOG_TEST_ONLY_VAR", "")
	require.NoError(t, os.Unsetenv("CATALOG_TEST_ONLY_VAR"))

	require.NoError(t, LoadEnvFile())
	assert.Equal(t, "from-file", os.Getenv("CATALOG_TEST_ONLY_VAR"))

	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	assert.NoError(t, LoadEnvFile())
}

func TestNewWiresSQLiteApp(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "catalog.db"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("OTEL_ENABLED", "false")

	a, err := New(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	a.Start()

	assert.Nil(t, a.Clients.Redis)
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := strings.NewReader(`{"name":"boot","created_by":"tester"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/backups", body)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
