package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "STORE_DRIVER", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER",
		"POSTGRES_PASSWORD", "POSTGRES_DB", "BOLT_PATH", "DATASET_PATH", "JWT_SECRET",
		"GOOGLE_CLIENT_ID", "COOKIE_DOMAIN", "SESSION_PATH", "CANDIDATES", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, domain.DefaultCandidates, cfg.CandidateList())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", DriverBolt)
	t.Setenv("BOLT_PATH", "/tmp/votes.db")
	t.Setenv("CANDIDATES", "Harris, Trump ,Stein")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverBolt, cfg.StoreDriver)
	assert.Equal(t, "/tmp/votes.db", cfg.BoltPath)
	assert.Equal(t, []domain.Candidate{"Harris", "Trump", "Stein"}, cfg.CandidateList())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "salesvote.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7070
store_driver: memory
dataset_path: /data/sales.csv
postgres:
  host: db.internal
candidates: [A, B]
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATASET_PATH", "/override.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "5432", cfg.Postgres.Port, "defaults survive a partial file")
	assert.Equal(t, "/override.csv", cfg.DatasetPath, "environment wins over the file")
	assert.Equal(t, []domain.Candidate{"A", "B"}, cfg.CandidateList())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("STORE_DRIVER", "mongo")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")

	clearEnv(t)
	t.Setenv("CANDIDATES", "A,A")
	_, err = Load()
	assert.ErrorContains(t, err, "listed twice")

	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestValidateAuth(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err, "commands without accounts still load")
	assert.ErrorIs(t, cfg.ValidateAuth(), ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "  ")
	cfg, err = Load()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.ValidateAuth(), ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.ValidateAuth())
}
