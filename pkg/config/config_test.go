package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, BackendMemory, cfg.Desk.Backend)
	assert.True(t, cfg.Desk.SeedDemoData)
	assert.Equal(t, time.Duration(0), cfg.Desk.SimulatedLatency)
	assert.Equal(t, time.Minute, cfg.Desk.SweepInterval)
	assert.Equal(t, 12*time.Hour, cfg.DeskToken.TTL)
	assert.Equal(t, 1, cfg.Audit.Workers)
}

func TestLoadFromEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("DESK_BACKEND", "Postgres")
	t.Setenv("DESK_SIMULATED_LATENCY", "250ms")
	t.Setenv("COLLEGE_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://desk.local, ,http://kiosk.local")
	t.Setenv("DB_NAME", "ragam")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Desk.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Desk.SimulatedLatency)
	assert.Equal(t, 5*time.Minute, cfg.Desk.CollegeCacheTTL)
	assert.Equal(t, []string{"http://desk.local", "http://kiosk.local"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "ragam", cfg.Database.Name)
}

func TestUnknownBackendFallsBackToMemory(t *testing.T) {
	inTempDir(t)
	t.Setenv("DESK_BACKEND", "mysql")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Desk.Backend)
}

// inTempDir keeps a developer's local .env out of the assertions.
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}
