package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fiado/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Fiado", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "CLP", cfg.App.Currency)
	assert.Equal(t, "fiado.db", cfg.DB.Path)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/data/tienda.db")
	t.Setenv("CURRENCY", " eur ")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,http://tienda.local")
	t.Setenv("SERVER_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "/data/tienda.db", cfg.DB.Path)
	assert.Equal(t, "EUR", cfg.App.Currency)
	assert.Equal(t, []string{"http://localhost:5173", "http://tienda.local"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "http")

	_, err := config.Load()
	assert.Error(t, err)
}
