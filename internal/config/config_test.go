package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerbook/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadBytes)
	assert.Equal(t, 5, cfg.Import.PreviewRows)
	assert.False(t, cfg.Import.KeepZeroAmounts)
}

func TestConfig_ConnectionString(t *testing.T) {
	var cfg config.Config
	cfg.DB.Host = "db"
	cfg.DB.Port = 5433
	cfg.DB.User = "ledger"
	cfg.DB.Password = "secret"
	cfg.DB.Name = "ledgerbook"

	assert.Equal(t, "postgres://ledger:secret@db:5433/ledgerbook?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("IMPORT_KEEP_ZERO_AMOUNTS", "true")
	t.Setenv("DB_NAME", "budget")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Import.KeepZeroAmounts)
	assert.Equal(t, "budget", cfg.DB.Name)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("IMPORT_PREVIEW_ROWS", "many")

	_, err := config.Load()
	assert.Error(t, err)
}
