package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checktrack/checktrack/internal/config"
	"github.com/checktrack/checktrack/internal/store/csvstore"
)

func writeConfig(t *testing.T, dir string, mutate func(*config.Config)) {
	t.Helper()
	cfg := config.Default("Test")
	cfg.Import.Timezone = "UTC"
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))
}

func TestOpen_NotInitialized(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir(), io.Discard)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestOpen_CSVStore(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, nil)

	a, err := Open(context.Background(), dir, io.Discard)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &csvstore.Store{}, a.Store)
	assert.Equal(t, "UTC", a.Clock.Now().Location().String())
	assert.Equal(t, dir, a.Git.Dir)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, nil)
	t.Setenv(config.EnvAddr, "0.0.0.0:9000")
	t.Setenv(config.EnvLogLevel, "debug")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, func(c *config.Config) { c.Store.Driver = "mongo" })

	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "store.driver")
}
