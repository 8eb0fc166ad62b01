package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/bigby/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsValid(t *testing.T) {
	cfg := config.Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "bigby", cfg.App.Name)
	assert.Equal(t, time.Second/60, cfg.Ticker.FixedStep)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "bigby.toml", `
[app]
name = "arena"
startup_concurrency = 4
startup_timeout = "2s"

[ticker]
fixed_step = "10ms"
max_steps = 3

[logging]
level = "debug"
format = "json"

[script]
paths = ["a.lua", "b.lua"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "arena", cfg.App.Name)
	assert.Equal(t, 4, cfg.App.StartupConcurrency)
	assert.Equal(t, 2*time.Second, cfg.App.StartupTimeout)
	assert.Equal(t, 10*time.Millisecond, cfg.Ticker.FixedStep)
	assert.Equal(t, 3, cfg.Ticker.MaxSteps)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"a.lua", "b.lua"}, cfg.Script.Paths)

	// Untouched sections keep their defaults.
	assert.Equal(t, time.Second/60, cfg.Ticker.Interval)
	assert.Equal(t, 120, cfg.DebugUI.HistoryFrames)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "bigby.yaml", `
app:
  name: arena
ticker:
  fixed_step: 20ms
debug_ui:
  enabled: true
  history_frames: 30
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "arena", cfg.App.Name)
	assert.Equal(t, 20*time.Millisecond, cfg.Ticker.FixedStep)
	assert.True(t, cfg.DebugUI.Enabled)
	assert.Equal(t, 30, cfg.DebugUI.HistoryFrames)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "bigby.ini", "x=1"))
		assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
	})

	t.Run("bad syntax", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "bigby.toml", "[app\nname ="))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "bigby.toml", "[ticker]\nmax_steps = 0\n"))
		assert.ErrorContains(t, err, "ticker.max_steps")

		_, err = config.Load(writeFile(t, "bigby.yml", "logging:\n  format: xml\n"))
		assert.ErrorContains(t, err, "logging.format")
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	cfg, err := config.LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)

	t.Setenv(config.EnvPath, writeFile(t, "bigby.toml", "[app]\nname = \"env\"\n"))
	cfg, err = config.LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.App.Name)
}

func TestNewLogger(t *testing.T) {
	logger, err := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = config.NewLogger(config.LoggingConfig{Level: "nonsense"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
