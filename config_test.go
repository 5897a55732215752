package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CIPHERS_SOCKET", "CIPHERS_LOG_LEVEL", "CIPHERS_COLOR", "NO_COLOR"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
menu:
  color: never
  show_trace: true
  letters_only: true
socket:
  path: /tmp/other.sock
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "never", cfg.Menu.Color)
	assert.True(t, cfg.Menu.ShowTrace)
	assert.True(t, cfg.Menu.LettersOnly)
	assert.Equal(t, "/tmp/other.sock", cfg.Socket.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"stderr"}, cfg.Logging.OutputPaths, "unset keys keep their defaults")
}

func TestConfigSaveRoundTrip(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Menu.HistoryFile = "/tmp/ciphers_history"
	cfg.Logging.OutputPaths = []string{"stdout", "/tmp/ciphers.log"}
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CIPHERS_SOCKET", "/tmp/env.sock")
	t.Setenv("CIPHERS_LOG_LEVEL", "info")
	t.Setenv("CIPHERS_COLOR", "always")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.sock", cfg.Socket.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "always", cfg.Menu.Color)

	t.Setenv("NO_COLOR", "1")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "never", cfg.Menu.Color)
}

func TestConfigInvalid(t *testing.T) {
	clearConfigEnv(t)

	tests := []struct {
		data string
		desc string
	}{
		{"menu:\n  color: sometimes\n", "Unknown color"},
		{"logging:\n  format: xml\n", "Unknown log format"},
		{"socket:\n  path: \"\"\n", "Empty socket path"},
		{"menu: [not, a, map\n", "Broken YAML"},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(test.data), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputPaths: []string{"stderr"}}, false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(LoggingConfig{Level: "error", Format: "console"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "verbose forces debug")

	logger, err = NewLogger(LoggingConfig{}, false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger(LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}
