package logger_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/pkg/logger"
)

func TestInitAndLog(t *testing.T) {
	cfg := logger.Config{
		Level: "debug",
		Path:  filepath.Join(t.TempDir(), "logs"),
	}
	require.NoError(t, logger.Init(cfg))

	logger.Debug("debug msg")
	logger.Info("info msg", zap.String("k", "v"))
	logger.Warn("warn msg")
	logger.Error("error msg")

	assert.NotNil(t, logger.GetLogger())

	// Init is once-only; a second call must not error.
	require.NoError(t, logger.Init(cfg))

	_ = logger.Sync()
}

func TestSanitizeDefaults(t *testing.T) {
	var cfg logger.Config
	cfg.Sanitize()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "./logs", cfg.Path)
}

func TestSanitizeCoercesUnrecognizedValues(t *testing.T) {
	cfg := logger.Config{Level: "verbose", Format: "xml", Path: "/tmp/logs"}
	cfg.Sanitize()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "/tmp/logs", cfg.Path)

	cfg = logger.Config{Level: "WARN"}
	cfg.Sanitize()
	assert.Equal(t, "warn", cfg.Level)
}
