package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		checkFunc func(t *testing.T, logger *Logger, output *bytes.Buffer)
	}{
		{
			name: "json format with debug level",
			config: &Config{
				Level:      "debug",
				Format:     "json",
				TimeFormat: time.RFC3339,
			},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Debug("test debug message", slog.String("key", "value"))

				var logEntry map[string]interface{}
				err := json.Unmarshal(output.Bytes(), &logEntry)
				require.NoError(t, err)

				assert.Equal(t, "DEBUG", logEntry["level"])
				assert.Equal(t, "test debug message", logEntry["msg"])
				assert.Equal(t, "value", logEntry["key"])
			},
		},
		{
			name: "json format filters below info level",
			config: &Config{
				Level:      "info",
				Format:     "json",
				TimeFormat: time.RFC3339,
			},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Debug("debug message")
				logger.Info("info message", slog.String("type", "test"))

				lines := strings.Split(strings.TrimSpace(output.String()), "\n")
				assert.Len(t, lines, 1)

				var logEntry map[string]interface{}
				err := json.Unmarshal([]byte(lines[0]), &logEntry)
				require.NoError(t, err)

				assert.Equal(t, "INFO", logEntry["level"])
				assert.Equal(t, "info message", logEntry["msg"])
			},
		},
		{
			name: "console format with colors",
			config: &Config{
				Level:      "info",
				Format:     "console",
				TimeFormat: time.RFC3339,
			},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("console test")

				// tint abbreviates the level to "INF"
				logOutput := output.String()
				assert.Contains(t, logOutput, "INF")
				assert.Contains(t, logOutput, "console test")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			cfg := *tt.config
			cfg.writer = output

			logger, err := New(&cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)

			tt.checkFunc(t, logger, output)
		})
	}
}

func TestNew_FileTee(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	output := &bytes.Buffer{}

	logger, err := New(&Config{
		Level:      "info",
		Format:     "console",
		File:       logFile,
		TimeFormat: time.RFC3339,
		writer:     output,
	})
	require.NoError(t, err)

	logger.Info("persisted message", slog.String("worker", "w-0"))
	require.NoError(t, logger.Close())

	// Console side
	assert.Contains(t, output.String(), "persisted message")

	// File side gets JSON records
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &logEntry))
	assert.Equal(t, "persisted message", logEntry["msg"])
	assert.Equal(t, "w-0", logEntry["worker"])
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
	assert.NoError(t, logger.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{name: "debug level", level: "debug", expected: slog.LevelDebug},
		{name: "info level", level: "info", expected: slog.LevelInfo},
		{name: "warn level", level: "warn", expected: slog.LevelWarn},
		{name: "warning alias", level: "warning", expected: slog.LevelWarn},
		{name: "error level", level: "error", expected: slog.LevelError},
		{name: "invalid level defaults to info", level: "invalid", expected: slog.LevelInfo},
		{name: "empty string defaults to info", level: "", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLogger_With(t *testing.T) {
	output := &bytes.Buffer{}

	logger, err := New(&Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: time.RFC3339,
		writer:     output,
	})
	require.NoError(t, err)

	contextLogger := logger.With(
		slog.String("service", "dispatcher"),
		slog.Int("workers", 3),
	)
	require.NotNil(t, contextLogger)

	contextLogger.Info("run complete")

	var logEntry map[string]interface{}
	err = json.Unmarshal(output.Bytes(), &logEntry)
	require.NoError(t, err)

	assert.Equal(t, "dispatcher", logEntry["service"])
	assert.Equal(t, float64(3), logEntry["workers"])
	assert.Equal(t, "run complete", logEntry["msg"])
}
