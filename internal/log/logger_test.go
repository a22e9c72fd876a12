package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filedeck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info("info message")
	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "info message")
	buf.Reset()

	l.Warn("warn message")
	assert.Contains(t, buf.String(), "WARN: warn message")
	buf.Reset()

	l.Error("error message")
	assert.Contains(t, buf.String(), "ERROR: error message")
	buf.Reset()

	l.Infof("formatted %s", "message")
	assert.Contains(t, buf.String(), "formatted message")
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	SetDebug(false)
	l.Debug("debug message")
	assert.Empty(t, buf.String())

	SetDebug(true)
	defer SetDebug(false)
	l.Debug("debug message")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "debug message")
	buf.Reset()

	l.Debugf("formatted %s", "debug")
	assert.Contains(t, buf.String(), "formatted debug")
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.With(F("key1", "value1"), F("key2", 123)).Info("structured message")
	output := buf.String()
	assert.Contains(t, output, "structured message")
	assert.Contains(t, output, "key1=value1")
	assert.Contains(t, output, "key2=123")
	buf.Reset()

	l.With(F("key1", "value1")).With(F("key2", 123)).Info("chained fields")
	output = buf.String()
	assert.Contains(t, output, "key1=value1")
	assert.Contains(t, output, "key2=123")
}

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithJSON())

	l.With(F("path", "/photos"), F("count", 3)).Info("json message")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &logEntry))
	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, "json message", logEntry["message"])
	assert.Equal(t, "/photos", logEntry["path"])
	assert.Equal(t, float64(3), logEntry["count"])
	assert.Contains(t, logEntry, "timestamp")
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	keepLogger(t)
	Configure(WithOutput(&buf))

	LogWithFields(F("error", fmt.Errorf("standard error").Error())).Error("error occurred")
	assert.Contains(t, buf.String(), "error occurred")
	assert.Contains(t, buf.String(), "standard error")
	buf.Reset()

	fileErr := errors.NewFileError("create failed", "/photos/new", errors.AlreadyExists, nil)
	LogWithError(fileErr).Error("mkdir rejected")
	output := buf.String()
	assert.Contains(t, output, "mkdir rejected")
	assert.Contains(t, output, "path=/photos/new")
	assert.Contains(t, output, "error_kind=already_exists")
	buf.Reset()

	configErr := errors.NewConfigError("bad value", "settings.backend", errors.InvalidConfig, nil)
	LogError(configErr, "config rejected")
	output = buf.String()
	assert.Contains(t, output, "config rejected")
	assert.Contains(t, output, "param=settings.backend")
	buf.Reset()

	LogWithError(nil).Error("nil error test")
	assert.Contains(t, buf.String(), "error=<nil>")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filedeck.log")
	var buf bytes.Buffer

	l := NewLogger(WithOutput(&buf), WithFile(path))
	l.Info("file test message")
	require.NoError(t, l.Close())

	assert.Contains(t, buf.String(), "file test message")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file test message")
}

func TestConfigure(t *testing.T) {
	keepLogger(t)

	var buf bytes.Buffer
	Configure(WithOutput(&buf), WithJSON())
	Info("global config test")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &logEntry))
	assert.Equal(t, "global config test", logEntry["message"])
	assert.Same(t, current.Load(), Default())
}

func TestConfigureClosesReplacedFile(t *testing.T) {
	keepLogger(t)
	path := filepath.Join(t.TempDir(), "filedeck.log")

	Configure(WithOutput(io.Discard), WithFile(path))
	first := Default()
	require.NotNil(t, first.file)
	Info("before reconfigure")

	var buf bytes.Buffer
	Configure(WithOutput(&buf))
	Info("after reconfigure")

	_, err := first.file.WriteString("late line\n")
	assert.ErrorIs(t, err, os.ErrClosed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "before reconfigure")
	assert.NotContains(t, string(content), "after reconfigure")
	assert.Contains(t, buf.String(), "after reconfigure")
}

// keepLogger restores the package logger when the test ends.
func keepLogger(t *testing.T) {
	t.Helper()
	original := current.Load()
	t.Cleanup(func() { current.Store(original) })
}
