package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCreatesLogFilesOnFirstWrite(t *testing.T) {
	dir := t.TempDir()
	loggers, err := New(dir)
	require.NoError(t, err)
	defer loggers.Sync()

	loggers.App.Info("application started")
	loggers.LogException(errors.New("disk on fire"))
	loggers.LogAPIRequest("GET", "/api/chat", 200, 145500*time.Microsecond)

	app, err := os.ReadFile(filepath.Join(dir, AppLogFile))
	require.NoError(t, err)
	require.Contains(t, string(app), "application started")
	require.Contains(t, string(app), " - INFO - ")
	require.Contains(t, string(app), "intellichat")

	errLog, err := os.ReadFile(filepath.Join(dir, ErrorLogFile))
	require.NoError(t, err)
	require.Contains(t, string(errLog), "exception occurred")
	require.Contains(t, string(errLog), "disk on fire")
	require.Contains(t, string(errLog), " - ERROR - ")

	api, err := os.ReadFile(filepath.Join(dir, APILogFile))
	require.NoError(t, err)
	require.Contains(t, string(api), "GET /api/chat - 200 - 145.50ms")
}

func TestAppLogOnlyReceivesInfoAndAbove(t *testing.T) {
	dir := t.TempDir()
	loggers, err := New(dir)
	require.NoError(t, err)
	defer loggers.Sync()

	loggers.App.Debug("hidden")
	loggers.App.Warn("visible")

	app, err := os.ReadFile(filepath.Join(dir, AppLogFile))
	require.NoError(t, err)
	require.NotContains(t, string(app), "hidden")
	require.Contains(t, string(app), "visible")
}

func TestLogStartupBanner(t *testing.T) {
	dir := t.TempDir()
	loggers, err := New(dir)
	require.NoError(t, err)
	defer loggers.Sync()

	loggers.LogStartup(dir)

	app, err := os.ReadFile(filepath.Join(dir, AppLogFile))
	require.NoError(t, err)
	require.Contains(t, string(app), "IntelliChat starting")
	require.Contains(t, string(app), dir)
}
