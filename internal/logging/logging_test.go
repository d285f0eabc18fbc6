package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"app-2026-10-19.log", "app-2026-10-13.log", "app-2026-10-12.log", "app-bad.log", "other.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	CleanupOldLogs(dir, 7, now)

	assert.FileExists(t, filepath.Join(dir, "app-2026-10-19.log"))
	assert.FileExists(t, filepath.Join(dir, "app-2026-10-13.log"))
	assert.NoFileExists(t, filepath.Join(dir, "app-2026-10-12.log"))
	assert.FileExists(t, filepath.Join(dir, "app-bad.log"))
	assert.FileExists(t, filepath.Join(dir, "other.txt"))
}

func TestSetupWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()

	cleanup, err := Setup(logger, dir, 3, "debug")
	require.NoError(t, err)
	logger.WithField("component", "test").Info("hello")
	cleanup()

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	content, err := os.ReadFile(filepath.Join(dir, "app-"+time.Now().Format(dateLayout)+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
	assert.Contains(t, string(content), "component=test")
}
