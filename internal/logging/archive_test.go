package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArchiveLogsSkipsSmallFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte("short"), 0o644))

	archived, err := ArchiveLogs(dir, 1024)
	require.NoError(t, err)
	require.Empty(t, archived)
}

func TestArchiveLogsCompressesAndTruncates(t *testing.T) {
	dir := t.TempDir()
	big := bytes.Repeat([]byte("0123456789abcdef\n"), 256)
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, big, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.log"), []byte("tiny"), 0o644))

	archived, err := ArchiveLogs(dir, 1024)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	require.FileExists(t, archived[0])
	require.Equal(t, filepath.Join(dir, "archive"), filepath.Dir(archived[0]))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}
