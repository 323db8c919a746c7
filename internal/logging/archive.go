package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultArchiveThreshold is the size above which a log file gets archived.
const DefaultArchiveThreshold = 50 * 1024 * 1024

// ArchiveLogs gzips every *.log file in dir larger than threshold into
// dir/archive with a timestamp suffix, then truncates the original in place
// so open handles keep working. Returns the archive paths written.
func ArchiveLogs(dir string, threshold int64) ([]string, error) {
	if threshold <= 0 {
		threshold = DefaultArchiveThreshold
	}
	logs, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return nil, err
	}

	archived := make([]string, 0)
	for _, path := range logs {
		info, err := os.Stat(path)
		if err != nil || info.Size() <= threshold {
			continue
		}
		dst, err := archiveOne(dir, path)
		if err != nil {
			return archived, fmt.Errorf("archive %s: %w", filepath.Base(path), err)
		}
		archived = append(archived, dst)
	}
	return archived, nil
}

func archiveOne(dir, path string) (string, error) {
	archiveDir := filepath.Join(dir, "archive")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(path), ".log")
	dst := filepath.Join(archiveDir,
		fmt.Sprintf("%s-%s.log.gz", base, time.Now().Format("20060102T150405")))

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, src); err != nil {
		out.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	return dst, os.Truncate(path, 0)
}
