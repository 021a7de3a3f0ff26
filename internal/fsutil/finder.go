// Package fsutil provides file system utility functions.
package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one file or directory found below a walk root.
type Entry struct {
	// Rel is the slash separated path relative to the walk root.
	Rel   string
	IsDir bool
}

// WalkTree recursively lists everything below rootPath in lexical order,
// skipping hidden entries (leading dot) and whatever lies beneath them. The
// root itself is not included.
func WalkTree(rootPath string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == rootPath {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Rel: filepath.ToSlash(rel), IsDir: d.IsDir()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// WaitForPath polls path until it exists or ctx is done. Errors other than
// "does not exist" are returned immediately.
func WaitForPath(ctx context.Context, path string, interval time.Duration) (fs.FileInfo, error) {
	if interval <= 0 {
		panic("interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		info, err := os.Stat(path)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
