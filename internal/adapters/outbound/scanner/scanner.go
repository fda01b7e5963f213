// Package scanner walks package directories into immutable tree snapshots.
package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/portlint/portlint/internal/domain"
)

// TreeScanner implements domain.PackageScanner by walking the filesystem.
type TreeScanner struct{}

func New() *TreeScanner {
	return &TreeScanner{}
}

// Scan walks dir recursively and records every file and directory below it.
func (s *TreeScanner) Scan(dir string) (*domain.TreeSnapshot, error) {
	return s.scan(dir, 0, false)
}

// ScanShallow walks dir at most depth levels deep. A missing dir is treated
// as an empty, optional directory.
func (s *TreeScanner) ScanShallow(dir string, depth int) (*domain.TreeSnapshot, error) {
	return s.scan(dir, depth, true)
}

func (s *TreeScanner) scan(dir string, maxDepth int, optional bool) (*domain.TreeSnapshot, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.TreeSnapshot{Root: absPath}

	walkErr := filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if path == absPath {
			return nil
		}

		rel, err := filepath.Rel(absPath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if maxDepth > 0 && strings.Count(rel, "/")+1 > maxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entry := domain.TreeEntry{RelPath: rel, IsDir: d.IsDir()}
		if !d.IsDir() {
			entry.Ext = strings.ToLower(filepath.Ext(rel))
		}
		snapshot.Entries = append(snapshot.Entries, entry)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return snapshot, nil
}
