package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// TreeEntry is one file or directory inside a package tree, identified by its
// slash-separated path relative to the tree root.
type TreeEntry struct {
	RelPath string `json:"rel_path"`
	IsDir   bool   `json:"is_dir"`
	Ext     string `json:"ext,omitempty"`
}

// Base returns the final path element of the entry.
func (e TreeEntry) Base() string { return path.Base(e.RelPath) }

// TreeSnapshot is an immutable view of one built package's output directory.
// Entries are ordered lexically by relative path and are never mutated by the
// validation core.
type TreeSnapshot struct {
	Root    string      `json:"root"`
	Entries []TreeEntry `json:"entries"`
}

// Abs resolves an entry path against the snapshot root.
func (s *TreeSnapshot) Abs(relPath string) string {
	return filepath.Join(s.Root, filepath.FromSlash(relPath))
}

// Exists reports whether relPath is present in the snapshot as a file or
// directory.
func (s *TreeSnapshot) Exists(relPath string) bool {
	for _, e := range s.Entries {
		if e.RelPath == relPath {
			return true
		}
	}
	return false
}

// DirExists reports whether relPath is present as a directory.
func (s *TreeSnapshot) DirExists(relPath string) bool {
	for _, e := range s.Entries {
		if e.IsDir && e.RelPath == relPath {
			return true
		}
	}
	return false
}

// HasEntriesUnder reports whether anything exists below dir.
func (s *TreeSnapshot) HasEntriesUnder(dir string) bool {
	prefix := dir + "/"
	for _, e := range s.Entries {
		if strings.HasPrefix(e.RelPath, prefix) {
			return true
		}
	}
	return false
}

// FilesUnder returns all files (recursively) below dir, in snapshot order.
// dir == "" means the whole tree.
func (s *TreeSnapshot) FilesUnder(dir string) []TreeEntry {
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	var out []TreeEntry
	for _, e := range s.Entries {
		if e.IsDir {
			continue
		}
		if prefix == "" || strings.HasPrefix(e.RelPath, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// FilesWithExtUnder returns all files below dir whose extension equals ext
// (lowercase, including the dot).
func (s *TreeSnapshot) FilesWithExtUnder(dir, ext string) []TreeEntry {
	var out []TreeEntry
	for _, e := range s.FilesUnder(dir) {
		if e.Ext == ext {
			out = append(out, e)
		}
	}
	return out
}

// FilesDirectlyIn returns the files whose parent directory is exactly dir.
// dir == "" means the tree root.
func (s *TreeSnapshot) FilesDirectlyIn(dir string) []TreeEntry {
	var out []TreeEntry
	for _, e := range s.Entries {
		if e.IsDir {
			continue
		}
		if path.Dir(e.RelPath) == dirOrDot(dir) {
			out = append(out, e)
		}
	}
	return out
}

// EmptyDirs returns every directory in the snapshot that contains no entries.
func (s *TreeSnapshot) EmptyDirs() []TreeEntry {
	var out []TreeEntry
	for _, e := range s.Entries {
		if e.IsDir && !s.HasEntriesUnder(e.RelPath) {
			out = append(out, e)
		}
	}
	return out
}

func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
