// Package files discovers documents on disk for bulk ingestion and keeps
// the original bytes of uploads.
package files

import (
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludes matches every file type the extractors understand.
var DefaultIncludes = []string{"**/*.{pdf,docx,txt,md,markdown,html,htm}"}

// DefaultExcludes skips VCS metadata, dependency trees and dotfiles.
var DefaultExcludes = []string{"**/.git/**", "**/node_modules/**", "**/.*"}

// Walker lists files under an fs.FS that match include globs and no exclude glob.
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker creates a walker. Empty includes fall back to DefaultIncludes.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// Walk returns matching slash-separated paths relative to the root of fsys, sorted.
func (w *Walker) Walk(fsys fs.FS) ([]string, error) {
	var paths []string

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}

		if d.IsDir() {
			if w.excluded(path) || w.excluded(path+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if w.included(path) && !w.excluded(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func (w *Walker) included(path string) bool {
	return matchAny(w.includes, path)
}

func (w *Walker) excluded(path string) bool {
	return matchAny(w.excludes, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}
