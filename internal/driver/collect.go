package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Input is one collected unit.
type Input struct {
	Path string
	// Rel is Path relative to the argument it was found under; out-dir
	// destinations keep this layout.
	Rel string
}

// ErrNoUnits is returned when the arguments name no Python files.
var ErrNoUnits = errors.New("no .py files found")

// CollectFiles expands the arguments into sorted *.py units. Directories are
// walked recursively; a path matching one of the exclude globs (slash
// separated, relative to its argument) is skipped, directories included.
func CollectFiles(ctx context.Context, paths, exclude []string) ([]Input, error) {
	var files []Input
	seen := make(map[string]struct{})
	add := func(path, rel string) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, Input{Path: clean, Rel: filepath.ToSlash(rel)})
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			// явно названный файл берём даже без расширения .py
			add(p, filepath.Base(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(p, path)
			if err != nil {
				return err
			}
			if rel != "." && excluded(filepath.ToSlash(rel), exclude) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && filepath.Ext(path) == ".py" {
				add(path, rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
