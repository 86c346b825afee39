package pathspec

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WalkFunc receives every non-directory entry with the mode of its target.
// A dangling symlink is passed with fs.ModeSymlink.
type WalkFunc func(path string, mode fs.FileMode) error

// Walk visits the tree under root depth-first in lexical order. Symlinked
// directories are followed once; a link back into an ancestor is skipped.
func Walk(root string, fn WalkFunc) error {
	visited := map[string]bool{}
	return walk(root, visited, fn)
}

func walk(dir string, visited map[string]bool, fn WalkFunc) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	if visited[resolved] {
		return nil
	}
	visited[resolved] = true
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		mode := e.Type()
		if mode&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil {
				mode = info.Mode()
			}
		}
		if mode.IsDir() {
			if err := walk(path, visited, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(path, mode); err != nil {
			return err
		}
	}
	return nil
}
