// Package scan finds candidate documents under an input directory.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Options controls which files are returned.
type Options struct {
	// Extensions to accept, lowercase with leading dot. Empty accepts none.
	Extensions []string
	// SkipHidden skips dot-files and dot-directories, except the root.
	SkipHidden bool
	// Exclude skips everything under this directory, typically the output
	// directory when it lives inside the input tree.
	Exclude string
}

// Files walks root and returns regular files whose extension is in
// opts.Extensions, in lexical order. Symlinks are not followed. Unreadable
// subdirectories are skipped; an unreadable root is an error.
func Files(ctx context.Context, root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input %q is not a directory", root)
	}

	allowed := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		allowed[strings.ToLower(ext)] = true
	}
	exclude := ""
	if opts.Exclude != "" {
		if abs, err := filepath.Abs(opts.Exclude); err == nil {
			exclude = abs
		}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if exclude != "" {
				if abs, err := filepath.Abs(path); err == nil && abs == exclude {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}
	return files, nil
}
