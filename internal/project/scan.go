// Package project creates, discovers and remembers C/C++ project
// directories, and scaffolds class and struct files inside them.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/projcpp/projcpp/internal/log"
)

var logger = log.Named("project")

// IsProjectDir reports whether a directory listing marks a project: any
// entry whose name contains a dot.
func IsProjectDir(names []string) bool {
	for _, n := range names {
		if strings.Contains(n, ".") {
			return true
		}
	}
	return false
}

// Scan walks root and returns the project directories below it, sorted. The
// root is reported when it qualifies and is always descended; other
// directories stop the descent once they qualify. Symlinks are not followed.
func Scan(ctx context.Context, root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var found []string
	if IsProjectDir(entryNames(entries)) {
		found = append(found, root)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found = append(found, scanDir(ctx, filepath.Join(root, e.Name()))...)
	}

	sort.Strings(found)
	logger.Printf("scan %s: %d projects", root, len(found))
	return found, nil
}

func scanDir(ctx context.Context, dir string) []string {
	info, err := os.Lstat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Printf("scan: skipping %s: %v", dir, err)
		return nil
	}
	if IsProjectDir(entryNames(entries)) {
		return []string{dir}
	}

	var found []string
	for _, e := range entries {
		if ctx.Err() != nil {
			return found
		}
		found = append(found, scanDir(ctx, filepath.Join(dir, e.Name()))...)
	}
	return found
}

func entryNames(entries []os.DirEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
