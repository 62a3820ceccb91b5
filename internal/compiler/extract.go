package compiler

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ArchiveExtractor unpacks .7z (MinGW builds) and .zip toolchain archives.
type ArchiveExtractor struct{}

var _ Unpacker = ArchiveExtractor{}

type archiveEntry struct {
	name string
	info fs.FileInfo
	open func() (io.ReadCloser, error)
}

// Extract unpacks archive into dir, reporting entries written.
func (ArchiveExtractor) Extract(ctx context.Context, archive, dir string, progress func(done, total int64)) error {
	var (
		entries []archiveEntry
		closer  io.Closer
	)

	switch strings.ToLower(filepath.Ext(archive)) {
	case ".zip":
		r, err := zip.OpenReader(archive)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", archive, err)
		}
		closer = r
		for _, f := range r.File {
			entries = append(entries, archiveEntry{name: f.Name, info: f.FileInfo(), open: f.Open})
		}
	default:
		r, err := sevenzip.OpenReader(archive)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", archive, err)
		}
		closer = r
		for _, f := range r.File {
			entries = append(entries, archiveEntry{name: f.Name, info: f.FileInfo(), open: f.Open})
		}
	}
	defer closer.Close()

	total := int64(len(entries))
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeEntry(dir, e); err != nil {
			return err
		}
		if progress != nil {
			progress(int64(i+1), total)
		}
	}
	logger.Printf("extracted %d entries from %s into %s", total, archive, dir)
	return nil
}

func writeEntry(dir string, e archiveEntry) error {
	const defaultDirPerms = 0o750

	target, err := safeJoin(dir, e.name)
	if err != nil {
		return err
	}

	if e.info.IsDir() {
		return os.MkdirAll(target, defaultDirPerms)
	}
	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerms); err != nil {
		return err
	}

	src, err := e.open()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", e.name, err)
	}
	defer src.Close()

	mode := e.info.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	// #nosec G304 -- target is checked to stay inside dir
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil { //nolint:gosec // toolchain archives are large by nature
		_ = dst.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return dst.Close()
}

// safeJoin rejects entries that would escape dir.
func safeJoin(dir, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(filepath.Clean(dir), target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes %s", name, dir)
	}
	return target, nil
}
