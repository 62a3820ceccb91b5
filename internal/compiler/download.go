package compiler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// HTTPFetcher downloads toolchain archives over HTTP(S).
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

var _ Fetcher = (*HTTPFetcher)(nil)

type progressWriter struct {
	w        io.Writer
	done     int64
	total    int64
	progress func(done, total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.done += int64(n)
	if p.progress != nil {
		p.progress(p.done, p.total)
	}
	return n, err
}

// Fetch streams url into dest, replacing any previous partial download.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string, progress func(done, total int64)) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid toolchain url: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	const defaultDirPerms = 0o750
	if err := os.MkdirAll(filepath.Dir(dest), defaultDirPerms); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}

	tmp := dest + ".part"
	// #nosec G304 -- dest is derived from the configured download directory
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	pw := &progressWriter{w: out, total: resp.ContentLength, progress: progress}
	logger.Printf("download %s -> %s (%d bytes)", url, dest, resp.ContentLength)
	if _, err := io.Copy(pw, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("download interrupted: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// FormatProgress renders "12 MB / 40 MB (30%)", or just the size when the
// total is unknown.
func FormatProgress(done, total int64) string {
	if total <= 0 {
		return humanize.Bytes(uint64(max(done, 0)))
	}
	pct := done * 100 / total
	return fmt.Sprintf("%s / %s (%d%%)", humanize.Bytes(uint64(max(done, 0))), humanize.Bytes(uint64(total)), pct)
}
