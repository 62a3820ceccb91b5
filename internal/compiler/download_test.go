package compiler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	payload := strings.Repeat("7z", 4096)
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.UserAgent()
		if r.URL.Path == "/missing.7z" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	f := &HTTPFetcher{Client: srv.Client(), UserAgent: "projcpp/test"}

	t.Run("writes the archive and reports progress", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "nested", "mingw.7z")
		var last int64
		err := f.Fetch(context.Background(), srv.URL+"/mingw.7z", dest, func(done, _ int64) { last = done })
		require.NoError(t, err)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, payload, string(data))
		assert.Equal(t, int64(len(payload)), last)
		assert.Equal(t, "projcpp/test", gotAgent)
		assert.NoFileExists(t, dest+".part")
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "mingw.7z")
		err := f.Fetch(context.Background(), srv.URL+"/missing.7z", dest, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.NoFileExists(t, dest)
	})

	t.Run("bad url", func(t *testing.T) {
		err := f.Fetch(context.Background(), "://nope", filepath.Join(t.TempDir(), "x"), nil)
		require.Error(t, err)
	})
}

func TestFormatProgress(t *testing.T) {
	assert.Equal(t, "1.5 kB", FormatProgress(1500, 0))
	assert.Equal(t, "5.0 MB / 10 MB (50%)", FormatProgress(5_000_000, 10_000_000))
	assert.Equal(t, "0 B", FormatProgress(-1, -1))
}
