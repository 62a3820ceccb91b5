package platform

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostConventions(t *testing.T) {
	tests := []struct {
		goos    string
		locate  string
		binary  string
		windows bool
	}{
		{goos: "windows", locate: "where", binary: "main.exe", windows: true},
		{goos: "linux", locate: "whereis", binary: "main"},
		{goos: "darwin", locate: "whereis", binary: "main"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			h := Host{GOOS: tt.goos}
			assert.Equal(t, tt.windows, h.IsWindows())
			assert.Equal(t, tt.locate, h.LocateUtility())
			assert.Equal(t, tt.binary, h.BinaryName())
		})
	}
}

func TestExists(t *testing.T) {
	h := Host{Stat: func(name string) (os.FileInfo, error) {
		if name == "/present" {
			return nil, nil
		}
		return nil, os.ErrNotExist
	}}

	assert.True(t, h.Exists("/present"))
	assert.False(t, h.Exists("/absent"))
	assert.False(t, h.Exists(""))
}

func TestHasPathSeparator(t *testing.T) {
	assert.True(t, HasPathSeparator("/usr/bin/g++"))
	assert.True(t, HasPathSeparator(`C:\MinGW\bin\g++.exe`))
	assert.False(t, HasPathSeparator("g++"))
}
