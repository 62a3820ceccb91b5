package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNewProject(t *testing.T) {
	location := filepath.Join(t.TempDir(), "projects")

	path, err := Create("hello", location)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(location, "hello"), path)

	data, err := os.ReadFile(filepath.Join(path, MainFile))
	require.NoError(t, err)
	assert.Equal(t, HelloWorld, string(data))
}

func TestCreateExistingProjectIsUntouched(t *testing.T) {
	location := t.TempDir()
	existing := filepath.Join(location, "old")
	require.NoError(t, os.MkdirAll(existing, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "notes.txt"), []byte("keep"), 0o600))

	path, err := Create("old", location)
	require.NoError(t, err)
	assert.Equal(t, existing, path)
	assert.NoFileExists(t, filepath.Join(existing, MainFile))

	data, err := os.ReadFile(filepath.Join(existing, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name, project, location string
	}{
		{"empty name", " ", "/tmp"},
		{"separator in name", "a/b", "/tmp"},
		{"empty location", "hello", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(tt.project, tt.location)
			require.Error(t, err)
		})
	}
}
