package project

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *time.Time) {
	t.Helper()
	r, err := OpenRegistry(filepath.Join(t.TempDir(), "data", "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return clock }
	return r, &clock
}

func TestRegistryAddListRemove(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()
	base := t.TempDir()

	e, err := r.Add(ctx, filepath.Join(base, "beta"))
	require.NoError(t, err)
	assert.Equal(t, "beta", e.Name)
	assert.Nil(t, e.LastRunAt)

	_, err = r.Add(ctx, filepath.Join(base, "alpha"))
	require.NoError(t, err)
	_, err = r.Add(ctx, filepath.Join(base, "alpha"))
	require.NoError(t, err, "adding twice is a no-op")

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, filepath.Join(base, "alpha"), list[0].Path)
	assert.Equal(t, filepath.Join(base, "beta"), list[1].Path)

	removed, err := r.Remove(ctx, filepath.Join(base, "alpha"))
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = r.Remove(ctx, filepath.Join(base, "alpha"))
	require.NoError(t, err)
	assert.False(t, removed)

	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegistryTouch(t *testing.T) {
	r, clock := newTestRegistry(t)
	ctx := context.Background()
	base := t.TempDir()
	proj := filepath.Join(base, "game")
	other := filepath.Join(base, "gamer")

	_, err := r.Add(ctx, proj)
	require.NoError(t, err)
	_, err = r.Add(ctx, other)
	require.NoError(t, err)

	*clock = clock.Add(time.Hour)
	n, err := r.Touch(ctx, filepath.Join(proj, "src"))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "sibling with a shared prefix is not touched")

	e, err := r.Get(ctx, proj)
	require.NoError(t, err)
	require.NotNil(t, e.LastRunAt)
	assert.True(t, e.LastRunAt.Equal(*clock))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, proj, list[0].Path, "recently run projects sort first")

	n, err = r.Touch(ctx, filepath.Join(base, "elsewhere"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistryGetUnknown(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Get(context.Background(), "/nope")
	require.Error(t, err)
}

func TestRegistryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.db")
	r, err := OpenRegistry(path)
	require.NoError(t, err)
	_, err = r.Add(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = OpenRegistry(path)
	require.NoError(t, err)
	defer r.Close()
	list, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
