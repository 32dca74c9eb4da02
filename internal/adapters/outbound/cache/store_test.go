package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitegate/sitegate/internal/adapters/outbound/cache"
	"github.com/sitegate/sitegate/internal/domain"
)

func TestStore_SaveAndLoad(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()

	original := &domain.IndexCache{
		Digest: "abc123",
		Documents: []domain.CachedDocument{
			{URL: "/blog/post-1", Title: "Post", Body: "anchoring"},
		},
	}

	require.NoError(t, store.Save(projectPath, original))

	loaded, err := store.Load(projectPath)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original, loaded)
	assert.FileExists(t, filepath.Join(projectPath, ".sitegate", "cache", "search-index.json"))
}

func TestStore_LoadNonExistent(t *testing.T) {
	store := cache.New()

	loaded, err := store.Load(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_LoadCorrupt(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()
	dir := filepath.Join(projectPath, ".sitegate", "cache")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "search-index.json"), []byte("{not json"), 0644))

	_, err := store.Load(projectPath)
	assert.Error(t, err)
}

func TestStore_Invalidate(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()

	require.NoError(t, store.Save(projectPath, &domain.IndexCache{Digest: "x"}))
	require.NoError(t, store.Invalidate(projectPath))

	loaded, err := store.Load(projectPath)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, store.Invalidate(projectPath), "invalidating twice is fine")
}

func TestIndexCache_IsStale(t *testing.T) {
	var missing *domain.IndexCache
	assert.True(t, missing.IsStale("d1"))
	assert.True(t, (&domain.IndexCache{Digest: "d0"}).IsStale("d1"))
	assert.False(t, (&domain.IndexCache{Digest: "d1"}).IsStale("d1"))
}
