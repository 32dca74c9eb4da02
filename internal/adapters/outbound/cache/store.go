package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sitegate/sitegate/internal/domain"
)

// Store is a file-based implementation of domain.IndexCacheStore.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads the index cache of a project. Returns (nil, nil) if no cache exists.
func (s *Store) Load(projectPath string) (*domain.IndexCache, error) {
	data, err := os.ReadFile(cachePath(projectPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	var cache domain.IndexCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}

// Save writes the index cache to disk, creating directories as needed.
func (s *Store) Save(projectPath string, cache *domain.IndexCache) error {
	if err := os.MkdirAll(cacheDir(projectPath), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return err
	}

	return os.WriteFile(cachePath(projectPath), data, 0644)
}

// Invalidate removes the cache file for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(cachePath(projectPath)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func cacheDir(projectPath string) string {
	return filepath.Join(projectPath, ".sitegate", "cache")
}

func cachePath(projectPath string) string {
	return filepath.Join(cacheDir(projectPath), "search-index.json")
}
