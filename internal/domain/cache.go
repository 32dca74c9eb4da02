package domain

// IndexCache is the persisted extraction result of the search index. It is
// reused while Digest still matches the content files on disk.
type IndexCache struct {
	Digest    string           `json:"digest"`
	Documents []CachedDocument `json:"documents"`
}

// CachedDocument is one extracted page.
type CachedDocument struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`
}

// IsStale reports whether the cache was built from different content.
func (c *IndexCache) IsStale(digest string) bool {
	return c == nil || c.Digest != digest
}
