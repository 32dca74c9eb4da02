// Package searchindex is a local full-text index over site content,
// used as the search backend for route ranking.
package searchindex

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/sitegate/sitegate/internal/domain"
)

const excerptRadius = 80

// Field weights in the composite BM25 document.
const (
	weightTitle       = 3
	weightDescription = 2
	weightBody        = 1
)

type document struct {
	url  string
	page page
}

// Index implements domain.SearchIndex over markdown, MDX and HTML files.
type Index struct {
	projectPath string
	roots       []string
	excludeDirs map[string]bool
	cache       domain.IndexCacheStore

	mu      sync.RWMutex
	ready   bool
	docs    []document
	ranking *bm25
}

// New creates an index over the content roots of projectPath. Nothing is
// read until Init.
func New(projectPath string, roots, excludeDirs []string) *Index {
	skip := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		skip[d] = true
	}
	return &Index{projectPath: projectPath, roots: roots, excludeDirs: skip}
}

// WithCache persists extracted documents between runs.
func (x *Index) WithCache(store domain.IndexCacheStore) *Index {
	x.cache = store
	return x
}

// source is one content file selected for indexing.
type source struct {
	abs     string
	url     string
	extract func([]byte) page
	size    int64
	modTime int64
}

// Init reads every content file and builds the ranking. With a cache
// configured, extraction is skipped while the content digest is unchanged.
// Calling it again rebuilds the index.
func (x *Index) Init(ctx context.Context) error {
	sources, err := x.collect(ctx)
	if err != nil {
		return err
	}
	digest := sourceDigest(sources)

	docs, hit := x.cached(digest)
	if !hit {
		docs = make([]document, 0, len(sources))
		for _, src := range sources {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(src.abs)
			if err != nil {
				return fmt.Errorf("reading %s: %w", src.url, err)
			}
			pg := src.extract(data)
			if pg.Draft {
				continue
			}
			docs = append(docs, document{url: src.url, page: pg})
		}
		x.store(digest, docs)
	}

	fields := make([][]field, len(docs))
	for i, d := range docs {
		fields[i] = []field{
			{text: d.page.Title, weight: weightTitle},
			{text: d.page.Description, weight: weightDescription},
			{text: d.page.Body, weight: weightBody},
		}
	}
	ranking := newBM25(fields)

	x.mu.Lock()
	x.docs, x.ranking, x.ready = docs, ranking, true
	x.mu.Unlock()

	log.Debug().Int("documents", len(docs)).Bool("cached", hit).Msg("search index built")
	return nil
}

// collect lists the indexable files below every content root.
func (x *Index) collect(ctx context.Context) ([]source, error) {
	var sources []source
	for _, root := range x.roots {
		rootAbs := filepath.Join(x.projectPath, filepath.FromSlash(root))
		if _, err := os.Stat(rootAbs); errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("root", root).Msg("content root missing, skipping")
			continue
		}

		err := filepath.WalkDir(rootAbs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				// Build output lives under excluded names like .next, so
				// exclusions only apply below the root itself.
				if p != rootAbs && x.excludeDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			var extract func([]byte) page
			switch strings.ToLower(filepath.Ext(p)) {
			case ".md", ".mdx":
				extract = extractMarkdown
			case ".html", ".htm":
				extract = extractHTML
			default:
				return nil
			}

			rel, err := filepath.Rel(rootAbs, p)
			if err != nil {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			sources = append(sources, source{
				abs:     p,
				url:     DocumentURL(root, filepath.ToSlash(rel)),
				extract: extract,
				size:    info.Size(),
				modTime: info.ModTime().UnixNano(),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("indexing %s: %w", root, err)
		}
	}
	return sources, nil
}

// sourceDigest fingerprints the file set by URL, size and mtime.
func sourceDigest(sources []source) string {
	h := blake3.New()
	var buf [16]byte
	for _, src := range sources {
		h.Write([]byte(src.url))
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:8], uint64(src.size))
		binary.LittleEndian.PutUint64(buf[8:], uint64(src.modTime))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (x *Index) cached(digest string) ([]document, bool) {
	if x.cache == nil {
		return nil, false
	}
	c, err := x.cache.Load(x.projectPath)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable search index cache")
		return nil, false
	}
	if c.IsStale(digest) {
		return nil, false
	}
	docs := make([]document, len(c.Documents))
	for i, d := range c.Documents {
		docs[i] = document{url: d.URL, page: page{Title: d.Title, Description: d.Description, Body: d.Body}}
	}
	return docs, true
}

func (x *Index) store(digest string, docs []document) {
	if x.cache == nil {
		return
	}
	c := &domain.IndexCache{Digest: digest, Documents: make([]domain.CachedDocument, len(docs))}
	for i, d := range docs {
		c.Documents[i] = domain.CachedDocument{
			URL:         d.url,
			Title:       d.page.Title,
			Description: d.page.Description,
			Body:        d.page.Body,
		}
	}
	if err := x.cache.Save(x.projectPath, c); err != nil {
		log.Warn().Err(err).Msg("writing search index cache failed")
	}
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// Search returns every matching document, most relevant first.
func (x *Index) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.ready {
		return nil, errors.New("search index not initialized")
	}

	hits := x.ranking.search(query)
	terms := tokenize(query)
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := x.docs[h.doc]
		score := h.score
		results = append(results, domain.SearchResult{
			URL:     d.url,
			Title:   d.page.Title,
			Excerpt: Excerpt(d.page.Body, terms),
			Score:   &score,
		})
	}
	return results, nil
}

// DocumentURL returns the URL a content file is served under. Markdown
// files map to their route; HTML build artifacts keep their build path
// so route normalisation can strip it.
func DocumentURL(root, rel string) string {
	switch strings.ToLower(path.Ext(rel)) {
	case ".html", ".htm":
		return "/" + path.Join(strings.Trim(filepath.ToSlash(root), "/"), rel)
	}
	route := strings.TrimSuffix(rel, path.Ext(rel))
	if route == "index" {
		return "/"
	}
	route = strings.TrimSuffix(route, "/index")
	return "/" + route
}

// Excerpt returns a window of body around the first occurrence of any term.
func Excerpt(body string, terms []string) string {
	lower := strings.ToLower(body)
	at := -1
	for _, t := range terms {
		if i := strings.Index(lower, t); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		at = 0
	}
	// Lower-casing keeps the rune count but not byte lengths.
	at = runeOffset(body, utf8.RuneCountInString(lower[:at]))

	start := at - excerptRadius
	prefix := "…"
	if start <= 0 {
		start, prefix = 0, ""
	}
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	end := at + excerptRadius
	suffix := "…"
	if end >= len(body) {
		end, suffix = len(body), ""
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}
	return prefix + strings.TrimSpace(body[start:end]) + suffix
}

// runeOffset returns the byte offset of the n-th rune of s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
