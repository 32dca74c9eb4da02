package domain

import "context"

// FileWalker enumerates and reads the files of a scan target.
type FileWalker interface {
	Walk(projectPath string, target ScanTarget) (*WalkResult, error)
}

// PolicyLoader loads the project policy.
type PolicyLoader interface {
	Load(projectPath string) (Policy, error)
}

// ReferenceLoader loads the reference-key source of truth.
type ReferenceLoader interface {
	LoadReferences(path string) (map[string]string, error)
}

// EvidenceWriter persists a report as audit artifacts and returns the written paths.
type EvidenceWriter interface {
	Write(report *ScanReport, dir string) ([]string, error)
}

// EvidenceUploader copies written evidence files to remote storage.
type EvidenceUploader interface {
	Upload(ctx context.Context, files []string) error
}

// RunHistory records gate runs.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// GitInfo provides repository metadata.
type GitInfo interface {
	CommitHash(projectPath string) (string, error)
	Branch(projectPath string) (string, error)
}

// SearchIndex is a full-text search backend.
type SearchIndex interface {
	Init(ctx context.Context) error
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// IndexCacheStore persists extracted search documents between runs.
type IndexCacheStore interface {
	Load(projectPath string) (*IndexCache, error)
	Save(projectPath string, cache *IndexCache) error
}
