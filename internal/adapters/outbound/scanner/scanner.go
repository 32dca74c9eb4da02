package scanner

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/sitegate/sitegate/internal/domain"
)

// FileWalker implements domain.FileWalker by walking the filesystem.
type FileWalker struct{}

func New() *FileWalker {
	return &FileWalker{}
}

// Walk reads every file under the target roots whose extension is allowed.
// Missing roots are skipped. A file that cannot be read aborts the walk.
func (w *FileWalker) Walk(projectPath string, target domain.ScanTarget) (*domain.WalkResult, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(target.ExcludeDirs))
	for _, d := range target.ExcludeDirs {
		skip[strings.Trim(d, "/")] = true
	}
	exts := make(map[string]bool, len(target.Extensions))
	for _, e := range target.Extensions {
		exts[strings.ToLower(e)] = true
	}

	seen := make(map[string]bool)
	var paths []string
	for _, root := range target.Roots {
		rootAbs := filepath.Join(absPath, filepath.FromSlash(root))
		info, err := os.Stat(rootAbs)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("root", root).Msg("scan root missing, skipping")
			continue
		}
		if err != nil {
			return nil, &domain.ScanError{Path: root, Err: err}
		}
		if !info.IsDir() {
			rel := filepath.ToSlash(filepath.Clean(root))
			if !seen[rel] {
				seen[rel] = true
				paths = append(paths, rel)
			}
			continue
		}

		err = filepath.WalkDir(rootAbs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return &domain.ScanError{Path: path, Err: err}
			}
			if d.IsDir() {
				if path != rootAbs && skip[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(d.Name()))] {
				return nil
			}
			rel, err := filepath.Rel(absPath, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if !seen[rel] {
				seen[rel] = true
				paths = append(paths, rel)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)

	result := &domain.WalkResult{RootPath: absPath, Files: make([]domain.SourceFile, 0, len(paths))}
	hasher := blake3.New()
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(absPath, filepath.FromSlash(rel)))
		if err != nil {
			return nil, &domain.ScanError{Path: rel, Err: err}
		}
		hasher.Write([]byte(rel))
		hasher.Write([]byte{0})
		hasher.Write(data)
		hasher.Write([]byte{0})
		result.Files = append(result.Files, domain.SourceFile{Path: rel, Lines: SplitLines(string(data))})
	}
	result.TreeDigest = hex.EncodeToString(hasher.Sum(nil))
	return result, nil
}

// SplitLines splits content on newlines, dropping carriage returns and the
// empty element after a trailing newline.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
