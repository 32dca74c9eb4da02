package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sitegate/sitegate/internal/adapters/outbound/gitinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepoWithCommit(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "index.md"), []byte("# Home\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("content/index.md")
	require.NoError(t, err)

	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.org", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestGitInfo_CommitHash_ReturnsHead(t *testing.T) {
	dir, want := initRepoWithCommit(t)

	hash, err := gitinfo.New().CommitHash(dir)
	require.NoError(t, err)
	assert.Equal(t, want, hash)
	assert.Len(t, hash, 40)
}

func TestGitInfo_CommitHash_FromSubdirectory(t *testing.T) {
	dir, want := initRepoWithCommit(t)

	hash, err := gitinfo.New().CommitHash(filepath.Join(dir, "content"))
	require.NoError(t, err)
	assert.Equal(t, want, hash)
}

func TestGitInfo_Branch(t *testing.T) {
	dir, _ := initRepoWithCommit(t)

	branch, err := gitinfo.New().Branch(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, branch)
}

func TestGitInfo_CommitHash_NotGitRepo(t *testing.T) {
	_, err := gitinfo.New().CommitHash(t.TempDir())
	assert.Error(t, err)
}

func TestGitInfo_CommitHash_EmptyRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = gitinfo.New().CommitHash(dir)
	assert.Error(t, err)
}
