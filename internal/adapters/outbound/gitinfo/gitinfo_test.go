package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/portlint/portlint/internal/adapters/outbound/gitinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	portDir := filepath.Join(dir, "zlib")
	require.NoError(t, os.MkdirAll(portDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(portDir, "portfile.cmake"), []byte("# recipe\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("zlib/portfile.cmake")
	require.NoError(t, err)
	hash, err := wt.Commit("add zlib recipe", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestHeadCommit(t *testing.T) {
	dir, want := stageRepo(t)

	got, ok := gitinfo.New().HeadCommit(dir)

	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestHeadCommit_DetectsRepoFromSubdirectory(t *testing.T) {
	dir, want := stageRepo(t)

	got, ok := gitinfo.New().HeadCommit(filepath.Join(dir, "zlib"))

	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestHeadCommit_NotARepo(t *testing.T) {
	_, ok := gitinfo.New().HeadCommit(t.TempDir())
	assert.False(t, ok)
}
