package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/panbanda/clonescan/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*TreeSource)(nil)
)

func TestFilesystemSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n"), 0644))

	src := NewFilesystem()
	content, err := src.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(content))

	_, err = src.Read(filepath.Join(t.TempDir(), "nonexistent.txt"))
	assert.Error(t, err)
}

func TestTreeSource(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package committed\n"), 0644))
	_, err = wt.Add("a.go")
	require.NoError(t, err)
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	// Uncommitted edits must not leak into a tree read.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package dirty\n"), 0644))

	r, err := vcs.NewGitOpener().PlainOpenWithDetect(dir)
	require.NoError(t, err)
	tree, err := r.TreeAt("HEAD")
	require.NoError(t, err)

	src := NewTree(tree)
	content, err := src.Read("a.go")
	require.NoError(t, err)
	assert.Equal(t, "package committed\n", string(content))

	_, err = src.Read("missing.go")
	assert.ErrorIs(t, err, vcs.ErrNotFound)
}
