// Package vcs reads source trees out of git history so a scan can run
// against any ref without touching the working copy.
package vcs

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotFound is returned when a path does not exist in a tree.
var ErrNotFound = errors.New("not found in tree")

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}

// Repository provides the repository operations a ref scan needs.
type Repository interface {
	// Root returns the worktree root of the repository.
	Root() string
	// TreeAt resolves a revision (branch, tag, hash, HEAD~n) to its tree.
	TreeAt(rev string) (Tree, error)
}

// TreeEntry represents a file in a git tree.
type TreeEntry struct {
	Path string
	Size int64
}

// Tree is a snapshot of repository files. Paths are slash-separated and
// relative to the repository root.
type Tree interface {
	// Entries returns every regular file in the tree.
	Entries() ([]TreeEntry, error)
	// File returns the contents of the file at path.
	File(path string) ([]byte, error)
}

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
func (o *GitOpener) PlainOpenWithDetect(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree at %s: %w", path, err)
	}
	return &gitRepository{repo: repo, root: wt.Filesystem.Root()}, nil
}

type gitRepository struct {
	repo *git.Repository
	root string
}

func (r *gitRepository) Root() string {
	return r.root
}

func (r *gitRepository) TreeAt(rev string) (Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree of %s: %w", hash, err)
	}
	return &gitTree{tree: tree}, nil
}

type gitTree struct {
	tree *object.Tree
}

func (t *gitTree) Entries() ([]TreeEntry, error) {
	var entries []TreeEntry
	err := t.tree.Files().ForEach(func(f *object.File) error {
		if !f.Mode.IsFile() {
			return nil
		}
		entries = append(entries, TreeEntry{Path: f.Name, Size: f.Size})
		return nil
	})
	return entries, err
}

func (t *gitTree) File(path string) ([]byte, error) {
	f, err := t.tree.File(filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	rd, err := f.Reader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return io.ReadAll(rd)
}

// FilesUnder returns the tree entries at or below any of prefixes, in tree
// order. An empty prefix or "." selects everything.
func FilesUnder(entries []TreeEntry, prefixes []string) []TreeEntry {
	var out []TreeEntry
	for _, e := range entries {
		for _, p := range prefixes {
			p = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(p)), "/")
			if p == "." || p == "" || e.Path == p || strings.HasPrefix(e.Path, p+"/") {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
