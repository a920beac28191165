// Package gitinfo answers questions about the repository a scanned tree
// lives in: where it is, what HEAD points at, and which files recent
// commits have been touching.
package gitinfo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"go.uber.org/zap"

	"tcpl/internal/scan"
)

// DefaultDepth is how far back commit counting looks when no depth is
// given.
const DefaultDepth = 200

// ErrNoRepository means the scanned tree is not inside a git repository.
// Callers treat it as "no commit data", not as a failure.
var ErrNoRepository = errors.New("no git repository found")

// Repo wraps an opened repository together with its worktree root.
type Repo struct {
	repo *git.Repository
	root string
	log  *zap.Logger
}

// Open finds the repository containing dir, walking up the tree the way
// git itself does.
func Open(dir string, logger *zap.Logger) (*Repo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w at or above %s", ErrNoRepository, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root(), log: logger}, nil
}

// Root returns the worktree root the repository was detected at.
func (r *Repo) Root() string {
	return r.root
}

// Summary describes the repository state at a glance.
type Summary struct {
	Root    string
	Branch  string
	Head    string
	Remotes []string
}

// Summarize reads HEAD and the configured remotes.
func (r *Repo) Summarize() (Summary, error) {
	head, err := r.repo.Head()
	if err != nil {
		return Summary{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	s := Summary{
		Root:   r.root,
		Branch: head.Name().Short(),
		Head:   head.Hash().String(),
	}
	remotes, err := r.repo.Remotes()
	if err != nil {
		return s, fmt.Errorf("list remotes: %w", err)
	}
	for _, remote := range remotes {
		cfg := remote.Config()
		if len(cfg.URLs) > 0 {
			s.Remotes = append(s.Remotes, cfg.Name+" "+cfg.URLs[0])
		}
	}
	return s, nil
}

// CommitCounts walks the last depth commits from HEAD and counts how many
// touched each path. Keys are slash-separated paths relative to the
// worktree root. A depth of zero or less falls back to DefaultDepth.
func (r *Repo) CommitCounts(ctx context.Context, depth int) (map[string]int, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	iter, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	counts := map[string]int{}
	seen := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if seen >= depth {
			return storer.ErrStop
		}
		seen++
		stats, err := c.Stats()
		if err != nil {
			// Merge commits and odd objects are not worth failing over.
			r.log.Debug("Skipping commit without stats",
				zap.String("hash", c.Hash.String()), zap.Error(err))
			return nil
		}
		for _, stat := range stats {
			counts[stat.Name]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commits: %w", err)
	}
	return counts, nil
}

// Annotate fills File.Commits on every scanned file that lives inside the
// repository. Files outside it keep zero.
func (r *Repo) Annotate(ctx context.Context, res *scan.Result, depth int) error {
	counts, err := r.CommitCounts(ctx, depth)
	if err != nil {
		return err
	}
	for i := range res.Files {
		abs, err := filepath.Abs(res.Files[i].Path)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(r.root, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		res.Files[i].Commits = counts[filepath.ToSlash(rel)]
	}
	return nil
}
