// Package syncer mirrors public documentation artifacts into the configured
// documentation-site repository. The whole package is gated on a syncTarget
// being present in the configuration.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"docsync/internal/artifact"
	"docsync/internal/config"
	"docsync/internal/state"
)

// TokenEnv is the environment variable holding the push token. It is loaded
// from .env by the CLI before the syncer runs.
const TokenEnv = "DOCSYNC_GIT_TOKEN"

// PushError wraps a failed push. The core documentation state has already
// been committed when it occurs and is not rolled back.
type PushError struct {
	Cause error
}

func (e *PushError) Error() string { return fmt.Sprintf("syncer: push failed: %v", e.Cause) }
func (e *PushError) Unwrap() error { return e.Cause }

// Result reports what the sync phase changed on the target.
type Result struct {
	Pushed  []string // destination-relative paths now present on the target
	Deleted []string // destination-relative paths removed from the target
}

// Syncer clones the target, mirrors artifacts, and pushes one commit.
type Syncer struct {
	Target *config.SyncTarget
	DocDir string
	Log    *slog.Logger
}

// Sync mirrors the registry's public artifacts into the sync target.
// prevSynced is the set of destination paths pushed by the last successful
// sync; paths in it that are no longer produced are deleted from the target.
func (s *Syncer) Sync(ctx context.Context, reg *state.Registry, prevSynced []string) (*Result, error) {
	if s.Target == nil {
		return nil, fmt.Errorf("syncer: no sync target configured")
	}

	checkout, err := os.MkdirTemp("", "docsync-sync-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(checkout)

	auth := tokenAuth()
	repo, err := git.PlainCloneContext(ctx, checkout, false, &git.CloneOptions{
		URL:           s.Target.RepositoryURL,
		ReferenceName: plumbing.NewBranchReferenceName(s.Target.Branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil {
		return nil, fmt.Errorf("syncer: cloning %s: %w", s.Target.RepositoryURL, err)
	}

	destRoot := filepath.Join(checkout, filepath.FromSlash(s.Target.DestinationPath))
	current, err := s.mirror(destRoot, reg)
	if err != nil {
		return nil, err
	}

	res := &Result{Pushed: current}
	currentSet := make(map[string]bool, len(current))
	for _, p := range current {
		currentSet[p] = true
	}
	res.Deleted = deleteStale(destRoot, prevSynced, currentSet)

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("syncer: staging changes: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}
	if status.IsClean() {
		if s.Log != nil {
			s.Log.Info("sync target already up to date")
		}
		return res, nil
	}

	_, err = wt.Commit("docs: sync generated documentation", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "docsync",
			Email: "docsync@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("syncer: committing: %w", err)
	}

	if err := repo.PushContext(ctx, &git.PushOptions{RemoteName: "origin", Auth: auth}); err != nil {
		return nil, &PushError{Cause: err}
	}
	return res, nil
}

// mirror writes frontmatter-decorated copies of every public artifact under
// destRoot and a _category_.json per directory. Returns the destination
// paths, sorted.
func (s *Syncer) mirror(destRoot string, reg *state.Registry) ([]string, error) {
	var paths []string
	dirs := make(map[string][]state.Entry)

	for _, id := range reg.IDs() {
		e, _ := reg.Lookup(id)
		if e.Visibility != "public" || e.Category == artifact.CategoryIndex {
			continue
		}

		src := filepath.Join(s.DocDir, filepath.FromSlash(e.Path))
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("syncer: reading %s: %w", e.Path, err)
		}

		rel := strings.TrimPrefix(path.Clean(e.Path), "public/")
		dest := filepath.Join(destRoot, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return nil, err
		}

		decorated, err := Decorate(string(data), e)
		if err != nil {
			return nil, fmt.Errorf("syncer: decorating %s: %w", e.Path, err)
		}
		if err := os.WriteFile(dest, []byte(decorated), 0644); err != nil {
			return nil, err
		}

		paths = append(paths, rel)
		dir := path.Dir(rel)
		dirs[dir] = append(dirs[dir], e)
	}

	if err := s.writeCategories(destRoot, dirs); err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// deleteStale removes previously pushed paths that the current mirror no
// longer produces, then prunes the directories those deletions emptied so the
// target carries no orphaned _category_.json files.
func deleteStale(destRoot string, prevSynced []string, current map[string]bool) []string {
	var deleted []string
	for _, prev := range prevSynced {
		if current[prev] {
			continue
		}
		stale := filepath.Join(destRoot, filepath.FromSlash(prev))
		if err := os.Remove(stale); err != nil {
			continue
		}
		deleted = append(deleted, prev)
		pruneEmptyDirs(destRoot, filepath.Dir(stale))
	}
	return deleted
}

// pruneEmptyDirs removes dir and its ancestors up to (not including) root
// while they hold nothing but a _category_.json.
func pruneEmptyDirs(root, dir string) {
	root = filepath.Clean(root)
	for dir = filepath.Clean(dir); dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		if len(entries) == 1 && entries[0].Name() == "_category_.json" {
			if err := os.Remove(filepath.Join(dir, "_category_.json")); err != nil {
				return
			}
			entries = nil
		}
		if len(entries) != 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}

func tokenAuth() transport.AuthMethod {
	token := os.Getenv(TokenEnv)
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "docsync", Password: token}
}
