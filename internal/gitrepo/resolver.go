// Package gitrepo resolves change sets between two revisions of the source
// repository. It is the only package that talks to revision control.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Change kinds.
const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeRemoved  = "removed"
)

// ErrRevisionUnreachable is returned when the from-revision is unknown to the
// repository, typically after a history rewrite. Callers must degrade to a
// full rescan rather than fail silently.
var ErrRevisionUnreachable = errors.New("gitrepo: revision unreachable")

// FileChange is one file-level delta between two revisions, after exclusion
// filtering. Old/NewContent carry the file bodies the extractor needs for
// item-granular planning.
type FileChange struct {
	Path        string
	Kind        string
	UnifiedDiff string
	OldContent  []byte
	NewContent  []byte
}

// Repository wraps an opened git work tree.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens the repository at path and verifies it is in a usable state.
func Open(path string) (*Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("gitrepo: repository path cannot be empty")
	}
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("gitrepo: not a valid git repository at %s: %w", path, err)
	}
	if _, err := repo.Head(); err != nil {
		return nil, fmt.Errorf("gitrepo: repository at %s has no usable HEAD: %w", path, err)
	}
	return &Repository{repo: repo, path: path}, nil
}

// Head returns the current head revision id.
func (r *Repository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("gitrepo: failed to get HEAD reference: %w", err)
	}
	return ref.Hash().String(), nil
}

// Resolve computes the change set between fromRev and toRev, filtered by the
// exclusion patterns and sorted by path. An empty fromRev means first run:
// every tracked file in toRev is reported as added.
func (r *Repository) Resolve(ctx context.Context, fromRev, toRev string, exclude []string) ([]FileChange, error) {
	toCommit, err := r.commit(toRev)
	if err != nil {
		return nil, err
	}

	if fromRev == "" {
		return r.fullScan(ctx, toCommit, exclude)
	}

	fromCommit, err := r.commit(fromRev)
	if err != nil {
		return nil, err
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("gitrepo: reading tree of %s: %w", fromRev, err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("gitrepo: reading tree of %s: %w", toRev, err)
	}

	// Rename detection stays off: a renamed file must decompose into a
	// removed path and an added path, so the old path's artifacts get their
	// removal signal instead of lingering active forever.
	diff, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, &object.DiffTreeOptions{DetectRenames: false})
	if err != nil {
		return nil, fmt.Errorf("gitrepo: diffing %s..%s: %w", fromRev, toRev, err)
	}

	var changes []FileChange
	for _, ch := range diff {
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}

		fc := FileChange{}
		switch action {
		case merkletrie.Insert:
			fc.Path = ch.To.Name
			fc.Kind = ChangeAdded
		case merkletrie.Delete:
			fc.Path = ch.From.Name
			fc.Kind = ChangeRemoved
		case merkletrie.Modify:
			fc.Path = ch.To.Name
			fc.Kind = ChangeModified
		default:
			continue
		}

		if Excluded(fc.Path, exclude) {
			continue
		}

		patch, err := ch.PatchContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("gitrepo: patch for %s: %w", fc.Path, err)
		}
		var buf bytes.Buffer
		if err := patch.Encode(&buf); err != nil {
			return nil, fmt.Errorf("gitrepo: encoding patch for %s: %w", fc.Path, err)
		}
		fc.UnifiedDiff = buf.String()

		if fc.Kind != ChangeAdded {
			old, err := fileContent(fromCommit, fc.Path)
			if err != nil {
				return nil, err
			}
			fc.OldContent = old
		}
		if fc.Kind != ChangeRemoved {
			cur, err := fileContent(toCommit, fc.Path)
			if err != nil {
				return nil, err
			}
			fc.NewContent = cur
		}

		changes = append(changes, fc)
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// fullScan reports every tracked file of commit as added.
func (r *Repository) fullScan(ctx context.Context, commit *object.Commit, exclude []string) ([]FileChange, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("gitrepo: reading tree of %s: %w", commit.Hash, err)
	}

	var changes []FileChange
	err = tree.Files().ForEach(func(f *object.File) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if Excluded(f.Name, exclude) {
			return nil
		}
		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("gitrepo: reading %s: %w", f.Name, err)
		}
		changes = append(changes, FileChange{
			Path:        f.Name,
			Kind:        ChangeAdded,
			UnifiedDiff: syntheticAddDiff(f.Name, content),
			NewContent:  []byte(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// HasRevision reports whether rev resolves to a commit in the repository.
func (r *Repository) HasRevision(rev string) bool {
	_, err := r.commit(rev)
	return err == nil
}

// FileAt returns the content of path at rev, or nil if the file does not
// exist in that revision.
func (r *Repository) FileAt(rev, path string) ([]byte, error) {
	commit, err := r.commit(rev)
	if err != nil {
		return nil, err
	}
	return fileContent(commit, path)
}

func (r *Repository) commit(rev string) (*object.Commit, error) {
	hash := plumbing.NewHash(rev)
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRevisionUnreachable, rev)
		}
		return nil, fmt.Errorf("gitrepo: resolving %s: %w", rev, err)
	}
	return commit, nil
}

func fileContent(commit *object.Commit, path string) ([]byte, error) {
	f, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("gitrepo: reading %s at %s: %w", path, commit.Hash, err)
	}
	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("gitrepo: reading %s at %s: %w", path, commit.Hash, err)
	}
	return []byte(content), nil
}

// Excluded reports whether path matches any exclusion glob. Any match
// excludes; pattern order is irrelevant.
func Excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// syntheticAddDiff renders a minimal unified diff for a file reported as
// added during a full rescan, where no parent revision exists to diff against.
func syntheticAddDiff(path, content string) string {
	var buf strings.Builder
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	fmt.Fprintf(&buf, "--- /dev/null\n+++ b/%s\n@@ -0,0 +1,%d @@\n", path, len(lines))
	for _, line := range lines {
		buf.WriteString("+")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return buf.String()
}
