// Package plan turns a change set into an ordered sequence of artifact
// operations. Plan is a pure function of (changes, prior registry): the same
// inputs always produce the same operations in the same order, which is what
// makes re-running a failed pass safe.
package plan

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"docsync/internal/artifact"
	"docsync/internal/config"
	"docsync/internal/extract"
	"docsync/internal/gitrepo"
	"docsync/internal/state"
)

// Operation kinds.
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDeprecate = "deprecate"
	OpDelete    = "delete"
)

// Operation is one planned change to the documentation tree.
type Operation struct {
	ArtifactID string
	Op         string
	SourceRef  string // "path#item" for item ops, the directory for index ops
	Path       string // destination, relative to the documentation directory
	Index      bool   // index regeneration rather than an item artifact
	// Artifact carries the rendered content for create/update and for
	// deprecations that come with fresh source content. It is zero-valued
	// for deletes, index updates, and removal-driven deprecations (the
	// writer flips the existing file in place for those).
	Artifact *artifact.Artifact
}

// Planner maps file changes to artifact operations.
type Planner struct {
	Extractor extract.Extractor
	Config    *config.Configuration
	Log       *slog.Logger
}

// Plan computes the operation sequence for a change set. The registry is
// read-only input; the writer mutates it as operations are applied.
func (p *Planner) Plan(changes []gitrepo.FileChange, reg *state.Registry) ([]Operation, error) {
	var ops []Operation
	indexDirs := make(map[string]bool)

	for _, ch := range changes {
		if !p.Extractor.Supports(ch.Path) {
			continue
		}

		pre := p.items(ch.Path, ch.OldContent)
		post := p.items(ch.Path, ch.NewContent)

		preByName := itemsByName(pre)
		postByName := itemsByName(post)

		for _, name := range sortedNames(preByName, postByName) {
			preItem, had := preByName[name]
			postItem, has := postByName[name]

			switch {
			case has && !had:
				op := p.itemOp(OpCreate, postItem, ch.Path)
				if postItem.Deprecated {
					op.Op = OpDeprecate
				}
				ops = append(ops, op)
				indexDirs[artifact.IndexPath(op.Path)] = true

			case has && had:
				if reflect.DeepEqual(preItem, postItem) {
					continue
				}
				op := p.itemOp(OpUpdate, postItem, ch.Path)
				if postItem.Deprecated && !preItem.Deprecated {
					// A status flip changes the owning index entry too.
					op.Op = OpDeprecate
					indexDirs[artifact.IndexPath(op.Path)] = true
				}
				ops = append(ops, op)

			case had && !has:
				removal := p.removalOp(preItem, ch.Path, reg)
				ops = append(ops, removal)
				indexDirs[artifact.IndexPath(removal.Path)] = true
			}
		}
	}

	// Index updates come after their triggering creates and deletes, in a
	// stable order, one per affected directory.
	dirs := make([]string, 0, len(indexDirs))
	for d := range indexDirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		ops = append(ops, Operation{
			ArtifactID: artifact.IndexID(d),
			Op:         OpUpdate,
			SourceRef:  d,
			Path:       d,
			Index:      true,
		})
	}

	return ops, nil
}

// PlanPrune emits delete operations for deprecated artifacts whose source
// items are still absent — the explicit second pass that hard-removes what an
// earlier run soft-deleted. stillPresent reports whether the source item
// exists at the current revision.
func (p *Planner) PlanPrune(reg *state.Registry, stillPresent func(e state.Entry) bool) []Operation {
	var ops []Operation
	indexDirs := make(map[string]bool)

	for _, id := range reg.IDs() {
		e, _ := reg.Lookup(id)
		if e.Status != state.StatusDeprecated || e.Category == artifact.CategoryIndex {
			continue
		}
		if stillPresent(e) {
			continue
		}
		ops = append(ops, Operation{
			ArtifactID: e.ID,
			Op:         OpDelete,
			SourceRef:  e.SourcePath + "#" + e.ItemName,
			Path:       e.Path,
		})
		indexDirs[artifact.IndexPath(e.Path)] = true
	}

	dirs := make([]string, 0, len(indexDirs))
	for d := range indexDirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		ops = append(ops, Operation{
			ArtifactID: artifact.IndexID(d),
			Op:         OpUpdate,
			SourceRef:  d,
			Path:       d,
			Index:      true,
		})
	}
	return ops
}

func (p *Planner) itemOp(op string, item extract.Item, sourcePath string) Operation {
	a := artifact.FromItem(item, sourcePath, p.Config.IncludeInlineExamples)
	return Operation{
		ArtifactID: a.ID,
		Op:         op,
		SourceRef:  sourcePath + "#" + item.Name,
		Path:       artifact.Path(sourcePath, item.Name, a.Visibility),
		Artifact:   &a,
	}
}

// removalOp decides delete-vs-deprecate for an item that disappeared from
// source. An active item is soft-removed first; a delete only happens once
// the registry already records the artifact as deprecated (or immediately,
// under the immediate delete policy).
func (p *Planner) removalOp(preItem extract.Item, sourcePath string, reg *state.Registry) Operation {
	id := artifact.ID(sourcePath, preItem.Name)
	ref := sourcePath + "#" + preItem.Name

	path := artifact.Path(sourcePath, preItem.Name, preItem.Visibility)
	wasDeprecated := false
	if e, ok := reg.Lookup(id); ok {
		path = e.Path
		wasDeprecated = e.Status == state.StatusDeprecated
	}

	if wasDeprecated || p.Config.DeletePolicy == config.DeleteImmediate {
		return Operation{ArtifactID: id, Op: OpDelete, SourceRef: ref, Path: path}
	}
	return Operation{ArtifactID: id, Op: OpDeprecate, SourceRef: ref, Path: path}
}

// items extracts public items from content, treating unparseable content as
// empty. A file that no longer parses should not abort documentation of the
// rest of the change set.
func (p *Planner) items(path string, content []byte) []extract.Item {
	if len(content) == 0 {
		return nil
	}
	items, err := p.Extractor.ListPublicItems(path, content)
	if err != nil {
		if p.Log != nil {
			p.Log.Warn("skipping unparseable file", "path", path, "error", err)
		}
		return nil
	}
	return items
}

func itemsByName(items []extract.Item) map[string]extract.Item {
	m := make(map[string]extract.Item, len(items))
	for _, it := range items {
		m[it.Name] = it
	}
	return m
}

func sortedNames(a, b map[string]extract.Item) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var names []string
	for n := range a {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for n := range b {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Describe renders a one-line summary of an operation for dry runs and logs.
func Describe(op Operation) string {
	if op.Index {
		return fmt.Sprintf("%-9s %s", op.Op, op.Path)
	}
	return fmt.Sprintf("%-9s %s (%s)", op.Op, op.ArtifactID, op.SourceRef)
}
