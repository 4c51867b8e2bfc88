// Package writer applies planned operations to the documentation tree, in
// order, stopping at the first failure so the caller can refuse to advance
// the revision marker.
package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"docsync/internal/artifact"
	"docsync/internal/fsx"
	"docsync/internal/plan"
	"docsync/internal/state"
)

// WriteError wraps the operation that failed and its cause.
type WriteError struct {
	Op    plan.Operation
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writer: %s %s failed: %v", e.Op.Op, e.Op.ArtifactID, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// ApplyResult reports which operations completed before a failure, if any.
type ApplyResult struct {
	Applied []plan.Operation
}

// Writer applies operations under the documentation directory. It keeps the
// registry current as it goes; the caller persists the registry only after a
// fully successful apply.
type Writer struct {
	DocDir string
	Stack  string // fence language for rendered code blocks
	Log    *slog.Logger
}

// Apply executes the operations strictly in sequence. Each file write is
// temp-then-rename, so an interrupted run never leaves a truncated artifact.
// On failure it returns the operations already applied plus a WriteError; the
// next run recomputes the same plan and re-applies it safely, because every
// individual operation is idempotent.
func (w *Writer) Apply(ops []plan.Operation, reg *state.Registry) (*ApplyResult, error) {
	res := &ApplyResult{}
	for _, op := range ops {
		var err error
		switch {
		case op.Index:
			err = w.applyIndex(op, reg)
		case op.Op == plan.OpDelete:
			err = w.applyDelete(op, reg)
		case op.Op == plan.OpDeprecate:
			err = w.applyDeprecate(op, reg)
		default:
			err = w.applyRender(op, reg)
		}
		if err != nil {
			return res, &WriteError{Op: op, Cause: err}
		}
		res.Applied = append(res.Applied, op)
	}
	return res, nil
}

// applyRender handles create and update: render the structured content and
// replace the destination file.
func (w *Writer) applyRender(op plan.Operation, reg *state.Registry) error {
	if op.Artifact == nil {
		return fmt.Errorf("operation carries no content")
	}
	a := *op.Artifact
	if err := w.writeArtifact(op.Path, artifact.Render(a, w.Stack)); err != nil {
		return err
	}
	w.warnDangling(a, reg)
	reg.Put(entryFor(a, op.Path))
	return nil
}

// applyDeprecate flips an artifact to deprecated. With fresh source content
// the artifact is re-rendered; for a removal-driven deprecation the existing
// file is rewritten with the banner prepended and the status field flipped,
// content otherwise retained.
func (w *Writer) applyDeprecate(op plan.Operation, reg *state.Registry) error {
	if op.Artifact != nil {
		a := *op.Artifact
		a.Status = artifact.StatusDeprecated
		if err := w.writeArtifact(op.Path, artifact.Render(a, w.Stack)); err != nil {
			return err
		}
		reg.Put(entryFor(a, op.Path))
		return nil
	}

	full := filepath.Join(w.DocDir, filepath.FromSlash(op.Path))
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Already gone; record the status flip and move on.
			w.markDeprecated(op, reg)
			return nil
		}
		return err
	}
	if err := w.writeArtifact(op.Path, deprecateContent(string(data))); err != nil {
		return err
	}
	w.markDeprecated(op, reg)
	return nil
}

func (w *Writer) applyDelete(op plan.Operation, reg *state.Registry) error {
	full := filepath.Join(w.DocDir, filepath.FromSlash(op.Path))
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	reg.Delete(op.ArtifactID)
	return nil
}

// applyIndex regenerates a directory index from the registry's current view
// of that directory. It runs after the creates and deletes that dirtied it.
func (w *Writer) applyIndex(op plan.Operation, reg *state.Registry) error {
	dir := path.Dir(op.Path)

	var entries []artifact.IndexEntry
	for _, id := range reg.IDs() {
		e, _ := reg.Lookup(id)
		if e.Category == artifact.CategoryIndex {
			continue
		}
		if path.Dir(e.Path) != dir {
			continue
		}
		entries = append(entries, artifact.IndexEntry{
			ID:       e.ID,
			Title:    e.ItemName,
			File:     path.Base(e.Path),
			Category: e.Category,
			Status:   e.Status,
		})
	}

	if err := w.writeArtifact(op.Path, artifact.RenderIndex(op.Path, entries)); err != nil {
		return err
	}
	reg.Put(state.Entry{
		ID:         op.ArtifactID,
		Category:   artifact.CategoryIndex,
		Visibility: visibilityOf(op.Path),
		Status:     state.StatusActive,
		Path:       op.Path,
		SourcePath: dir,
		ItemName:   dir,
		ItemKind:   artifact.CategoryIndex,
	})
	return nil
}

func (w *Writer) writeArtifact(rel, content string) error {
	full := filepath.Join(w.DocDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(full, []byte(content), 0644)
}

func (w *Writer) markDeprecated(op plan.Operation, reg *state.Registry) {
	if e, ok := reg.Lookup(op.ArtifactID); ok {
		e.Status = state.StatusDeprecated
		reg.Put(e)
	}
}

// warnDangling logs related references that do not resolve within the
// registry. Dangling links are warnings by contract, never errors.
func (w *Writer) warnDangling(a artifact.Artifact, reg *state.Registry) {
	if w.Log == nil {
		return
	}
	for _, ref := range a.Content.Related {
		if _, ok := reg.Lookup(ref); !ok && ref != a.ID {
			w.Log.Warn("dangling related link", "artifact", a.ID, "ref", ref)
		}
	}
}

func entryFor(a artifact.Artifact, relPath string) state.Entry {
	return state.Entry{
		ID:         a.ID,
		Category:   a.Category,
		Visibility: a.Visibility,
		Status:     a.Status,
		Path:       relPath,
		SourcePath: a.SourcePath,
		ItemName:   a.ItemName,
		ItemKind:   a.Category,
	}
}

// deprecateContent prepends the deprecation banner after the title line and
// flips the status field in the header marker. Applying it twice is a no-op.
func deprecateContent(content string) string {
	content = strings.Replace(content, "status=active", "status="+artifact.StatusDeprecated, 1)
	if strings.Contains(content, artifact.DeprecationBanner) {
		return content
	}
	lines := strings.SplitN(content, "\n", 3)
	if len(lines) >= 2 && strings.HasPrefix(lines[1], "# ") {
		rest := ""
		if len(lines) == 3 {
			rest = lines[2]
		}
		return lines[0] + "\n" + lines[1] + "\n\n" + artifact.DeprecationBanner + "\n" + rest
	}
	return artifact.DeprecationBanner + "\n\n" + content
}

func visibilityOf(p string) string {
	if strings.HasPrefix(p, "private/") {
		return "private"
	}
	return "public"
}
