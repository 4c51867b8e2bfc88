// Package doctor checks the documentation tree for drift: registry entries
// without files, files without entries, dangling related links, and stale
// revision markers.
package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"docsync/internal/artifact"
	"docsync/internal/gitrepo"
	"docsync/internal/state"
	"docsync/internal/ux"
)

// Report aggregates findings. Problems make verification fail; warnings are
// informational only.
type Report struct {
	Problems []string
	Warnings []string
}

// Run verifies the documentation tree against the registry and the
// repository. Returns an error only when structural problems were found.
func Run(docDir string, repo *gitrepo.Repository) error {
	st, err := state.Load(docDir)
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		return err
	}
	reg, err := state.LoadRegistry(docDir)
	if err != nil {
		return err
	}

	rep := &Report{}
	checkRevision(rep, st, repo)
	checkRegistryFiles(rep, docDir, reg)
	checkOrphans(rep, docDir, reg)

	render(rep)
	if len(rep.Problems) > 0 {
		return fmt.Errorf("verification found %d problems", len(rep.Problems))
	}
	return nil
}

// checkRevision confirms the recorded marker still exists in the repository.
func checkRevision(rep *Report, st *state.RunState, repo *gitrepo.Repository) {
	if st == nil || st.LastProcessedRevision == "" {
		rep.Warnings = append(rep.Warnings, "no completed run recorded yet")
		return
	}
	if !repo.HasRevision(st.LastProcessedRevision) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"revision marker %s is unreachable; the next run will do a full rescan", st.LastProcessedRevision))
	}
}

// checkRegistryFiles verifies every registry entry has its file, the file
// parses, its recorded status matches, and its related links resolve.
func checkRegistryFiles(rep *Report, docDir string, reg *state.Registry) {
	for _, id := range reg.IDs() {
		e, _ := reg.Lookup(id)
		full := filepath.Join(docDir, filepath.FromSlash(e.Path))
		data, err := os.ReadFile(full)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				rep.Problems = append(rep.Problems, fmt.Sprintf("registry entry %s has no file at %s", id, e.Path))
			} else {
				rep.Problems = append(rep.Problems, fmt.Sprintf("reading %s: %v", e.Path, err))
			}
			continue
		}

		parsed, ok := artifact.Parse(string(data))
		if !ok {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s carries no docsync header", e.Path))
			continue
		}
		if parsed.ID != e.ID {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: file id %s does not match registry id %s", e.Path, parsed.ID, e.ID))
		}
		if parsed.Status != e.Status {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: file status %s does not match registry status %s", e.Path, parsed.Status, e.Status))
		}
		for _, ref := range parsed.Related {
			if _, ok := reg.Lookup(ref); !ok {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: dangling related link %s", e.Path, ref))
			}
		}
	}
}

// checkOrphans finds markdown files in the generated subtrees that the
// registry does not know about.
func checkOrphans(rep *Report, docDir string, reg *state.Registry) {
	known := make(map[string]bool, len(reg.Artifacts))
	for _, id := range reg.IDs() {
		e, _ := reg.Lookup(id)
		known[filepath.FromSlash(e.Path)] = true
	}

	for _, sub := range []string{"public", "private"} {
		root := filepath.Join(docDir, sub)
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
				return nil
			}
			rel, err := filepath.Rel(docDir, path)
			if err != nil {
				return nil
			}
			if !known[rel] {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("orphan file not tracked by the registry: %s", rel))
			}
			return nil
		})
	}
}

func render(rep *Report) {
	fmt.Printf("\n%s%s══ Verify ══%s\n\n", ux.Bold, ux.Cyan, ux.Reset)
	if len(rep.Problems) == 0 && len(rep.Warnings) == 0 {
		fmt.Printf("  %s✓ documentation tree is consistent%s\n\n", ux.Green, ux.Reset)
		return
	}
	for _, p := range rep.Problems {
		fmt.Printf("  %s✗ %s%s\n", ux.Red, p, ux.Reset)
	}
	for _, w := range rep.Warnings {
		fmt.Printf("  %s⚠ %s%s\n", ux.Yellow, w, ux.Reset)
	}
	fmt.Println()
}
