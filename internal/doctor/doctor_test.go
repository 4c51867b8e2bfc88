package doctor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"docsync/internal/artifact"
	"docsync/internal/gitrepo"
	"docsync/internal/state"
)

// seedRepo builds a git work tree with one commit and opens it.
func seedRepo(t *testing.T) (*gitrepo.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		t.Fatal(err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@localhost", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
	opened, err := gitrepo.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	return opened, hash.String()
}

func writeTracked(t *testing.T, docDir string, e state.Entry) {
	t.Helper()
	a := artifact.Artifact{
		ID:         e.ID,
		ItemName:   e.ItemName,
		Category:   e.Category,
		Visibility: e.Visibility,
		Status:     e.Status,
		SourcePath: e.SourcePath,
	}
	full := filepath.Join(docDir, filepath.FromSlash(e.Path))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(artifact.Render(a, "go")), 0644); err != nil {
		t.Fatal(err)
	}
}

func activeEntry() state.Entry {
	return state.Entry{
		ID:         "root.main.run",
		Category:   artifact.CategoryFunction,
		Visibility: "public",
		Status:     state.StatusActive,
		Path:       "public/main.run.md",
		SourcePath: "main.go",
		ItemName:   "Run",
		ItemKind:   artifact.CategoryFunction,
	}
}

func TestRunConsistentTree(t *testing.T) {
	repo, head := seedRepo(t)
	docDir := t.TempDir()

	e := activeEntry()
	writeTracked(t, docDir, e)
	reg := state.NewRegistry()
	reg.Put(e)
	if err := reg.Save(docDir); err != nil {
		t.Fatal(err)
	}
	st := &state.RunState{LastProcessedRevision: head, LastRunTimestamp: time.Now()}
	if err := st.Save(docDir); err != nil {
		t.Fatal(err)
	}

	if err := Run(docDir, repo); err != nil {
		t.Fatalf("Run on consistent tree = %v", err)
	}
}

func TestRunMissingFileIsProblem(t *testing.T) {
	repo, _ := seedRepo(t)
	docDir := t.TempDir()

	reg := state.NewRegistry()
	reg.Put(activeEntry())
	if err := reg.Save(docDir); err != nil {
		t.Fatal(err)
	}

	if err := Run(docDir, repo); err == nil {
		t.Fatal("Run passed with a registry entry missing its file")
	}
}

func TestRunStatusMismatchIsProblem(t *testing.T) {
	repo, _ := seedRepo(t)
	docDir := t.TempDir()

	e := activeEntry()
	writeTracked(t, docDir, e)
	// Registry says deprecated, file says active.
	e.Status = state.StatusDeprecated
	reg := state.NewRegistry()
	reg.Put(e)
	if err := reg.Save(docDir); err != nil {
		t.Fatal(err)
	}

	if err := Run(docDir, repo); err == nil {
		t.Fatal("Run passed with a file/registry status mismatch")
	}
}

func TestRunOrphanIsWarningOnly(t *testing.T) {
	repo, _ := seedRepo(t)
	docDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(docDir, "public"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docDir, "public", "stray.md"), []byte("# stray\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Run(docDir, repo); err != nil {
		t.Fatalf("orphan file escalated to a problem: %v", err)
	}
}

func TestRunStaleRevisionIsWarningOnly(t *testing.T) {
	repo, _ := seedRepo(t)
	docDir := t.TempDir()

	st := &state.RunState{
		LastProcessedRevision: "0000000000000000000000000000000000000001",
		LastRunTimestamp:      time.Now(),
	}
	if err := st.Save(docDir); err != nil {
		t.Fatal(err)
	}

	if err := Run(docDir, repo); err != nil {
		t.Fatalf("stale revision escalated to a problem: %v", err)
	}
}
