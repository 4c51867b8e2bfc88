package writer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docsync/internal/artifact"
	"docsync/internal/plan"
	"docsync/internal/state"
)

func testArtifact(item, status string) artifact.Artifact {
	return artifact.Artifact{
		ID:         artifact.ID("pkg/store/store.go", item),
		ItemName:   item,
		Category:   artifact.CategoryFunction,
		Visibility: "public",
		Status:     status,
		SourcePath: "pkg/store/store.go",
		Content: artifact.Content{
			Signature:   "func " + item + "()",
			Description: item + " does something.",
		},
	}
}

func createOp(item string) plan.Operation {
	a := testArtifact(item, artifact.StatusActive)
	return plan.Operation{
		ArtifactID: a.ID,
		Op:         plan.OpCreate,
		SourceRef:  a.SourcePath + "#" + item,
		Path:       artifact.Path(a.SourcePath, item, a.Visibility),
		Artifact:   &a,
	}
}

func readDoc(t *testing.T, docDir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(docDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading %s: %v", rel, err)
	}
	return string(data)
}

func TestApplyCreate(t *testing.T) {
	docDir := t.TempDir()
	w := &Writer{DocDir: docDir, Stack: "go"}
	reg := state.NewRegistry()

	op := createOp("Get")
	res, err := w.Apply([]plan.Operation{op}, reg)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("Applied = %d ops, want 1", len(res.Applied))
	}

	content := readDoc(t, docDir, op.Path)
	if !strings.Contains(content, "# Get") {
		t.Fatalf("artifact content:\n%s", content)
	}
	e, ok := reg.Lookup(op.ArtifactID)
	if !ok {
		t.Fatal("registry missing the created artifact")
	}
	if e.Status != state.StatusActive || e.Path != op.Path || e.ItemName != "Get" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	docDir := t.TempDir()
	w := &Writer{DocDir: docDir, Stack: "go"}
	reg := state.NewRegistry()
	op := createOp("Get")

	if _, err := w.Apply([]plan.Operation{op}, reg); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	first := readDoc(t, docDir, op.Path)

	if _, err := w.Apply([]plan.Operation{op}, reg); err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if second := readDoc(t, docDir, op.Path); second != first {
		t.Fatal("re-applying the same operation changed the file")
	}
}

func TestApplyDeprecateInPlace(t *testing.T) {
	docDir := t.TempDir()
	w := &Writer{DocDir: docDir, Stack: "go"}
	reg := state.NewRegistry()

	op := createOp("Put")
	if _, err := w.Apply([]plan.Operation{op}, reg); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dep := plan.Operation{
		ArtifactID: op.ArtifactID,
		Op:         plan.OpDeprecate,
		SourceRef:  op.SourceRef,
		Path:       op.Path,
	}
	if _, err := w.Apply([]plan.Operation{dep}, reg); err != nil {
		t.Fatalf("deprecate failed: %v", err)
	}

	content := readDoc(t, docDir, op.Path)
	if !strings.Contains(content, "status=deprecated") {
		t.Fatalf("status not flipped:\n%s", content)
	}
	if !strings.Contains(content, artifact.DeprecationBanner) {
		t.Fatal("banner missing")
	}
	if !strings.Contains(content, "Put does something.") {
		t.Fatal("deprecation lost the original content")
	}
	e, _ := reg.Lookup(op.ArtifactID)
	if e.Status != state.StatusDeprecated {
		t.Fatalf("registry status = %q", e.Status)
	}

	// Deprecating twice changes nothing further.
	before := content
	if _, err := w.Apply([]plan.Operation{dep}, reg); err != nil {
		t.Fatalf("second deprecate failed: %v", err)
	}
	if after := readDoc(t, docDir, op.Path); after != before {
		t.Fatal("second deprecation modified the file")
	}
}

func TestApplyDeprecateWithFreshContent(t *testing.T) {
	docDir := t.TempDir()
	w := &Writer{DocDir: docDir, Stack: "go"}
	reg := state.NewRegistry()

	a := testArtifact("Put", artifact.StatusActive)
	dep := plan.Operation{
		ArtifactID: a.ID,
		Op:         plan.OpDeprecate,
		SourceRef:  a.SourcePath + "#Put",
		Path:       artifact.Path(a.SourcePath, "Put", a.Visibility),
		Artifact:   &a,
	}
	if _, err := w.Apply([]plan.Operation{dep}, reg); err != nil {
		t.Fatalf("deprecate failed: %v", err)
	}
	content := readDoc(t, docDir, dep.Path)
	if !strings.Contains(content, "status=deprecated") || !strings.Contains(content, artifact.DeprecationBanner) {
		t.Fatalf("re-render not deprecated:\n%s", content)
	}
}

func TestApplyDelete(t *testing.T) {
	docDir := t.TempDir()
	w := &Writer{DocDir: docDir, Stack: "go"}
	reg := state.NewRegistry()

	op := createOp("Get")
	if _, err := w.Apply([]plan.Operation{op}, reg); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	del := plan.Operation{ArtifactID: op.ArtifactID, Op: plan.OpDelete, Path: op.Path}
	if _, err := w.Apply([]plan.Operation{del}, reg); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(docDir, filepath.FromSlash(op.Path))); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("file survived delete")
	}
	if _, ok := reg.Lookup(op.ArtifactID); ok {
		t.Fatal("registry entry survived delete")
	}

	// Deleting again is a no-op, not an error.
	if _, err := w.Apply([]plan.Operation{del}, reg); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}

func TestApplyIndex(t *testing.T) {
	docDir := t.TempDir()
	w := &Writer{DocDir: docDir, Stack: "go"}
	reg := state.NewRegistry()

	ops := []plan.Operation{
		createOp("Get"),
		createOp("Put"),
		{
			ArtifactID: artifact.IndexID("public/pkg/store/_index.md"),
			Op:         plan.OpUpdate,
			SourceRef:  "public/pkg/store/_index.md",
			Path:       "public/pkg/store/_index.md",
			Index:      true,
		},
	}
	if _, err := w.Apply(ops, reg); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	content := readDoc(t, docDir, "public/pkg/store/_index.md")
	if !strings.Contains(content, "[Get](store.get.md)") || !strings.Contains(content, "[Put](store.put.md)") {
		t.Fatalf("index content:\n%s", content)
	}
	if _, ok := reg.Lookup("idx.public-pkg-store"); !ok {
		t.Fatal("index not recorded in the registry")
	}
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	docDir := t.TempDir()
	w := &Writer{DocDir: docDir, Stack: "go"}
	reg := state.NewRegistry()

	bad := plan.Operation{ArtifactID: "x", Op: plan.OpCreate, Path: "public/x.md"} // no content
	after := createOp("Get")

	res, err := w.Apply([]plan.Operation{createOp("Put"), bad, after}, reg)
	if err == nil {
		t.Fatal("Apply succeeded with a contentless create")
	}
	var werr *WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("error type = %T", err)
	}
	if werr.Op.ArtifactID != "x" {
		t.Fatalf("failed op = %s", werr.Op.ArtifactID)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("Applied = %d ops, want 1 (stop at first failure)", len(res.Applied))
	}
	if _, err := os.Stat(filepath.Join(docDir, "public", "pkg", "store", "store.get.md")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("operation after the failure was still applied")
	}
}
