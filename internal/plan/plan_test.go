package plan

import (
	"reflect"
	"testing"

	"docsync/internal/config"
	"docsync/internal/extract"
	"docsync/internal/gitrepo"
	"docsync/internal/state"
)

const storeV1 = `package store

// Get reads a value.
func Get(key string) string { return "" }

// Put writes a value.
func Put(key, value string) {}
`

const storeV2 = `package store

// Get reads a value, or the empty string.
func Get(key string) string { return "" }

// Put writes a value.
func Put(key, value string) {}
`

const storeNoPut = `package store

// Get reads a value.
func Get(key string) string { return "" }
`

const storePutDeprecated = `package store

// Get reads a value.
func Get(key string) string { return "" }

// Put writes a value.
//
// Deprecated: use Get.
func Put(key, value string) {}
`

func newPlanner(t *testing.T, policy string) *Planner {
	t.Helper()
	ext, err := extract.Lookup("go")
	if err != nil {
		t.Fatalf("no go extractor: %v", err)
	}
	return &Planner{
		Extractor: ext,
		Config:    &config.Configuration{Stack: "go", DeletePolicy: policy},
	}
}

func opKinds(ops []Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		if op.Index {
			out[i] = "index"
			continue
		}
		out[i] = op.Op
	}
	return out
}

func TestPlanAddedFile(t *testing.T) {
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{Path: "pkg/store/store.go", Kind: gitrepo.ChangeAdded, NewContent: []byte(storeV1)},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := []string{OpCreate, OpCreate, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if ops[0].ArtifactID != "pkg-store.store.get" || ops[1].ArtifactID != "pkg-store.store.put" {
		t.Fatalf("create ids = %s, %s", ops[0].ArtifactID, ops[1].ArtifactID)
	}
	if ops[0].Artifact == nil {
		t.Fatal("create op carries no artifact")
	}
	if ops[0].Path != "public/pkg/store/store.get.md" {
		t.Fatalf("create path = %q", ops[0].Path)
	}
	idx := ops[2]
	if idx.Path != "public/pkg/store/_index.md" || idx.ArtifactID != "idx.public-pkg-store" {
		t.Fatalf("index op = %+v", idx)
	}
}

func TestPlanUnchangedItemSkipped(t *testing.T) {
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{
			Path:       "pkg/store/store.go",
			Kind:       gitrepo.ChangeModified,
			OldContent: []byte(storeV1),
			NewContent: []byte(storeV2),
		},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	// Only Get's doc changed; Put is identical and must not reappear.
	want := []string{OpUpdate}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if ops[0].ArtifactID != "pkg-store.store.get" {
		t.Fatalf("update id = %s", ops[0].ArtifactID)
	}
}

func TestPlanNewItemBesideModifiedItem(t *testing.T) {
	old := `package api

// Bar does a thing.
func Bar() {}
`
	cur := `package api

// Bar does a thing, carefully.
func Bar() {}

// Foo is brand new.
func Foo() {}
`
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{Path: "pkg/api/api.go", Kind: gitrepo.ChangeModified, OldContent: []byte(old), NewContent: []byte(cur)},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	// Bar's doc changed and Foo appeared; Foo's directory index refreshes once.
	want := []string{OpUpdate, OpCreate, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if ops[0].ArtifactID != "pkg-api.api.bar" || ops[1].ArtifactID != "pkg-api.api.foo" {
		t.Fatalf("ids = %s, %s", ops[0].ArtifactID, ops[1].ArtifactID)
	}
}

func TestPlanNoChangesNoOps(t *testing.T) {
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{
			Path:       "pkg/store/store.go",
			Kind:       gitrepo.ChangeModified,
			OldContent: []byte(storeV1),
			NewContent: []byte(storeV1),
		},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("ops = %v, want none", ops)
	}
}

func TestPlanRemovedItemDeprecatesFirst(t *testing.T) {
	reg := state.NewRegistry()
	reg.Put(state.Entry{
		ID:         "pkg-store.store.put",
		Status:     state.StatusActive,
		Path:       "public/pkg/store/store.put.md",
		SourcePath: "pkg/store/store.go",
		ItemName:   "Put",
	})

	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{
			Path:       "pkg/store/store.go",
			Kind:       gitrepo.ChangeModified,
			OldContent: []byte(storeV1),
			NewContent: []byte(storeNoPut),
		},
	}, reg)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := []string{OpDeprecate, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if ops[0].Artifact != nil {
		t.Fatal("removal-driven deprecation should carry no fresh content")
	}
}

func TestPlanRemovedDeprecatedItemDeletes(t *testing.T) {
	reg := state.NewRegistry()
	reg.Put(state.Entry{
		ID:         "pkg-store.store.put",
		Status:     state.StatusDeprecated,
		Path:       "public/pkg/store/store.put.md",
		SourcePath: "pkg/store/store.go",
		ItemName:   "Put",
	})

	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{
			Path:       "pkg/store/store.go",
			Kind:       gitrepo.ChangeModified,
			OldContent: []byte(storeV1),
			NewContent: []byte(storeNoPut),
		},
	}, reg)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := []string{OpDelete, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
}

func TestPlanImmediatePolicyDeletes(t *testing.T) {
	p := newPlanner(t, config.DeleteImmediate)
	ops, err := p.Plan([]gitrepo.FileChange{
		{
			Path:       "pkg/store/store.go",
			Kind:       gitrepo.ChangeModified,
			OldContent: []byte(storeV1),
			NewContent: []byte(storeNoPut),
		},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	want := []string{OpDelete, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
}

func TestPlanDeprecationFlagTransition(t *testing.T) {
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{
			Path:       "pkg/store/store.go",
			Kind:       gitrepo.ChangeModified,
			OldContent: []byte(storeV1),
			NewContent: []byte(storePutDeprecated),
		},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	// The flag flip re-renders Put and refreshes the owning index.
	want := []string{OpDeprecate, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if ops[0].Artifact == nil {
		t.Fatal("flag-driven deprecation must carry fresh content")
	}
}

func TestPlanRemovedFile(t *testing.T) {
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{Path: "pkg/store/store.go", Kind: gitrepo.ChangeRemoved, OldContent: []byte(storeV1)},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	want := []string{OpDeprecate, OpDeprecate, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
}

func TestPlanSkipsUnsupportedFiles(t *testing.T) {
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{Path: "README.md", Kind: gitrepo.ChangeAdded, NewContent: []byte("# hi")},
		{Path: "pkg/store_test.go", Kind: gitrepo.ChangeAdded, NewContent: []byte(storeV1)},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("ops = %v, want none", ops)
	}
}

func TestPlanUnparseableContentTreatedAsEmpty(t *testing.T) {
	p := newPlanner(t, config.DeleteTwoPass)
	ops, err := p.Plan([]gitrepo.FileChange{
		{
			Path:       "pkg/store/store.go",
			Kind:       gitrepo.ChangeModified,
			OldContent: []byte(storeV1),
			NewContent: []byte("package {{{"),
		},
	}, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	// All prior items look removed; with two-pass they get deprecated.
	want := []string{OpDeprecate, OpDeprecate, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	changes := []gitrepo.FileChange{
		{Path: "pkg/store/store.go", Kind: gitrepo.ChangeAdded, NewContent: []byte(storeV1)},
		{Path: "pkg/api.go", Kind: gitrepo.ChangeAdded, NewContent: []byte("package pkg\n\n// Ping pings.\nfunc Ping() {}\n")},
	}
	p := newPlanner(t, config.DeleteTwoPass)

	first, err := p.Plan(changes, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	second, err := p.Plan(changes, state.NewRegistry())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("Plan is not deterministic")
	}
}

func TestPlanPrune(t *testing.T) {
	reg := state.NewRegistry()
	reg.Put(state.Entry{
		ID: "pkg-store.store.put", Status: state.StatusDeprecated,
		Path: "public/pkg/store/store.put.md", SourcePath: "pkg/store/store.go", ItemName: "Put",
	})
	reg.Put(state.Entry{
		ID: "pkg-store.store.get", Status: state.StatusActive,
		Path: "public/pkg/store/store.get.md", SourcePath: "pkg/store/store.go", ItemName: "Get",
	})
	reg.Put(state.Entry{
		ID: "pkg-api.api.old", Status: state.StatusDeprecated,
		Path: "public/pkg/api/api.old.md", SourcePath: "pkg/api/api.go", ItemName: "Old",
	})

	p := newPlanner(t, config.DeleteTwoPass)
	// Old came back in source; Put stayed gone.
	ops := p.PlanPrune(reg, func(e state.Entry) bool { return e.ItemName == "Old" })

	want := []string{OpDelete, "index"}
	if got := opKinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if ops[0].ArtifactID != "pkg-store.store.put" {
		t.Fatalf("pruned id = %s", ops[0].ArtifactID)
	}
}
