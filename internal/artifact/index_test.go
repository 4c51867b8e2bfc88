package artifact

import (
	"strings"
	"testing"
)

func TestRenderIndexSortsByTitle(t *testing.T) {
	out := RenderIndex("public/pkg/store/_index.md", []IndexEntry{
		{ID: "z", Title: "Put", File: "store.put.md", Category: CategoryFunction, Status: StatusActive},
		{ID: "a", Title: "Get", File: "store.get.md", Category: CategoryFunction, Status: StatusActive},
	})

	getAt := strings.Index(out, "[Get]")
	putAt := strings.Index(out, "[Put]")
	if getAt < 0 || putAt < 0 || getAt > putAt {
		t.Fatalf("entries not sorted by title:\n%s", out)
	}
	if !strings.HasPrefix(out, "<!-- docsync id=idx.public-pkg-store category=index visibility=public status=active source=public/pkg/store -->\n") {
		t.Fatalf("index marker malformed:\n%s", out)
	}
}

func TestRenderIndexDeprecatedSuffix(t *testing.T) {
	out := RenderIndex("public/pkg/_index.md", []IndexEntry{
		{ID: "a", Title: "Old", File: "api.old.md", Category: CategoryFunction, Status: StatusDeprecated},
	})
	if !strings.Contains(out, "- [Old](api.old.md) — function *(deprecated)*") {
		t.Fatalf("deprecated entry not flagged:\n%s", out)
	}
}

func TestRenderIndexEmpty(t *testing.T) {
	out := RenderIndex("private/cmd/_index.md", nil)
	if !strings.Contains(out, "No documented items in this directory.") {
		t.Fatalf("empty index missing placeholder:\n%s", out)
	}
	if !strings.Contains(out, "visibility=private") {
		t.Fatalf("private subtree not reflected:\n%s", out)
	}
}

func TestRenderIndexIsDeterministic(t *testing.T) {
	entries := []IndexEntry{
		{ID: "b", Title: "B", File: "b.md", Category: CategoryType, Status: StatusActive},
		{ID: "a", Title: "A", File: "a.md", Category: CategoryFunction, Status: StatusActive},
	}
	if RenderIndex("public/x/_index.md", entries) != RenderIndex("public/x/_index.md", entries) {
		t.Fatal("RenderIndex is not deterministic")
	}
}
