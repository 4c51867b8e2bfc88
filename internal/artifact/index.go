package artifact

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// IndexEntry is one listed artifact in a directory index.
type IndexEntry struct {
	ID       string
	Title    string
	File     string // file name within the index's directory
	Category string
	Status   string
}

// RenderIndex produces the _index.md for a directory scope. Entries are
// ordered alphabetically by title.
func RenderIndex(indexPath string, entries []IndexEntry) string {
	sorted := make([]IndexEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Title != sorted[j].Title {
			return sorted[i].Title < sorted[j].Title
		}
		return sorted[i].ID < sorted[j].ID
	})

	dir := path.Dir(toSlash(indexPath))
	var b strings.Builder
	fmt.Fprintf(&b, "%sid=%s category=%s visibility=%s status=%s source=%s -->\n",
		markerPrefix, IndexID(indexPath), CategoryIndex, visibilityOf(dir), StatusActive, dir)
	fmt.Fprintf(&b, "# %s\n\n", dir)

	if len(sorted) == 0 {
		b.WriteString("No documented items in this directory.\n")
		return b.String()
	}

	for _, e := range sorted {
		suffix := ""
		if e.Status == StatusDeprecated {
			suffix = " *(deprecated)*"
		}
		fmt.Fprintf(&b, "- [%s](%s) — %s%s\n", e.Title, e.File, e.Category, suffix)
	}
	return b.String()
}

// visibilityOf reads the visibility subtree from a doc-relative directory.
func visibilityOf(dir string) string {
	first := strings.SplitN(toSlash(dir), "/", 2)[0]
	if first == "private" {
		return "private"
	}
	return "public"
}
