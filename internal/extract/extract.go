// Package extract defines the pluggable per-ecosystem source-item extractor.
// The planner consumes this interface only; per-language parsing never leaks
// into the core.
package extract

import (
	"fmt"
	"sort"
)

// Item kinds.
const (
	KindFunction = "function"
	KindType     = "type"
	KindError    = "error"
)

// Visibility values. Private items are documented under the private subtree.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Param is one parameter or return value of a documented item.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Item is one exported source item extracted from a file.
type Item struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Signature  string   `json:"signature"`
	Doc        string   `json:"doc"`
	Params     []Param  `json:"params,omitempty"`
	Returns    []Param  `json:"returns,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Examples   []string `json:"examples,omitempty"`
	Related    []string `json:"related,omitempty"` // referenced item names, resolved later
	Deprecated bool     `json:"deprecated"`
	Visibility string   `json:"visibility"`
}

// Extractor lists the public items of a single source file. Implementations
// must be deterministic: the same content always yields the same items in the
// same order.
type Extractor interface {
	// Stack returns the ecosystem tag this extractor serves.
	Stack() string
	// Supports reports whether the file at path is extractable.
	Supports(path string) bool
	// ListPublicItems parses src and returns its public items sorted by name.
	ListPublicItems(path string, src []byte) ([]Item, error)
}

var extractors = map[string]Extractor{}

// Register installs an extractor for its stack. Later registrations replace
// earlier ones.
func Register(e Extractor) {
	extractors[e.Stack()] = e
}

// Lookup returns the extractor for a stack tag.
func Lookup(stack string) (Extractor, error) {
	e, ok := extractors[stack]
	if !ok {
		return nil, fmt.Errorf("extract: no extractor registered for stack %q", stack)
	}
	return e, nil
}

// Registered returns the registered stack tags in sorted order.
func Registered() []string {
	out := make([]string, 0, len(extractors))
	for s := range extractors {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SortItems orders items by name, the canonical order for planning.
func SortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
}
