package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"docsync/internal/fsx"
)

// Artifact statuses recorded in the registry.
const (
	StatusActive     = "active"
	StatusDeprecated = "deprecated"
)

// Entry records one documentation artifact known from the prior pass. The
// planner consults it to decide delete-vs-deprecate and to locate the owning
// index; the writer keeps it current as operations are applied.
type Entry struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Visibility string `json:"visibility"`
	Status     string `json:"status"`
	Path       string `json:"path"`       // relative to the documentation directory
	SourcePath string `json:"sourcePath"` // relative to the repository root
	ItemName   string `json:"itemName"`
	ItemKind   string `json:"itemKind"`
}

// Registry is the artifact registry persisted beside the run state. It is
// saved at the same commit point as the revision marker.
type Registry struct {
	Artifacts map[string]Entry `json:"artifacts"`
}

func registryPath(docDir string) string {
	return filepath.Join(docDir, ".docregistry")
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{Artifacts: make(map[string]Entry)}
}

// LoadRegistry reads the registry. A missing file yields an empty registry,
// not an error: the first run after bootstrap starts from nothing.
func LoadRegistry(docDir string) (*Registry, error) {
	data, err := os.ReadFile(registryPath(docDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewRegistry(), nil
		}
		return nil, err
	}
	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Artifacts == nil {
		r.Artifacts = make(map[string]Entry)
	}
	return &r, nil
}

// Save writes the registry atomically.
func (r *Registry) Save(docDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return fsx.WriteFileAtomic(registryPath(docDir), data, 0644)
}

// Lookup returns the entry for id, if known.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.Artifacts[id]
	return e, ok
}

// Put inserts or replaces an entry.
func (r *Registry) Put(e Entry) {
	r.Artifacts[e.ID] = e
}

// Delete removes an entry.
func (r *Registry) Delete(id string) {
	delete(r.Artifacts, id)
}

// BySource returns all entries whose SourcePath equals path, sorted by id.
// The planner uses this to find items that vanished with a removed file.
func (r *Registry) BySource(path string) []Entry {
	var out []Entry
	for _, e := range r.Artifacts {
		if e.SourcePath == path {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns all artifact ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.Artifacts))
	for id := range r.Artifacts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
