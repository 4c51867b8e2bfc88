// Package state persists the run marker, the artifact registry, and the
// advisory run lock under the documentation directory. All writes are atomic
// so an interrupted run never leaves a partially written file observable.
package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"docsync/internal/fsx"
)

// ErrNotFound is returned by Load when no run state exists yet. It signals
// bootstrap mode: the configuration may already exist while state is being
// (re)computed, so this is distinct from config.ErrNotFound.
var ErrNotFound = errors.New("state: not found")

// RunState is the high-water mark of already-documented source. It is saved
// exactly once per run, after every planned operation has been applied.
type RunState struct {
	LastProcessedRevision string    `json:"lastProcessedRevision"`
	LastRunTimestamp      time.Time `json:"lastRunTimestamp"`
	SyncedArtifacts       []string  `json:"syncedArtifacts,omitempty"`
}

func statePath(docDir string) string {
	return filepath.Join(docDir, ".docstate")
}

// Load reads the run state from the documentation directory.
func Load(docDir string) (*RunState, error) {
	data, err := os.ReadFile(statePath(docDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the run state atomically. This is the single commit point of a
// run: callers must not invoke it until the writer has applied every planned
// operation.
func (s *RunState) Save(docDir string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return fsx.WriteFileAtomic(statePath(docDir), data, 0644)
}
