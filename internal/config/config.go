package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"docsync/internal/fsx"
)

// ErrNotFound is returned by Load when no configuration file exists.
// The caller treats it as "bootstrap required", distinct from state.ErrNotFound.
var ErrNotFound = errors.New("config: not found")

// SyncTarget describes the optional documentation-site repository. Its
// presence in the configuration gates the whole sync subsystem.
type SyncTarget struct {
	RepositoryURL   string `json:"repositoryUrl"`
	Branch          string `json:"branch"`
	DestinationPath string `json:"destinationPath"`
	SidebarLabel    string `json:"sidebarLabel"`
}

// Delete policies for previously documented items that disappear from source.
const (
	DeleteTwoPass   = "two-pass"  // deprecate first, delete on the next removal signal
	DeleteImmediate = "immediate" // delete as soon as the item is gone
)

// Configuration is created once at bootstrap and is read-only input for every
// subsequent run.
type Configuration struct {
	Stack                       string      `json:"stack"`
	ExcludePatterns             []string    `json:"excludePatterns"`
	IncludeInlineExamples       bool        `json:"includeInlineExamples"`
	IncludeArchitectureDiagrams bool        `json:"includeArchitectureDiagrams"`
	DeletePolicy                string      `json:"deletePolicy"`
	SyncTarget                  *SyncTarget `json:"syncTarget,omitempty"`
}

func configPath(docDir string) string {
	return filepath.Join(docDir, "config.json")
}

// Load reads and validates the configuration from the documentation directory.
func Load(docDir string) (*Configuration, error) {
	data, err := os.ReadFile(configPath(docDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save validates and writes the configuration. The write is atomic: later
// saves fully replace the prior value, there is no merge logic here.
func Save(docDir string, cfg *Configuration) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(docDir, 0755); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(configPath(docDir), data, 0644)
}

// SyncEnabled reports whether a sync target is configured.
func (c *Configuration) SyncEnabled() bool {
	return c.SyncTarget != nil
}
