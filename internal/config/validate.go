package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var validStacks = map[string]bool{
	"go":         true,
	"typescript": true,
	"javascript": true,
	"rust":       true,
	"python":     true,
	"java":       true,
	"csharp":     true,
	"ruby":       true,
	"php":        true,
	"elixir":     true,
}

// Validate checks the configuration for errors and sets defaults.
func Validate(cfg *Configuration) error {
	if cfg.Stack == "" {
		return fmt.Errorf("config: 'stack' is required")
	}
	if !validStacks[cfg.Stack] {
		return fmt.Errorf("config: unknown stack %q", cfg.Stack)
	}

	if cfg.DeletePolicy == "" {
		cfg.DeletePolicy = DeleteTwoPass
	}
	if cfg.DeletePolicy != DeleteTwoPass && cfg.DeletePolicy != DeleteImmediate {
		return fmt.Errorf("config: unknown deletePolicy %q (must be %q or %q)",
			cfg.DeletePolicy, DeleteTwoPass, DeleteImmediate)
	}

	for _, pattern := range cfg.ExcludePatterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("config: excludePatterns entries must be non-empty")
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("config: invalid exclude pattern %q", pattern)
		}
	}

	if st := cfg.SyncTarget; st != nil {
		if st.RepositoryURL == "" {
			return fmt.Errorf("config: syncTarget.repositoryUrl is required")
		}
		if st.Branch == "" {
			st.Branch = "main"
		}
		if st.DestinationPath == "" {
			return fmt.Errorf("config: syncTarget.destinationPath is required")
		}
		if strings.HasPrefix(st.DestinationPath, "/") {
			return fmt.Errorf("config: syncTarget.destinationPath must be relative, got %q", st.DestinationPath)
		}
		if st.SidebarLabel == "" {
			st.SidebarLabel = "Reference"
		}
	}

	return nil
}

// Stacks returns the set of recognized stack tags, for error messages and docs.
func Stacks() []string {
	out := make([]string, 0, len(validStacks))
	for s := range validStacks {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
