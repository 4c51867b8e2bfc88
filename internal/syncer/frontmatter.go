package syncer

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"docsync/internal/state"
)

// Frontmatter is the site-specific metadata prepended to each mirrored
// artifact.
type Frontmatter struct {
	Title        string `yaml:"title"`
	SidebarLabel string `yaml:"sidebar_label"`
	Deprecated   bool   `yaml:"deprecated,omitempty"`
}

// category is the _category_.json schema the site expects per directory.
type category struct {
	Label     string `json:"label"`
	Position  int    `json:"position"`
	Collapsed bool   `json:"collapsed"`
}

// Decorate strips the docsync header marker from rendered content and
// prepends YAML frontmatter derived from the registry entry.
func Decorate(content string, e state.Entry) (string, error) {
	fm := Frontmatter{
		Title:        e.ItemName,
		SidebarLabel: e.ItemName,
		Deprecated:   e.Status == state.StatusDeprecated,
	}
	meta, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}

	body := content
	if strings.HasPrefix(body, "<!-- docsync ") {
		if _, rest, ok := strings.Cut(body, "\n"); ok {
			body = rest
		}
	}

	return fmt.Sprintf("---\n%s---\n\n%s", meta, body), nil
}

// writeCategories writes one _category_.json per mirrored directory, with
// stable alphabetical positions. The destination root gets the configured
// sidebar label.
func (s *Syncer) writeCategories(destRoot string, dirs map[string][]state.Entry) error {
	names := make([]string, 0, len(dirs))
	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)

	rootSeen := false
	for i, dir := range names {
		label := path.Base(dir)
		if dir == "." {
			label = s.Target.SidebarLabel
			rootSeen = true
		}
		if err := writeCategory(filepath.Join(destRoot, filepath.FromSlash(dir)), label, i+1); err != nil {
			return err
		}
	}

	if !rootSeen && len(names) > 0 {
		if err := writeCategory(destRoot, s.Target.SidebarLabel, 1); err != nil {
			return err
		}
	}
	return nil
}

func writeCategory(dir, label string, position int) error {
	data, err := json.MarshalIndent(category{
		Label:     label,
		Position:  position,
		Collapsed: true,
	}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "_category_.json"), data, 0644)
}
