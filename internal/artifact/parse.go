package artifact

import (
	"regexp"
	"strings"
)

// Parsed is the machine-readable view of a rendered artifact file, recovered
// from its header marker and section structure.
type Parsed struct {
	ID         string
	Category   string
	Visibility string
	Status     string
	SourcePath string
	Related    []string
	Sections   map[string]string
}

var (
	markerRe      = regexp.MustCompile(`^<!-- docsync ((?:\w+=\S+ ?)+)-->$`)
	relatedLinkRe = regexp.MustCompile(`^- \[([^\]]+)\]`)
)

// Parse reads a rendered artifact back into its structured form. It scans
// line by line: the header marker first, then `## `-delimited sections.
// Returns ok=false when the content carries no docsync marker.
func Parse(content string) (Parsed, bool) {
	p := Parsed{Sections: make(map[string]string)}

	lines := strings.Split(content, "\n")
	if len(lines) == 0 {
		return p, false
	}

	m := markerRe.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return p, false
	}
	for _, kv := range strings.Fields(m[1]) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "id":
			p.ID = v
		case "category":
			p.Category = v
		case "visibility":
			p.Visibility = v
		case "status":
			p.Status = v
		case "source":
			p.SourcePath = v
		}
	}

	var section string
	var buf []string
	flush := func() {
		if section != "" {
			p.Sections[section] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = nil
	}
	for _, line := range lines[1:] {
		if name, ok := strings.CutPrefix(line, "## "); ok {
			flush()
			section = strings.TrimSpace(name)
			continue
		}
		if section != "" {
			buf = append(buf, line)
		}
	}
	flush()

	for _, line := range strings.Split(p.Sections["Related"], "\n") {
		if m := relatedLinkRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			p.Related = append(p.Related, m[1])
		}
	}

	return p, true
}
