package artifact

import (
	"fmt"
	"strings"
)

// DeprecationBanner is prepended to deprecated artifacts, content otherwise
// retained.
const DeprecationBanner = "> **Deprecated.** This item is retained for reference and may be removed in a future pass."

// markerPrefix opens the machine-readable header each rendered artifact
// carries, so files can be re-parsed without guessing.
const markerPrefix = "<!-- docsync "

// Render produces the artifact's markdown. The output is byte-deterministic
// for identical input, which is what makes re-applying an operation a no-op.
func Render(a Artifact, stack string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%sid=%s category=%s visibility=%s status=%s source=%s -->\n",
		markerPrefix, a.ID, a.Category, a.Visibility, a.Status, a.SourcePath)
	fmt.Fprintf(&b, "# %s\n", title(a))

	if a.Status == StatusDeprecated {
		b.WriteString("\n" + DeprecationBanner + "\n")
	}

	fmt.Fprintf(&b, "\n**Category**: %s · **Source**: `%s`\n", a.Category, a.SourcePath)

	if a.Content.Signature != "" {
		fmt.Fprintf(&b, "\n## Signature\n\n```%s\n%s\n```\n", stack, a.Content.Signature)
	}
	if a.Content.Description != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", a.Content.Description)
	}
	if len(a.Content.Parameters) > 0 {
		b.WriteString("\n## Parameters\n\n")
		for _, p := range a.Content.Parameters {
			if p.Name != "" {
				fmt.Fprintf(&b, "- `%s` — `%s`\n", p.Name, p.Type)
			} else {
				fmt.Fprintf(&b, "- `%s`\n", p.Type)
			}
		}
	}
	if len(a.Content.Returns) > 0 {
		b.WriteString("\n## Returns\n\n")
		for _, p := range a.Content.Returns {
			if p.Name != "" {
				fmt.Fprintf(&b, "- `%s` — `%s`\n", p.Name, p.Type)
			} else {
				fmt.Fprintf(&b, "- `%s`\n", p.Type)
			}
		}
	}
	if len(a.Content.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range a.Content.Errors {
			fmt.Fprintf(&b, "- `%s`\n", e)
		}
	}
	if len(a.Content.Examples) > 0 {
		b.WriteString("\n## Examples\n")
		for _, ex := range a.Content.Examples {
			fmt.Fprintf(&b, "\n```%s\n%s\n```\n", stack, ex)
		}
	}
	if len(a.Content.Related) > 0 {
		b.WriteString("\n## Related\n\n")
		for _, id := range a.Content.Related {
			fmt.Fprintf(&b, "- [%s](#)\n", id)
		}
	}

	return b.String()
}

// title prefers the item's own name, falling back to the id's item segment.
func title(a Artifact) string {
	if a.ItemName != "" {
		return a.ItemName
	}
	parts := strings.Split(a.ID, ".")
	return parts[len(parts)-1]
}
