package ux

import (
	"fmt"
	"sort"
	"time"

	"docsync/internal/config"
	"docsync/internal/state"
)

// RenderStatus prints the last-run summary and artifact counts.
func RenderStatus(cfg *config.Configuration, st *state.RunState, reg *state.Registry) {
	fmt.Printf("\n%sStack:%s %s\n", Bold, Reset, cfg.Stack)

	if st == nil {
		fmt.Printf("%sState:%s no completed run yet (bootstrap pending)\n\n", Bold, Reset)
		return
	}

	fmt.Printf("%sLast processed revision:%s %s\n", Bold, Reset, st.LastProcessedRevision)
	fmt.Printf("%sLast run:%s %s\n", Bold, Reset, st.LastRunTimestamp.Local().Format(time.RFC1123))

	counts := make(map[string]int)
	deprecated := 0
	for _, id := range reg.IDs() {
		e, _ := reg.Lookup(id)
		counts[e.Category]++
		if e.Status == state.StatusDeprecated {
			deprecated++
		}
	}

	fmt.Printf("\n%sArtifacts:%s %d total", Bold, Reset, len(reg.Artifacts))
	if deprecated > 0 {
		fmt.Printf(" (%s%d deprecated%s)", Yellow, deprecated, Reset)
	}
	fmt.Println()

	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("  %-12s %d\n", c, counts[c])
	}

	if cfg.SyncEnabled() {
		fmt.Printf("\n%sSync target:%s %s (branch %s, %d artifacts last pushed)\n",
			Bold, Reset, cfg.SyncTarget.RepositoryURL, cfg.SyncTarget.Branch, len(st.SyncedArtifacts))
	} else {
		fmt.Printf("\n%sSync:%s disabled (no syncTarget configured)\n", Bold, Reset)
	}
	fmt.Println()
}
