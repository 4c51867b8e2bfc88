package ux

import (
	"fmt"
	"time"

	"docsync/internal/plan"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// RunHeader prints the banner for a documentation pass.
func RunHeader(fromRev, toRev string, changeCount int) {
	fmt.Printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	from := shortRev(fromRev)
	if from == "" {
		from = "(first run)"
	}
	fmt.Printf("%s[%s]%s  %sDocumenting %s → %s (%d changed files)%s\n",
		Dim, timestamp(), Reset, Bold, from, shortRev(toRev), changeCount, Reset)
	fmt.Printf("%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// OpLine prints one applied operation.
func OpLine(op plan.Operation) {
	glyph, color := "•", Cyan
	switch op.Op {
	case plan.OpCreate:
		glyph, color = "+", Green
	case plan.OpUpdate:
		glyph, color = "~", Cyan
	case plan.OpDeprecate:
		glyph, color = "!", Yellow
	case plan.OpDelete:
		glyph, color = "-", Red
	}
	fmt.Printf("  %s%s%s %s\n", color, glyph, Reset, plan.Describe(op))
}

// PlanLine prints one planned operation during a dry run.
func PlanLine(op plan.Operation) {
	fmt.Printf("  %s\n", plan.Describe(op))
}

// UpToDate prints the nothing-to-do message.
func UpToDate(rev string) {
	fmt.Printf("\n%sDocumentation is up to date at %s.%s\n", Dim, shortRev(rev), Reset)
}

// RescanWarning announces the degrade-to-full-rescan path.
func RescanWarning(fromRev string) {
	fmt.Printf("%s[%s]%s  %s⚠ revision %s is unreachable (history rewritten?) — falling back to a full rescan%s\n",
		Dim, timestamp(), Reset, Yellow, shortRev(fromRev), Reset)
}

// RunComplete prints the final success line.
func RunComplete(applied int, rev string, duration time.Duration) {
	m := int(duration.Minutes())
	s := int(duration.Seconds()) % 60
	fmt.Printf("\n%s[%s]%s  %s✓ %d operations applied, revision marker now %s (%dm %02ds)%s\n",
		Dim, timestamp(), Reset, Green, applied, shortRev(rev), m, s, Reset)
}

// RunFail prints a failure line. The revision marker has not moved.
func RunFail(errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ run failed: %s%s\n", Dim, timestamp(), Reset, Red, errMsg, Reset)
	fmt.Printf("  %sThe revision marker was not advanced; re-run to retry the same change set.%s\n", Dim, Reset)
}

// SyncFail prints a sync-phase failure. Core state is already committed.
func SyncFail(errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ sync failed: %s%s\n", Dim, timestamp(), Reset, Red, errMsg, Reset)
	fmt.Printf("  %sDocumentation state is committed; run 'docsync sync' to retry the push.%s\n", Dim, Reset)
}

// SyncComplete prints the sync success line.
func SyncComplete(pushed, deleted int) {
	fmt.Printf("%s[%s]%s  %s✓ sync: %d artifacts pushed, %d removed from target%s\n",
		Dim, timestamp(), Reset, Green, pushed, deleted, Reset)
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
