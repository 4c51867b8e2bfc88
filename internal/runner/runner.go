// Package runner drives one documentation pass: lock, resolve, plan, apply,
// commit, and optionally sync. The revision marker update is the single
// commit point of the whole run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"docsync/internal/config"
	"docsync/internal/extract"
	"docsync/internal/gitrepo"
	"docsync/internal/logging"
	"docsync/internal/plan"
	"docsync/internal/state"
	"docsync/internal/syncer"
	"docsync/internal/ux"
	"docsync/internal/writer"
)

// Bounded remote calls: a timeout aborts only the specific step, leaving the
// revision marker unadvanced.
const (
	resolveTimeout = 90 * time.Second
	pushTimeout    = 180 * time.Second
)

// Runner wires the pipeline for one invocation.
type Runner struct {
	DocDir string
	Config *config.Configuration
	Repo   *gitrepo.Repository
	Log    *slog.Logger

	DryRun    bool
	FullScan  bool
	SyncAfter bool
}

// Run executes one incremental documentation pass.
func (r *Runner) Run(ctx context.Context) error {
	lock, err := state.Acquire(r.DocDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	log = logging.WithRun(log, lock.RunID)

	st, err := state.Load(r.DocDir)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			return fmt.Errorf("loading state: %w", err)
		}
		st = &state.RunState{}
	}
	reg, err := state.LoadRegistry(r.DocDir)
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}

	toRev, err := r.Repo.Head()
	if err != nil {
		return err
	}

	fromRev := st.LastProcessedRevision
	if r.FullScan {
		fromRev = ""
	}

	if fromRev == toRev {
		ux.UpToDate(toRev)
		if r.SyncAfter && r.Config.SyncEnabled() {
			return r.runSync(ctx, log, st, reg)
		}
		return nil
	}

	changes, err := r.resolve(ctx, log, fromRev, toRev)
	if err != nil {
		return err
	}

	planner := &plan.Planner{
		Extractor: r.extractor(log),
		Config:    r.Config,
		Log:       log,
	}
	ops, err := planner.Plan(changes, reg)
	if err != nil {
		return err
	}

	if r.DryRun {
		fmt.Printf("\n%sDry run — %d planned operations:%s\n\n", ux.Bold, len(ops), ux.Reset)
		for _, op := range ops {
			ux.PlanLine(op)
		}
		fmt.Println()
		return nil
	}

	ux.RunHeader(fromRev, toRev, len(changes))
	start := time.Now()

	w := &writer.Writer{DocDir: r.DocDir, Stack: r.Config.Stack, Log: log}
	res, err := w.Apply(ops, reg)
	for _, op := range res.Applied {
		ux.OpLine(op)
	}
	if err != nil {
		// The marker stays where it was: the next run recomputes the same
		// change set and re-applies it.
		ux.RunFail(err.Error())
		log.Error("apply failed", "applied", len(res.Applied), "error", err)
		return err
	}

	if ctx.Err() != nil {
		ux.RunFail(ctx.Err().Error())
		return ctx.Err()
	}

	// Commit point. Registry first, then the revision marker: a crash
	// between the two leaves the marker behind, which is safe to re-run.
	if err := reg.Save(r.DocDir); err != nil {
		ux.RunFail(err.Error())
		return fmt.Errorf("saving registry: %w", err)
	}
	st.LastProcessedRevision = toRev
	st.LastRunTimestamp = time.Now().UTC()
	if err := st.Save(r.DocDir); err != nil {
		ux.RunFail(err.Error())
		return fmt.Errorf("saving state: %w", err)
	}

	ux.RunComplete(len(res.Applied), toRev, time.Since(start))
	log.Info("run complete", "operations", len(res.Applied), "revision", toRev)

	if r.SyncAfter && r.Config.SyncEnabled() {
		return r.runSync(ctx, log, st, reg)
	}
	return nil
}

// Prune hard-deletes deprecated artifacts whose source items are still
// absent at head — the explicit confirmation pass for soft-removed items.
func (r *Runner) Prune(ctx context.Context) error {
	lock, err := state.Acquire(r.DocDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	reg, err := state.LoadRegistry(r.DocDir)
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}

	head, err := r.Repo.Head()
	if err != nil {
		return err
	}

	ext := r.extractor(log)
	planner := &plan.Planner{Extractor: ext, Config: r.Config, Log: log}
	ops := planner.PlanPrune(reg, func(e state.Entry) bool {
		content, err := r.Repo.FileAt(head, e.SourcePath)
		if err != nil || content == nil {
			return false
		}
		items, err := ext.ListPublicItems(e.SourcePath, content)
		if err != nil {
			return false
		}
		for _, it := range items {
			if it.Name == e.ItemName {
				return true
			}
		}
		return false
	})

	if len(ops) == 0 {
		fmt.Printf("\n%sNothing to prune.%s\n", ux.Dim, ux.Reset)
		return nil
	}

	if r.DryRun {
		fmt.Printf("\n%sDry run — %d prune operations:%s\n\n", ux.Bold, len(ops), ux.Reset)
		for _, op := range ops {
			ux.PlanLine(op)
		}
		fmt.Println()
		return nil
	}

	w := &writer.Writer{DocDir: r.DocDir, Stack: r.Config.Stack, Log: log}
	res, err := w.Apply(ops, reg)
	for _, op := range res.Applied {
		ux.OpLine(op)
	}
	if err != nil {
		ux.RunFail(err.Error())
		return err
	}
	if err := reg.Save(r.DocDir); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	fmt.Printf("\n%s✓ pruned %d artifacts%s\n", ux.Green, len(res.Applied), ux.Reset)
	return nil
}

// Sync runs the sync phase on its own, against the committed state.
func (r *Runner) Sync(ctx context.Context) error {
	if !r.Config.SyncEnabled() {
		return fmt.Errorf("no syncTarget configured; edit documentation/config.json to enable sync")
	}
	lock, err := state.Acquire(r.DocDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	st, err := state.Load(r.DocDir)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return fmt.Errorf("no completed run to sync; run 'docsync run' first")
		}
		return fmt.Errorf("loading state: %w", err)
	}
	reg, err := state.LoadRegistry(r.DocDir)
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	return r.runSync(ctx, log, st, reg)
}

// runSync pushes to the sync target. A failure here never rolls back the
// core documentation state.
func (r *Runner) runSync(ctx context.Context, log *slog.Logger, st *state.RunState, reg *state.Registry) error {
	sctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	s := &syncer.Syncer{Target: r.Config.SyncTarget, DocDir: r.DocDir, Log: log}
	start := time.Now()
	res, err := s.Sync(sctx, reg, st.SyncedArtifacts)
	if err != nil {
		ux.SyncFail(err.Error())
		log.Error("sync failed", "error", err)
		return err
	}

	st.SyncedArtifacts = res.Pushed
	if err := st.Save(r.DocDir); err != nil {
		return fmt.Errorf("saving state after sync: %w", err)
	}
	ux.SyncComplete(len(res.Pushed), len(res.Deleted))
	logging.WithDuration(log, time.Since(start)).Info("sync complete",
		"pushed", len(res.Pushed), "deleted", len(res.Deleted))
	return nil
}

// resolve computes the change set, degrading to a full rescan when the
// recorded revision no longer exists (history rewritten).
func (r *Runner) resolve(ctx context.Context, log *slog.Logger, fromRev, toRev string) ([]gitrepo.FileChange, error) {
	rctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	changes, err := r.Repo.Resolve(rctx, fromRev, toRev, r.Config.ExcludePatterns)
	if err == nil {
		return changes, nil
	}
	if fromRev != "" && errors.Is(err, gitrepo.ErrRevisionUnreachable) {
		ux.RescanWarning(fromRev)
		log.Warn("revision unreachable, full rescan", "from", fromRev)
		return r.Repo.Resolve(rctx, "", toRev, r.Config.ExcludePatterns)
	}
	return nil, err
}

// extractor returns the stack's extractor, or a no-op one for stacks without
// a registered implementation: their file changes simply yield no items.
func (r *Runner) extractor(log *slog.Logger) extract.Extractor {
	ext, err := extract.Lookup(r.Config.Stack)
	if err != nil {
		log.Warn("no extractor for stack, documenting nothing", "stack", r.Config.Stack)
		return noopExtractor{stack: r.Config.Stack}
	}
	return ext
}

type noopExtractor struct{ stack string }

func (n noopExtractor) Stack() string        { return n.stack }
func (n noopExtractor) Supports(string) bool { return false }
func (n noopExtractor) ListPublicItems(string, []byte) ([]extract.Item, error) {
	return nil, nil
}
