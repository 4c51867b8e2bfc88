package docs

var topics = []Topic{
	{
		Name:    "workflow",
		Title:   "The documentation workflow",
		Summary: "What a run does, step by step",
		Content: `
THE DOCUMENTATION WORKFLOW

Every 'docsync run' performs one incremental pass:

  1. Acquire the run lock (documentation/.doclock). A second invocation
     that finds a live lock fails immediately — runs never queue.
  2. Load config.json, .docstate, and .docregistry.
  3. Ask the repository for its head revision.
  4. Diff the last processed revision against head, drop files matching
     the exclude patterns, and sort the result by path.
  5. Extract the public items of each changed file (before and after),
     and map item-level differences to operations:

       item appeared            -> create
       signature or doc changed -> update
       flagged Deprecated:      -> deprecate
       item gone, was active    -> deprecate  (soft removal)
       item gone, was deprecated-> delete

     Directory indexes are refreshed after the creates, deletes, and
     status flips that affect them.
  6. Apply the operations in order. Every file write goes through a
     temporary file and a rename, so a crash never leaves a truncated
     artifact.
  7. Commit: save the registry, then advance the revision marker. This
     is the only point where .docstate changes. If anything failed
     before it, the marker stays put and the next run recomputes the
     same change set.
  8. Optionally, mirror public artifacts to the sync target (--sync).

'docsync run --dry-run' prints the planned operations and changes
nothing. 'docsync run --full' ignores the marker and rescans every
tracked file; the same happens automatically when the marker points at
a revision that no longer exists (for example after a history rewrite).

'docsync prune' is the explicit second pass that hard-deletes artifacts
deprecated by an earlier run whose source items are still gone.
`,
	},
	{
		Name:    "config",
		Title:   "Configuration reference",
		Summary: "Every field of documentation/config.json",
		Content: `
CONFIGURATION REFERENCE

documentation/config.json is created once by 'docsync init' and read on
every run. Saves replace the whole file; there is no merge logic.

  stack                  The project ecosystem. Set at bootstrap by
                         marker-file detection and immutable afterwards
                         unless you edit it by hand.

  excludePatterns        Glob patterns (with ** support) matched against
                         repository-relative paths. A path matching any
                         pattern never produces a file change; order is
                         irrelevant.

  includeInlineExamples  When true, indented example blocks from doc
                         comments are rendered into an Examples section.

  includeArchitectureDiagrams
                         Reserved for diagram generation in
                         architecture.md.

  deletePolicy           "two-pass" (default): a removed item is first
                         deprecated, and deleted only on a later removal
                         signal or by 'docsync prune'.
                         "immediate": removed items are deleted at once.

  syncTarget             Optional. Presence enables the sync subsystem:
                           repositoryUrl    clone/push URL of the site repo
                           branch           branch to commit to
                           destinationPath  subdirectory for the mirror
                           sidebarLabel     label for the root category
`,
	},
	{
		Name:    "state",
		Title:   "State files and recovery",
		Summary: "What .docstate, .docregistry and .doclock hold",
		Content: `
STATE FILES AND RECOVERY

documentation/.docstate
  lastProcessedRevision, lastRunTimestamp, and (when sync is enabled)
  the set of destination paths last pushed. Written atomically, exactly
  once per successful run, after every operation has been applied.
  Because the marker only moves at that commit point, a failed or
  interrupted run is always safe to retry: the next run recomputes the
  same change set and every operation is idempotent.

documentation/.docregistry
  The artifact registry: one entry per generated file with its id,
  category, visibility, status, and source item. The planner reads it
  to tell delete from deprecate; the writer keeps it current and it is
  saved at the same commit point as the marker.

documentation/.doclock
  The advisory run lock: pid, host, run id, start time. A live lock
  makes a second run fail fast. A lock whose process is dead on the
  same host is reclaimed automatically; 'docsync run --force-unlock'
  removes one unconditionally.

Deleting .docstate (or .docregistry) is not fatal: the next run treats
everything as new and regenerates the tree in place.
`,
	},
	{
		Name:    "sync",
		Title:   "Syncing to a documentation site",
		Summary: "How the sync target mirror works",
		Content: `
SYNCING TO A DOCUMENTATION SITE

With a syncTarget configured, 'docsync run --sync' (or 'docsync sync'
on its own) mirrors the public artifacts into a second repository:

  1. The target repo is cloned (single branch) into a temp directory.
  2. Each public artifact is copied under destinationPath with YAML
     frontmatter (title, sidebar_label, deprecated) replacing the
     internal header marker.
  3. Every mirrored directory gets a _category_.json with a label and
     a stable position.
  4. Paths pushed by the previous sync that are no longer produced are
     deleted from the target.
  5. One commit is made and pushed. Authentication uses the
     DOCSYNC_GIT_TOKEN environment variable (a .env file next to the
     repo is honored).

A failed push aborts only the sync phase. The core documentation state
was already committed and is not rolled back; retry with 'docsync sync'.
`,
	},
	{
		Name:    "stacks",
		Title:   "Stack detection and extractors",
		Summary: "Recognized ecosystems and how items are extracted",
		Content: `
STACK DETECTION AND EXTRACTORS

'docsync init' probes marker files in a fixed order and takes the first
match: go.mod (go), Cargo.toml (rust), tsconfig.json (typescript),
package.json (javascript), pyproject.toml / requirements.txt / setup.py
(python), pom.xml / build.gradle (java), *.sln / *.csproj (csharp),
Gemfile (ruby), composer.json (php), mix.exs (elixir). If nothing
matches, init refuses to guess and asks for --stack.

Item extraction is pluggable per stack. The built-in Go extractor
parses each changed file and reports exported functions and methods,
exported types, and exported Err* variables, together with signatures,
doc comments, parameters, results, indented example blocks, and
[Name] doc links. A doc comment line starting with "Deprecated:" marks
the item deprecated.

Stacks without a registered extractor are still tracked at the
revision level, but their file changes produce no artifacts.
`,
	},
}
