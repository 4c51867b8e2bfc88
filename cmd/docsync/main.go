package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"docsync/internal/config"
	"docsync/internal/docs"
	"docsync/internal/doctor"
	"docsync/internal/gitrepo"
	"docsync/internal/logging"
	"docsync/internal/runner"
	"docsync/internal/scaffold"
	"docsync/internal/state"
	"docsync/internal/ux"
)

// docDirName is the documentation directory at the repository root.
const docDirName = "documentation"

func main() {
	// Sync credentials may live in a .env next to the repo.
	godotenv.Load()

	app := &cli.Command{
		Name:        "docsync",
		Usage:       "Incremental source documentation generator",
		Description: "Run 'docsync docs' for reference on the workflow, configuration, state files, and sync.",
		Commands: []*cli.Command{
			initCmd(),
			runCmd(),
			statusCmd(),
			syncCmd(),
			pruneCmd(),
			verifyCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Bootstrap the documentation directory for this repository",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "stack", Usage: "Skip detection and use this stack"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			if _, err := gitrepo.Open(root); err != nil {
				return err
			}
			return scaffold.Init(root, filepath.Join(root, docDirName), cmd.String("stack"))
		},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one incremental documentation pass",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the planned operations without applying them"},
			&cli.BoolFlag{Name: "full", Usage: "Ignore the revision marker and rescan every tracked file"},
			&cli.BoolFlag{Name: "sync", Usage: "Mirror to the sync target after a successful pass"},
			&cli.BoolFlag{Name: "force-unlock", Usage: "Remove a leftover run lock before starting"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, docDir, err := buildRunner()
			if err != nil {
				return err
			}

			if cmd.Bool("force-unlock") {
				removed, err := state.Break(docDir)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(os.Stderr, "warning: removed leftover run lock\n")
				}
			}

			r.DryRun = cmd.Bool("dry-run")
			r.FullScan = cmd.Bool("full")
			r.SyncAfter = cmd.Bool("sync")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			return r.Run(ctx)
		},
	}
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the last run and artifact counts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := findProjectRoot()
			if err != nil {
				return err
			}
			docDir := filepath.Join(root, docDirName)

			cfg, err := config.Load(docDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			st, err := state.Load(docDir)
			if err != nil && !errors.Is(err, state.ErrNotFound) {
				return fmt.Errorf("loading state: %w", err)
			}
			reg, err := state.LoadRegistry(docDir)
			if err != nil {
				return fmt.Errorf("loading registry: %w", err)
			}

			ux.RenderStatus(cfg, st, reg)
			return nil
		},
	}
}

func syncCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Mirror public artifacts to the configured sync target",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, _, err := buildRunner()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()
			return r.Sync(ctx)
		},
	}
}

func pruneCmd() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Hard-delete deprecated artifacts whose source items stayed removed",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the prune operations without applying them"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, _, err := buildRunner()
			if err != nil {
				return err
			}
			r.DryRun = cmd.Bool("dry-run")
			return r.Prune(ctx)
		},
	}
}

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check the documentation tree for drift and dangling links",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := findProjectRoot()
			if err != nil {
				return err
			}
			repo, err := gitrepo.Open(root)
			if err != nil {
				return err
			}
			return doctor.Run(filepath.Join(root, docDirName), repo)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-10s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'docsync docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

// buildRunner assembles the pipeline for commands that operate on an
// initialized project.
func buildRunner() (*runner.Runner, string, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, "", err
	}
	docDir := filepath.Join(root, docDirName)

	cfg, err := config.Load(docDir)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, "", fmt.Errorf("not initialized; run 'docsync init' first")
		}
		return nil, "", fmt.Errorf("loading config: %w", err)
	}

	repo, err := gitrepo.Open(root)
	if err != nil {
		return nil, "", err
	}

	return &runner.Runner{
		DocDir: docDir,
		Config: cfg,
		Repo:   repo,
		Log:    logging.Default("docsync"),
	}, docDir, nil
}

// findProjectRoot walks up from cwd looking for documentation/config.json.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		configPath := filepath.Join(dir, docDirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s/config.json found (searched from cwd to root); run 'docsync init'", docDirName)
		}
		dir = parent
	}
}
