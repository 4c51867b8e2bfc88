// Package scaffold bootstraps the documentation directory: stack detection,
// initial configuration, and the seed documents.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docsync/internal/config"
	"docsync/internal/stackdetect"
	"docsync/internal/ux"
)

var overviewTemplate = `# Overview

This directory is maintained by docsync. Generated reference pages live under
public/ and private/; this file and architecture.md are yours to edit and are
never overwritten.

Describe here what the project does and who it is for.
`

var architectureTemplate = `# Architecture

Describe the main components and how they fit together. docsync keeps the
per-item reference pages current; this page is for the picture no single item
shows.
`

// Init creates the documentation directory with a detected (or explicitly
// given) stack. It refuses to run if a configuration already exists.
func Init(projectRoot, docDir, stackOverride string) error {
	if _, err := config.Load(docDir); err == nil {
		return fmt.Errorf("documentation is already initialized at %s", docDir)
	} else if !errors.Is(err, config.ErrNotFound) {
		return err
	}

	stack := stackOverride
	if stack == "" {
		detected, err := stackdetect.Detect(projectRoot)
		if err != nil {
			if errors.Is(err, stackdetect.ErrUndetected) {
				return fmt.Errorf("could not detect the project stack; pass --stack explicitly (one of: %v)", config.Stacks())
			}
			return err
		}
		stack = detected
	}

	cfg := &config.Configuration{
		Stack: stack,
		ExcludePatterns: []string{
			"**/*_test.*",
			"**/*.test.*",
			"**/testdata/**",
			"**/vendor/**",
			"**/node_modules/**",
		},
		DeletePolicy: config.DeleteTwoPass,
	}
	if err := config.Save(docDir, cfg); err != nil {
		return fmt.Errorf("writing config.json: %w", err)
	}

	for _, sub := range []string{"public", "private"} {
		if err := os.MkdirAll(filepath.Join(docDir, sub), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", sub, err)
		}
	}
	if err := writeIfMissing(filepath.Join(docDir, "overview.md"), overviewTemplate); err != nil {
		return err
	}
	if err := writeIfMissing(filepath.Join(docDir, "architecture.md"), architectureTemplate); err != nil {
		return err
	}

	fmt.Printf("\n%s%s✓ Initialized %s%s\n\n", ux.Bold, ux.Green, docDir, ux.Reset)
	fmt.Printf("  Detected stack: %s%s%s\n\n", ux.Cyan, stack, ux.Reset)
	fmt.Printf("  Created:\n")
	fmt.Printf("    %s%s/config.json%s     — exclusions, policies, optional sync target\n", ux.Cyan, docDir, ux.Reset)
	fmt.Printf("    %s%s/overview.md%s     — project overview (edit freely)\n", ux.Cyan, docDir, ux.Reset)
	fmt.Printf("    %s%s/architecture.md%s — architecture notes (edit freely)\n\n", ux.Cyan, docDir, ux.Reset)
	fmt.Printf("  Next steps:\n")
	fmt.Printf("    1. Review %sconfig.json%s, add exclude patterns if needed\n", ux.Cyan, ux.Reset)
	fmt.Printf("    2. Run %sdocsync run --dry-run%s to preview the first pass\n", ux.Cyan, ux.Reset)
	fmt.Printf("    3. Run %sdocsync run%s to generate documentation\n\n", ux.Cyan, ux.Reset)

	return nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
