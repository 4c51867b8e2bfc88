// Package stackdetect classifies a project's primary ecosystem by probing a
// fixed, ordered list of marker files. It runs only at bootstrap, before a
// configuration exists, and never writes anything.
package stackdetect

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/yargevad/filepathx"
)

// ErrUndetected is returned when no marker matches. The caller must ask for
// an explicit stack instead of guessing.
var ErrUndetected = errors.New("stackdetect: no recognized ecosystem marker found")

// rule maps marker files (exact names, probed at the root) and globs
// (recursive, evaluated with ** semantics) to a stack tag. Order matters:
// the first matching rule wins, so more specific markers come first.
type rule struct {
	stack   string
	markers []string
	globs   []string
}

var rules = []rule{
	{stack: "go", markers: []string{"go.mod"}},
	{stack: "rust", markers: []string{"Cargo.toml"}},
	{stack: "typescript", markers: []string{"tsconfig.json", "deno.json"}},
	{stack: "javascript", markers: []string{"package.json"}},
	{stack: "python", markers: []string{"pyproject.toml", "requirements.txt", "setup.py", "Pipfile"}},
	{stack: "java", markers: []string{"pom.xml", "build.gradle", "build.gradle.kts"}},
	{stack: "csharp", globs: []string{"*.sln", "**/*.csproj"}},
	{stack: "ruby", markers: []string{"Gemfile"}, globs: []string{"*.gemspec"}},
	{stack: "php", markers: []string{"composer.json"}},
	{stack: "elixir", markers: []string{"mix.exs"}},
}

// Detect inspects projectRoot and returns the first matching stack tag.
func Detect(projectRoot string) (string, error) {
	for _, r := range rules {
		for _, m := range r.markers {
			if fileExists(filepath.Join(projectRoot, m)) {
				return r.stack, nil
			}
		}
		for _, g := range r.globs {
			matches, err := filepathx.Glob(filepath.Join(projectRoot, g))
			if err != nil {
				continue
			}
			if len(matches) > 0 {
				return r.stack, nil
			}
		}
	}
	return "", ErrUndetected
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
