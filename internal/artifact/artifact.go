// Package artifact models one generated documentation file: its stable
// identity, destination path, structured content, and markdown form.
package artifact

import (
	"path"
	"strings"

	"docsync/internal/extract"
)

// Categories.
const (
	CategoryOverview     = "overview"
	CategoryArchitecture = "architecture"
	CategoryFunction     = "function"
	CategoryType         = "type"
	CategoryError        = "error"
	CategoryFeature      = "feature"
	CategoryIndex        = "index"
)

// Statuses.
const (
	StatusActive     = "active"
	StatusDeprecated = "deprecated"
)

// Content holds the structured sections rendered into the artifact file.
type Content struct {
	Signature   string
	Description string
	Parameters  []extract.Param
	Returns     []extract.Param
	Errors      []string
	Examples    []string
	Related     []string // artifact ids; dangling references are warnings, not errors
}

// Artifact is one documentation file in the generated tree.
type Artifact struct {
	ID         string
	ItemName   string // the source item's name, used as the display title
	Category   string
	Visibility string
	Status     string
	SourcePath string // source file, relative to the repository root
	Content    Content
}

// ID derives the stable artifact identifier from the source file and the
// item's name. The derivation is deterministic: the same item always maps to
// the same id across runs.
func ID(sourcePath, itemName string) string {
	dir := path.Dir(toSlash(sourcePath))
	if dir == "." {
		dir = "root"
	}
	base := strings.TrimSuffix(path.Base(sourcePath), path.Ext(sourcePath))
	return slug(dir) + "." + slug(base) + "." + slug(itemName)
}

// Path returns the artifact's file path relative to the documentation
// directory: {visibility}/{source dir}/{file}.{item}.md.
func Path(sourcePath, itemName, visibility string) string {
	dir := path.Dir(toSlash(sourcePath))
	base := strings.TrimSuffix(path.Base(sourcePath), path.Ext(sourcePath))
	name := slug(base) + "." + slug(itemName) + ".md"
	if dir == "." {
		return path.Join(visibility, name)
	}
	return path.Join(visibility, dir, name)
}

// IndexPath returns the path of the _index.md owning the given artifact path.
func IndexPath(artifactPath string) string {
	return path.Join(path.Dir(toSlash(artifactPath)), "_index.md")
}

// IndexID derives the index artifact id for a directory-scoped index file.
func IndexID(indexPath string) string {
	return "idx." + slug(path.Dir(toSlash(indexPath)))
}

// FromItem assembles an artifact from an extracted source item.
func FromItem(item extract.Item, sourcePath string, includeExamples bool) Artifact {
	a := Artifact{
		ID:         ID(sourcePath, item.Name),
		ItemName:   item.Name,
		Category:   categoryFor(item.Kind),
		Visibility: item.Visibility,
		Status:     StatusActive,
		SourcePath: sourcePath,
		Content: Content{
			Signature:   item.Signature,
			Description: item.Doc,
			Parameters:  item.Params,
			Returns:     item.Returns,
			Errors:      item.Errors,
		},
	}
	if item.Deprecated {
		a.Status = StatusDeprecated
	}
	if includeExamples {
		a.Content.Examples = item.Examples
	}
	for _, ref := range item.Related {
		// Related doc links name sibling items of the same source file.
		a.Content.Related = append(a.Content.Related, ID(sourcePath, ref))
	}
	return a
}

func categoryFor(kind string) string {
	switch kind {
	case extract.KindType:
		return CategoryType
	case extract.KindError:
		return CategoryError
	default:
		return CategoryFunction
	}
}

func slug(s string) string {
	s = strings.ToLower(toSlash(s))
	replacer := strings.NewReplacer("/", "-", "_", "-", " ", "-")
	return replacer.Replace(s)
}

func toSlash(s string) string {
	return strings.ReplaceAll(s, "\\", "/")
}
