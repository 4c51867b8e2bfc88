package extract

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"
)

func init() {
	Register(&goExtractor{})
}

// goExtractor parses Go source with the standard parser and reports exported
// functions, types, and Err* error variables.
type goExtractor struct{}

func (g *goExtractor) Stack() string { return "go" }

func (g *goExtractor) Supports(path string) bool {
	return filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go")
}

var docLinkRe = regexp.MustCompile(`\[([A-Z][A-Za-z0-9_.]*)\]`)

func (g *goExtractor) ListPublicItems(path string, src []byte) ([]Item, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	visibility := VisibilityPublic
	if underInternal(path) || file.Name.Name == "main" {
		visibility = VisibilityPrivate
	}

	var items []Item
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if item, ok := g.funcItem(fset, d); ok {
				item.Visibility = visibility
				items = append(items, item)
			}
		case *ast.GenDecl:
			items = append(items, g.genItems(fset, d, visibility)...)
		}
	}

	SortItems(items)
	return items, nil
}

func (g *goExtractor) funcItem(fset *token.FileSet, d *ast.FuncDecl) (Item, bool) {
	name := d.Name.Name
	if !ast.IsExported(name) {
		return Item{}, false
	}
	if d.Recv != nil {
		recv := receiverName(d.Recv)
		if recv == "" || !ast.IsExported(recv) {
			return Item{}, false
		}
		name = recv + "." + name
	}

	item := Item{
		Name:      name,
		Kind:      KindFunction,
		Signature: renderSignature(fset, d),
	}
	fillDoc(&item, d.Doc)
	item.Params = fieldParams(fset, d.Type.Params)
	item.Returns = fieldParams(fset, d.Type.Results)
	for _, r := range item.Returns {
		if r.Type == "error" {
			item.Errors = append(item.Errors, "error")
			break
		}
	}
	return item, true
}

func (g *goExtractor) genItems(fset *token.FileSet, d *ast.GenDecl, visibility string) []Item {
	var items []Item
	switch d.Tok {
	case token.TYPE:
		for _, spec := range d.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || !ast.IsExported(ts.Name.Name) {
				continue
			}
			item := Item{
				Name:       ts.Name.Name,
				Kind:       KindType,
				Signature:  "type " + ts.Name.Name + " " + typeKind(ts.Type),
				Visibility: visibility,
			}
			doc := ts.Doc
			if doc == nil {
				doc = d.Doc
			}
			fillDoc(&item, doc)
			items = append(items, item)
		}
	case token.VAR:
		for _, spec := range d.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, n := range vs.Names {
				if !ast.IsExported(n.Name) || !strings.HasPrefix(n.Name, "Err") {
					continue
				}
				item := Item{
					Name:       n.Name,
					Kind:       KindError,
					Signature:  "var " + n.Name + " error",
					Visibility: visibility,
				}
				doc := vs.Doc
				if doc == nil {
					doc = d.Doc
				}
				fillDoc(&item, doc)
				items = append(items, item)
			}
		}
	}
	return items
}

// fillDoc splits a doc comment into description, inline example blocks
// (indented lines, per godoc convention), the Deprecated: marker, and
// [Name] doc links.
func fillDoc(item *Item, doc *ast.CommentGroup) {
	if doc == nil {
		return
	}
	text := doc.Text()

	var desc, example []string
	inExample := false
	for _, line := range strings.Split(text, "\n") {
		indented := strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "    ")
		switch {
		case indented:
			inExample = true
			example = append(example, strings.TrimPrefix(strings.TrimPrefix(line, "\t"), "    "))
		case strings.TrimSpace(line) == "" && inExample:
			inExample = false
			if len(example) > 0 {
				item.Examples = append(item.Examples, strings.Join(example, "\n"))
				example = nil
			}
		default:
			desc = append(desc, line)
		}
	}
	if len(example) > 0 {
		item.Examples = append(item.Examples, strings.Join(example, "\n"))
	}

	item.Doc = strings.TrimSpace(strings.Join(desc, "\n"))
	for _, line := range desc {
		if strings.HasPrefix(strings.TrimSpace(line), "Deprecated:") {
			item.Deprecated = true
		}
	}
	for _, m := range docLinkRe.FindAllStringSubmatch(item.Doc, -1) {
		if m[1] != item.Name {
			item.Related = append(item.Related, m[1])
		}
	}
}

func renderSignature(fset *token.FileSet, d *ast.FuncDecl) string {
	header := &ast.FuncDecl{Recv: d.Recv, Name: d.Name, Type: d.Type}
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, header); err != nil {
		return "func " + d.Name.Name
	}
	return strings.TrimSpace(buf.String())
}

func fieldParams(fset *token.FileSet, fields *ast.FieldList) []Param {
	if fields == nil {
		return nil
	}
	var out []Param
	for _, f := range fields.List {
		typeStr := exprString(fset, f.Type)
		if len(f.Names) == 0 {
			out = append(out, Param{Type: typeStr})
			continue
		}
		for _, n := range f.Names {
			out = append(out, Param{Name: n.Name, Type: typeStr})
		}
	}
	return out
}

func exprString(fset *token.FileSet, expr ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return ""
	}
	return buf.String()
}

func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	t := recv.List[0].Type
	for {
		switch v := t.(type) {
		case *ast.StarExpr:
			t = v.X
		case *ast.IndexExpr:
			t = v.X
		case *ast.IndexListExpr:
			t = v.X
		case *ast.Ident:
			return v.Name
		default:
			return ""
		}
	}
}

func typeKind(expr ast.Expr) string {
	switch expr.(type) {
	case *ast.StructType:
		return "struct"
	case *ast.InterfaceType:
		return "interface"
	case *ast.FuncType:
		return "func"
	case *ast.MapType:
		return "map"
	case *ast.ArrayType:
		return "slice"
	default:
		return "alias"
	}
}

func underInternal(path string) bool {
	p := filepath.ToSlash(path)
	return strings.HasPrefix(p, "internal/") || strings.Contains(p, "/internal/")
}
