package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/Abduluthman/quail/internal/model"
)

const (
	LayoutBase       = "base.html"
	LayoutIndex      = "index.html"
	LayoutPost       = "post.html"
	LayoutSearch     = "search.html"
	LayoutTags       = "tags.html"
	LayoutTag        = "tag.html"
	LayoutCategories = "categories.html"
	LayoutCategory   = "category.html"

	partialsGlob = "partials/*.html"
)

var pageLayouts = []string{
	LayoutIndex,
	LayoutPost,
	LayoutSearch,
	LayoutTags,
	LayoutTag,
	LayoutCategories,
	LayoutCategory,
}

//go:embed layouts
var embeddedLayouts embed.FS

//go:embed static
var embeddedStatic embed.FS

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"join":       strings.Join,
}

// Templates holds one parsed set per page layout, each built on base.html and the partials.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses layouts from dir, or the built-in layouts when dir is empty or missing.
func LoadTemplates(dir string) (*Templates, error) {
	fsys, err := layoutsFS(dir)
	if err != nil {
		return nil, err
	}
	return parseTemplates(fsys)
}

func layoutsFS(dir string) (fs.FS, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			slog.Debug("using layouts directory", "dir", dir)
			return os.DirFS(dir), nil
		}
		slog.Info("layouts directory not found, using built-in layouts", "dir", dir)
	}
	return fs.Sub(embeddedLayouts, "layouts")
}

func parseTemplates(fsys fs.FS) (*Templates, error) {
	base, err := template.New(LayoutBase).Funcs(funcs).ParseFS(fsys, LayoutBase)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", LayoutBase, err)
	}

	partials, err := fs.Glob(fsys, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("find partials: %w", err)
	}
	if len(partials) > 0 {
		if base, err = base.ParseFS(fsys, partials...); err != nil {
			return nil, fmt.Errorf("parse partials: %w", err)
		}
	}

	pages := make(map[string]*template.Template, len(pageLayouts))
	for _, name := range pageLayouts {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", name, err)
		}
		if pages[name], err = clone.ParseFS(fsys, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return &Templates{pages: pages}, nil
}

// Render executes the page's layout through base.html.
func (t *Templates) Render(w io.Writer, pd model.PageData) error {
	tpl, ok := t.pages[pd.Layout]
	if !ok {
		return fmt.Errorf("unknown layout %q", pd.Layout)
	}
	if err := tpl.ExecuteTemplate(w, LayoutBase, pd); err != nil {
		return fmt.Errorf("render %s: %w", pd.Layout, err)
	}
	return nil
}

// StaticFS serves dir when it exists, otherwise the built-in assets.
func StaticFS(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
