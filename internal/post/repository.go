package post

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Abduluthman/quail/internal/frontmatter"
	"github.com/Abduluthman/quail/internal/model"
)

const DefaultExt = ".md"

var ErrNotFound = errors.New("post not found")

// Renderer converts a Markdown body to HTML.
type Renderer interface {
	Render(body string) (string, error)
}

// Repository reads posts from a single directory. It keeps no state between
// calls; every load goes back to disk.
type Repository struct {
	dir      string
	ext      string
	renderer Renderer
}

func NewRepository(dir, ext string, renderer Renderer) *Repository {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Repository{dir: dir, ext: ext, renderer: renderer}
}

func (r *Repository) Dir() string { return r.dir }

// LoadAll parses every post in the directory and returns them newest first.
// Posts whose date could not be formatted sort after all dated posts. The first
// file that fails to read or parse aborts the load.
func (r *Repository) LoadAll(ctx context.Context) ([]model.Post, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read posts dir %s: %w", r.dir, err)
	}

	posts := make([]model.Post, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.isPostFile(entry) {
			continue
		}

		slug := strings.TrimSuffix(entry.Name(), r.ext)
		p, err := r.parseFile(slug, filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	SortByDate(posts)
	slog.Debug("loaded posts", "dir", r.dir, "count", len(posts))
	return posts, nil
}

// LoadOne parses the post stored under slug, or returns ErrNotFound.
func (r *Repository) LoadOne(ctx context.Context, slug string) (model.Post, error) {
	if err := ctx.Err(); err != nil {
		return model.Post{}, err
	}
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) {
		return model.Post{}, fmt.Errorf("%q: %w", slug, ErrNotFound)
	}

	path := filepath.Join(r.dir, slug+r.ext)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return model.Post{}, fmt.Errorf("%q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("stat post %s: %w", path, err)
	}
	return r.parseFile(slug, path)
}

func (r *Repository) isPostFile(entry fs.DirEntry) bool {
	name := entry.Name()
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, r.ext) {
		return false
	}
	if entry.Type().IsRegular() {
		return true
	}
	// symlinks count when they point at a regular file
	info, err := os.Stat(filepath.Join(r.dir, name))
	return err == nil && info.Mode().IsRegular()
}

func (r *Repository) parseFile(slug, path string) (model.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Post{}, fmt.Errorf("read post %s: %w", path, err)
	}
	return Build(slug, string(raw), r.renderer)
}

// Build runs a raw document through front-matter parsing, normalization and rendering.
func Build(slug, text string, renderer Renderer) (model.Post, error) {
	raw, body, err := frontmatter.Parse(text)
	if err != nil {
		return model.Post{}, fmt.Errorf("post %s: %w", slug, err)
	}

	meta := Normalize(slug, raw, body)

	html, err := renderer.Render(body)
	if err != nil {
		return model.Post{}, fmt.Errorf("post %s: %w", slug, err)
	}

	return model.Post{
		Slug:          slug,
		Title:         meta.Title,
		Tags:          meta.Tags,
		Category:      meta.Category,
		FormattedDate: meta.FormattedDate,
		ReadingTime:   meta.ReadingTime,
		Content:       template.HTML(html),
		Featured:      meta.Featured,
		Meta:          meta,
	}, nil
}

// SortByDate orders posts newest first by their display date. Ties keep their
// current relative order.
func SortByDate(posts []model.Post) {
	keys := make(map[string]int64, len(posts))
	for _, p := range posts {
		if _, ok := keys[p.FormattedDate]; !ok {
			keys[p.FormattedDate] = ParseDisplayDate(p.FormattedDate).Unix()
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return keys[posts[i].FormattedDate] > keys[posts[j].FormattedDate]
	})
}
