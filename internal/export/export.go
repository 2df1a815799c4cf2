// Package export writes every browsable view of the blog as static HTML.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Abduluthman/quail/internal/model"
	"github.com/Abduluthman/quail/internal/web"
)

const indexFile = "index.html"

var ErrUnsafeOutputDir = errors.New("refusing to clean output directory")

// Renderer renders page data to HTML.
type Renderer interface {
	Render(w io.Writer, pd model.PageData) error
}

type Exporter struct {
	posts     web.Loader
	site      model.SiteData
	templates Renderer
	static    fs.FS
	outputDir string
	workers   int
}

type Option func(*Exporter)

func WithWorkers(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

func New(posts web.Loader, site model.SiteData, templates Renderer, static fs.FS, outputDir string, opts ...Option) *Exporter {
	e := &Exporter{
		posts:     posts,
		site:      site,
		templates: templates,
		static:    static,
		outputDir: outputDir,
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats counts what a run wrote.
type Stats struct {
	Posts      int
	Tags       int
	Categories int
	Skipped    int
}

// Run cleans the output directory and writes every page into it. Posts are
// loaded once and shared by all pages of the run.
func (e *Exporter) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := e.checkOutputDir(); err != nil {
		return stats, err
	}

	posts, err := e.posts.LoadAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("load posts: %w", err)
	}
	site := web.NewSite(web.Snapshot(posts), e.site)

	slog.Info("cleaning output directory", "dir", e.outputDir)
	if err := os.RemoveAll(e.outputDir); err != nil {
		return stats, fmt.Errorf("remove output directory %s: %w", e.outputDir, err)
	}
	if err := os.MkdirAll(e.outputDir, os.ModePerm); err != nil {
		return stats, fmt.Errorf("create output directory %s: %w", e.outputDir, err)
	}

	if e.static != nil {
		if err := copyFS(e.static, filepath.Join(e.outputDir, "static")); err != nil {
			return stats, fmt.Errorf("copy static assets: %w", err)
		}
	}

	index, err := site.Index(ctx)
	if err != nil {
		return stats, err
	}
	if err := e.write(index); err != nil {
		return stats, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, p := range posts {
		slug := p.Slug
		if !safeSegment(slug) {
			slog.Warn("skipping post with unsafe slug", "slug", slug)
			stats.Skipped++
			continue
		}
		stats.Posts++
		g.Go(func() error {
			pd, err := site.Post(gctx, slug)
			if err != nil {
				return err
			}
			return e.write(pd, "post", slug)
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	n, skipped, err := e.writeGroups(ctx, site.Tags, site.Tag, "tags", "tag", false)
	if err != nil {
		return stats, err
	}
	stats.Tags, stats.Skipped = n, stats.Skipped+skipped

	n, skipped, err = e.writeGroups(ctx, site.Categories, site.Category, "categories", "category", true)
	if err != nil {
		return stats, err
	}
	stats.Categories, stats.Skipped = n, stats.Skipped+skipped

	return stats, nil
}

type listFunc func(ctx context.Context) (model.PageData, error)
type groupFunc func(ctx context.Context, key string) (model.PageData, error)

// writeGroups writes the overview page under listDir and one page per key under itemDir.
// With fold set, keys that differ only in case share the first key's page.
func (e *Exporter) writeGroups(ctx context.Context, list listFunc, item groupFunc, listDir, itemDir string, fold bool) (int, int, error) {
	overview, err := list(ctx)
	if err != nil {
		return 0, 0, err
	}
	if err := e.write(overview, listDir); err != nil {
		return 0, 0, err
	}

	written, skipped := 0, 0
	var seen []string
	for _, key := range overview.Index.Keys() {
		if !safeSegment(key) {
			slog.Warn("skipping key that is not a safe path segment", "dir", itemDir, "key", key)
			skipped++
			continue
		}
		if fold {
			if prev, ok := foldMatch(seen, key); ok {
				slog.Warn("skipping key that differs only in case", "dir", itemDir, "key", key, "written", prev)
				skipped++
				continue
			}
			seen = append(seen, key)
		}
		pd, err := item(ctx, key)
		if err != nil {
			return written, skipped, err
		}
		if err := e.write(pd, itemDir, key); err != nil {
			return written, skipped, err
		}
		written++
	}
	return written, skipped, nil
}

func (e *Exporter) write(pd model.PageData, segments ...string) error {
	var buf bytes.Buffer
	if err := e.templates.Render(&buf, pd); err != nil {
		return err
	}

	dir := filepath.Join(append([]string{e.outputDir}, segments...)...)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, indexFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Debug("wrote page", "path", path, "layout", pd.Layout)
	return nil
}

func (e *Exporter) checkOutputDir() error {
	clean := filepath.Clean(e.outputDir)
	if e.outputDir == "" || clean == "." || clean == string(filepath.Separator) {
		return fmt.Errorf("%w %q", ErrUnsafeOutputDir, e.outputDir)
	}
	if repo, ok := e.posts.(interface{ Dir() string }); ok {
		posts, _ := filepath.Abs(repo.Dir())
		out, _ := filepath.Abs(clean)
		if posts == out || strings.HasPrefix(posts, out+string(filepath.Separator)) {
			return fmt.Errorf("%w %q: it contains the posts directory", ErrUnsafeOutputDir, e.outputDir)
		}
	}
	return nil
}

func foldMatch(keys []string, key string) (string, bool) {
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// copyFS copies every file of src into dst, creating directories as needed.
func copyFS(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			return nil
		}
		if err := copyFile(src, path, target); err != nil {
			return fmt.Errorf("copy %s to %s: %w", path, target, err)
		}
		return nil
	})
}

func copyFile(src fs.FS, name, dst string) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
