package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abduluthman/quail/internal/markdown"
	"github.com/Abduluthman/quail/internal/model"
	"github.com/Abduluthman/quail/internal/post"
	"github.com/Abduluthman/quail/internal/web"
)

func setup(t *testing.T, files map[string]string) (*post.Repository, *web.Templates, string) {
	t.Helper()
	root := t.TempDir()
	postsDir := filepath.Join(root, "posts")
	require.NoError(t, os.Mkdir(postsDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(postsDir, name), []byte(content), 0o644))
	}
	tpl, err := web.LoadTemplates("")
	require.NoError(t, err)
	return post.NewRepository(postsDir, ".md", markdown.New("")), tpl, filepath.Join(root, "public")
}

func readPage(t *testing.T, parts ...string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(append(parts, indexFile)...))
	require.NoError(t, err)
	return string(b)
}

func TestRun_WritesAllViews(t *testing.T) {
	repo, tpl, out := setup(t, map[string]string{
		"hello.md":  "---\ntitle: Hello\ntags: [go, web]\ncategory: Dev\ndate: 2024-01-02\n---\nHello body\n",
		"second.md": "---\ntags: [go, \"a/b\"]\ncategory: Life\n---\nSecond body\n",
	})
	static := fstest.MapFS{
		"script.js":    {Data: []byte("console.log(1)")},
		"img/logo.svg": {Data: []byte("<svg/>")},
	}

	stats, err := New(repo, model.SiteData{Title: "Blog"}, tpl, static, out, WithWorkers(2)).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Stats{Posts: 2, Tags: 2, Categories: 2, Skipped: 1}, stats)

	assert.Contains(t, readPage(t, out), "Hello")
	assert.Contains(t, readPage(t, out, "post", "hello"), "Hello body")
	assert.Contains(t, readPage(t, out, "post", "second"), "Second body")
	assert.Contains(t, readPage(t, out, "tags"), "#web")
	assert.Contains(t, readPage(t, out, "tag", "go"), "Second")
	assert.Contains(t, readPage(t, out, "categories"), "Life")
	assert.Contains(t, readPage(t, out, "category", "Dev"), "Hello")

	logo, err := os.ReadFile(filepath.Join(out, "static", "img", "logo.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(logo))
}

func TestRun_CleansOutputDir(t *testing.T) {
	repo, tpl, out := setup(t, nil)
	require.NoError(t, os.MkdirAll(out, 0o755))
	stale := filepath.Join(out, "stale.html")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := New(repo, model.SiteData{}, tpl, nil, out).Run(context.Background())

	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(out, indexFile))
}

func TestRun_RefusesUnsafeOutputDir(t *testing.T) {
	repo, tpl, _ := setup(t, nil)

	for _, dir := range []string{"", ".", "/", repo.Dir(), filepath.Dir(repo.Dir())} {
		_, err := New(repo, model.SiteData{}, tpl, nil, dir).Run(context.Background())
		assert.ErrorIs(t, err, ErrUnsafeOutputDir, "dir %q", dir)
	}
	assert.DirExists(t, repo.Dir())
}

func TestRun_LoadErrorLeavesOutputAlone(t *testing.T) {
	repo, tpl, out := setup(t, map[string]string{"bad.md": "---\ntitle: [x\n---\n"})
	require.NoError(t, os.MkdirAll(out, 0o755))
	keep := filepath.Join(out, "keep.html")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	_, err := New(repo, model.SiteData{}, tpl, nil, out).Run(context.Background())

	assert.Error(t, err)
	assert.FileExists(t, keep)
}

func TestSafeSegment(t *testing.T) {
	assert.True(t, safeSegment("go"))
	assert.True(t, safeSegment("c++"))
	assert.False(t, safeSegment(""))
	assert.False(t, safeSegment(".."))
	assert.False(t, safeSegment("a/b"))
	assert.False(t, safeSegment(`a\b`))
}

func TestRun_CategoriesDifferingInCaseShareOnePage(t *testing.T) {
	repo, tpl, out := setup(t, map[string]string{
		"a.md": "---\ntitle: Alpha\ncategory: Go\ndate: 2024-02-01\n---\nA\n",
		"b.md": "---\ntitle: Beta\ncategory: go\ndate: 2024-01-01\n---\nB\n",
	})

	stats, err := New(repo, model.SiteData{}, tpl, nil, out).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Categories)
	assert.Equal(t, 1, stats.Skipped)

	page := readPage(t, out, "category", "Go")
	assert.Contains(t, page, "Alpha")
	assert.Contains(t, page, "Beta")
	entries, err := os.ReadDir(filepath.Join(out, "category"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
