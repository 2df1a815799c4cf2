package post

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRenderer struct{}

func (echoRenderer) Render(body string) (string, error) { return "<p>" + body + "</p>", nil }

type failingRenderer struct{}

func (failingRenderer) Render(string) (string, error) { return "", errors.New("boom") }

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func slugs(t *testing.T, repo *Repository) []string {
	t.Helper()
	posts, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}

func TestLoadAll_EmptyDir(t *testing.T) {
	repo := NewRepository(t.TempDir(), ".md", echoRenderer{})

	posts, err := repo.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoadAll_MissingDir(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "nope"), ".md", echoRenderer{})

	_, err := repo.LoadAll(context.Background())

	assert.Error(t, err)
}

func TestLoadAll_SortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "old.md", "---\ndate: 2020-01-01\n---\nold")
	writePost(t, dir, "new.md", "---\ndate: 2024-06-01\n---\nnew")
	writePost(t, dir, "mid.md", "---\ndate: \"2022-02-02\"\n---\nmid")
	writePost(t, dir, "undated.md", "no front matter")
	writePost(t, dir, "broken-date.md", "---\ndate: someday\n---\nbody")

	got := slugs(t, NewRepository(dir, ".md", echoRenderer{}))

	assert.Equal(t, []string{"new", "mid", "old", "broken-date", "undated"}, got)
}

func TestLoadAll_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "post.md", "body")
	writePost(t, dir, "notes.txt", "ignored")
	writePost(t, dir, ".hidden.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writePost(t, filepath.Join(dir, "sub"), "deep.md", "ignored")

	assert.Equal(t, []string{"post"}, slugs(t, NewRepository(dir, "md", echoRenderer{})))
}

func TestLoadAll_BuildsPostFields(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "hello-world.md", "---\ntags: [go]\ncategory: Dev\nfeatured: true\ndate: 2024-03-05\n---\nhi there")

	posts, err := NewRepository(dir, ".md", echoRenderer{}).LoadAll(context.Background())

	require.NoError(t, err)
	require.Len(t, posts, 1)
	p := posts[0]
	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, "Hello World", p.Title)
	assert.Equal(t, []string{"go"}, p.Tags)
	assert.Equal(t, "Dev", p.Category)
	assert.Equal(t, "March 05, 2024", p.FormattedDate)
	assert.Equal(t, "1 min read", p.ReadingTime)
	assert.True(t, p.Featured)
	assert.Equal(t, "<p>\nhi there</p>", string(p.Content))
}

func TestLoadAll_MalformedFrontMatterAbortsLoad(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good.md", "fine")
	writePost(t, dir, "bad.md", "---\ntitle: [oops\n---\nbody")

	_, err := NewRepository(dir, ".md", echoRenderer{}).LoadAll(context.Background())

	assert.ErrorContains(t, err, "bad")
}

func TestLoadAll_RenderErrorAbortsLoad(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "body")

	_, err := NewRepository(dir, ".md", failingRenderer{}).LoadAll(context.Background())

	assert.ErrorContains(t, err, "boom")
}

func TestLoadAll_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "body")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRepository(dir, ".md", echoRenderer{}).LoadAll(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadOne(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "first.md", "---\ntitle: First\n---\nbody")
	repo := NewRepository(dir, ".md", echoRenderer{})

	p, err := repo.LoadOne(context.Background(), "first")

	require.NoError(t, err)
	assert.Equal(t, "First", p.Title)
}

func TestLoadOne_NotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.md"), 0o755))
	repo := NewRepository(dir, ".md", echoRenderer{})

	for _, slug := range []string{"missing", "", "..", "../etc/passwd", `a\b`, "folder"} {
		_, err := repo.LoadOne(context.Background(), slug)
		assert.ErrorIs(t, err, ErrNotFound, "slug %q", slug)
	}
}

func TestSortByDate_StableForTies(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "---\ndate: 2024-01-01\n---\n")
	writePost(t, dir, "b.md", "---\ndate: 2024-01-01\n---\n")
	writePost(t, dir, "c.md", "---\ndate: 2025-01-01\n---\n")

	assert.Equal(t, []string{"c", "a", "b"}, slugs(t, NewRepository(dir, ".md", echoRenderer{})))
}

func TestLoadAll_SortsRawDisplayDates(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a-old.md", "---\ndate: 2020-01-01\n---\nold")
	writePost(t, dir, "b-new.md", "---\ndate: \"March 5, 2024\"\n---\nnew")
	writePost(t, dir, "c-null.md", "---\ndate: ~\n---\nnull")

	assert.Equal(t, []string{"b-new", "a-old", "c-null"}, slugs(t, NewRepository(dir, ".md", echoRenderer{})))
}
