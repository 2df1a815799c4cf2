package web

import (
	"context"
	"fmt"

	"github.com/Abduluthman/quail/internal/model"
	"github.com/Abduluthman/quail/internal/post"
	"github.com/Abduluthman/quail/internal/view"
)

// Loader is the read side of the post repository.
type Loader interface {
	LoadAll(ctx context.Context) ([]model.Post, error)
	LoadOne(ctx context.Context, slug string) (model.Post, error)
}

// Site assembles page data for every view. Nothing is cached; each call reloads posts.
type Site struct {
	posts Loader
	data  model.SiteData
}

func NewSite(posts Loader, data model.SiteData) *Site {
	return &Site{posts: posts, data: data}
}

func (s *Site) page(layout, title string) model.PageData {
	return model.PageData{Site: s.data, Layout: layout, PageTitle: title}
}

func (s *Site) Index(ctx context.Context) (model.PageData, error) {
	posts, err := s.posts.LoadAll(ctx)
	if err != nil {
		return model.PageData{}, err
	}
	pd := s.page(LayoutIndex, s.data.Title)
	pd.Posts = posts
	pd.Featured = view.Featured(posts)
	return pd, nil
}

// Post returns post.ErrNotFound when no file matches slug.
func (s *Site) Post(ctx context.Context, slug string) (model.PageData, error) {
	p, err := s.posts.LoadOne(ctx, slug)
	if err != nil {
		return model.PageData{}, err
	}
	all, err := s.posts.LoadAll(ctx)
	if err != nil {
		return model.PageData{}, err
	}
	pd := s.page(LayoutPost, p.Title)
	pd.Post = &p
	pd.Related = view.Related(p, all, view.RelatedLimit)
	return pd, nil
}

// Search leaves the repository alone when the query is blank.
func (s *Site) Search(ctx context.Context, query string) (model.PageData, error) {
	q := view.NormalizeQuery(query)
	pd := s.page(LayoutSearch, "Search")
	pd.Query = q
	pd.Posts = []model.Post{}
	if q == "" {
		return pd, nil
	}

	posts, err := s.posts.LoadAll(ctx)
	if err != nil {
		return model.PageData{}, err
	}
	pd.Posts = view.Search(posts, q)
	return pd, nil
}

func (s *Site) Tags(ctx context.Context) (model.PageData, error) {
	posts, err := s.posts.LoadAll(ctx)
	if err != nil {
		return model.PageData{}, err
	}
	pd := s.page(LayoutTags, "Tags")
	pd.Index = view.TagIndex(posts)
	return pd, nil
}

func (s *Site) Tag(ctx context.Context, tag string) (model.PageData, error) {
	posts, err := s.posts.LoadAll(ctx)
	if err != nil {
		return model.PageData{}, err
	}
	pd := s.page(LayoutTag, fmt.Sprintf("Tag: %s", tag))
	pd.Tag = tag
	pd.Posts = view.WithTag(posts, tag)
	return pd, nil
}

func (s *Site) Categories(ctx context.Context) (model.PageData, error) {
	posts, err := s.posts.LoadAll(ctx)
	if err != nil {
		return model.PageData{}, err
	}
	pd := s.page(LayoutCategories, "Categories")
	pd.Index = view.CategoryIndex(posts)
	return pd, nil
}

func (s *Site) Category(ctx context.Context, category string) (model.PageData, error) {
	posts, err := s.posts.LoadAll(ctx)
	if err != nil {
		return model.PageData{}, err
	}
	pd := s.page(LayoutCategory, fmt.Sprintf("Category: %s", category))
	pd.Category = category
	pd.Posts = view.InCategory(posts, category)
	return pd, nil
}

var _ Loader = (*post.Repository)(nil)
