package model

import "html/template"

// Metadata is the normalized front matter of a post.
type Metadata struct {
	Title    string
	Tags     []string
	Category string

	// Date is the raw front-matter value; HasDate reports whether the key was present.
	Date    any
	HasDate bool

	Featured      bool
	ReadingTime   string
	FormattedDate string

	// Extra holds every front-matter key without a dedicated field.
	Extra map[string]any
}

// Post is a fully rendered post. It is not modified after the repository builds it.
type Post struct {
	Slug          string
	Title         string
	Tags          []string
	Category      string
	FormattedDate string
	ReadingTime   string
	Content       template.HTML
	Featured      bool
	Meta          Metadata
}

// HasTag reports whether tag is one of the post's tags. Comparison is case-sensitive.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RelatedPost is a post ranked against another post by tag and category overlap.
type RelatedPost struct {
	Slug          string
	Title         string
	FormattedDate string
	ReadingTime   string
	Tags          []string
	Category      string
	Score         int
}

// Group is one bucket of a tag or category index.
type Group struct {
	Name  string
	Posts []Post
}

// Index maps tag or category names to posts, keeping keys in first-seen order.
type Index struct {
	Groups []Group
	lookup map[string]int
}

func NewIndex() *Index {
	return &Index{lookup: make(map[string]int)}
}

// Add appends p to the bucket for key, creating the bucket if needed.
func (i *Index) Add(key string, p Post) {
	if pos, ok := i.lookup[key]; ok {
		i.Groups[pos].Posts = append(i.Groups[pos].Posts, p)
		return
	}
	i.lookup[key] = len(i.Groups)
	i.Groups = append(i.Groups, Group{Name: key, Posts: []Post{p}})
}

// Get returns the posts filed under key.
func (i *Index) Get(key string) []Post {
	pos, ok := i.lookup[key]
	if !ok {
		return nil
	}
	return i.Groups[pos].Posts
}

// Keys returns the index keys in first-seen order.
func (i *Index) Keys() []string {
	keys := make([]string, 0, len(i.Groups))
	for _, g := range i.Groups {
		keys = append(keys, g.Name)
	}
	return keys
}

func (i *Index) Len() int {
	return len(i.Groups)
}
