// Package view derives listings from a date-ordered post collection.
// Every function returns fresh slices and leaves its input untouched.
package view

import (
	"sort"
	"strings"

	"github.com/Abduluthman/quail/internal/model"
)

const RelatedLimit = 4

func Featured(posts []model.Post) []model.Post {
	out := []model.Post{}
	for _, p := range posts {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Related ranks posts against target by shared tags plus one for an equal
// category. Posts sharing neither are dropped, as is target itself. Equal
// scores keep their input order. A limit <= 0 means no limit.
//
// Two posts without a category have equal categories.
func Related(target model.Post, posts []model.Post, limit int) []model.RelatedPost {
	targetTags := make(map[string]struct{}, len(target.Tags))
	for _, t := range target.Tags {
		targetTags[t] = struct{}{}
	}

	related := []model.RelatedPost{}
	for _, p := range posts {
		if p.Slug == target.Slug {
			continue
		}

		shared := sharedTags(targetTags, p.Tags)
		sameCategory := p.Category == target.Category
		if shared == 0 && !sameCategory {
			continue
		}

		score := shared
		if sameCategory {
			score++
		}
		related = append(related, model.RelatedPost{
			Slug:          p.Slug,
			Title:         p.Title,
			FormattedDate: p.FormattedDate,
			ReadingTime:   p.ReadingTime,
			Tags:          p.Tags,
			Category:      p.Category,
			Score:         score,
		})
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].Score > related[j].Score
	})
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related
}

// sharedTags counts distinct tags of candidate that are also in target.
func sharedTags(target map[string]struct{}, candidate []string) int {
	seen := make(map[string]struct{}, len(candidate))
	n := 0
	for _, t := range candidate {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := target[t]; ok {
			n++
		}
	}
	return n
}

func TagIndex(posts []model.Post) *model.Index {
	idx := model.NewIndex()
	for _, p := range posts {
		for _, t := range p.Tags {
			idx.Add(t, p)
		}
	}
	return idx
}

// CategoryIndex buckets posts by category. Uncategorized posts are left out.
func CategoryIndex(posts []model.Post) *model.Index {
	idx := model.NewIndex()
	for _, p := range posts {
		if p.Category == "" {
			continue
		}
		idx.Add(p.Category, p)
	}
	return idx
}

// Search matches query case-insensitively against titles and rendered content.
// A blank query matches nothing.
func Search(posts []model.Post, query string) []model.Post {
	q := NormalizeQuery(query)
	out := []model.Post{}
	if q == "" {
		return out
	}
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(string(p.Content)), q) {
			out = append(out, p)
		}
	}
	return out
}

func NormalizeQuery(query string) string {
	return strings.TrimSpace(strings.ToLower(query))
}

// WithTag matches tags exactly.
func WithTag(posts []model.Post, tag string) []model.Post {
	out := []model.Post{}
	for _, p := range posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// InCategory matches categories ignoring case.
func InCategory(posts []model.Post, category string) []model.Post {
	out := []model.Post{}
	for _, p := range posts {
		if p.Category != "" && strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}
