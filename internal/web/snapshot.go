package web

import (
	"context"
	"fmt"

	"github.com/Abduluthman/quail/internal/model"
	"github.com/Abduluthman/quail/internal/post"
)

// Snapshot serves a fixed, already sorted post collection. The static build uses
// it so that one export parses each file once.
type Snapshot []model.Post

func (s Snapshot) LoadAll(ctx context.Context) ([]model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.Post(nil), s...), nil
}

func (s Snapshot) LoadOne(ctx context.Context, slug string) (model.Post, error) {
	if err := ctx.Err(); err != nil {
		return model.Post{}, err
	}
	for _, p := range s {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Post{}, fmt.Errorf("%q: %w", slug, post.ErrNotFound)
}
