package catalog

import (
	"context"
	"strings"

	"github.com/baechuer/tracking-service/internal/domain"
)

// CategoryRepo is a read-only view of the catalog's category tree.
type CategoryRepo interface {
	Children(ctx context.Context, parentID string) ([]domain.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type Resolver struct {
	repo CategoryRepo
}

func NewResolver(repo CategoryRepo) *Resolver { return &Resolver{repo: repo} }

// DescendantIDs walks the tree breadth first from categoryID and returns it
// followed by every category reached. Leaves are collected but never
// expanded. Ids are never enqueued twice, so a malformed graph with cycles
// still terminates.
func (r *Resolver) DescendantIDs(ctx context.Context, categoryID string) ([]string, error) {
	visited := map[string]struct{}{categoryID: {}}
	out := []string{categoryID}
	frontier := []string{categoryID}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		children, err := r.repo.Children(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if _, ok := visited[c.ID]; ok {
				continue
			}
			visited[c.ID] = struct{}{}
			out = append(out, c.ID)
			if !c.IsLeaf {
				frontier = append(frontier, c.ID)
			}
		}
	}
	return out, nil
}

// Descendants is DescendantIDs for an externally supplied id: it must name an
// existing category.
func (r *Resolver) Descendants(ctx context.Context, categoryID string) ([]string, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, domain.ErrValidationMeta("invalid path param", map[string]string{"category_id": "required"})
	}
	ok, err := r.repo.Exists(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound("category not found")
	}
	return r.DescendantIDs(ctx, categoryID)
}
