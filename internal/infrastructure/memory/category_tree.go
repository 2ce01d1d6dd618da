package memory

import (
	"context"
	"sync"

	"github.com/baechuer/tracking-service/internal/domain"
)

// CategoryTree is an in-process category hierarchy. It does not enforce
// acyclicity.
type CategoryTree struct {
	mu    sync.RWMutex
	nodes []domain.Category
	byID  map[string]int
}

func NewCategoryTree(nodes ...domain.Category) *CategoryTree {
	t := &CategoryTree{byID: map[string]int{}}
	for _, n := range nodes {
		t.Put(n)
	}
	return t
}

// Put inserts or replaces a node.
func (t *CategoryTree) Put(c domain.Category) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.byID[c.ID]; ok {
		t.nodes[i] = c
		return
	}
	t.byID[c.ID] = len(t.nodes)
	t.nodes = append(t.nodes, c)
}

func (t *CategoryTree) Children(ctx context.Context, parentID string) ([]domain.Category, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []domain.Category{}
	for _, n := range t.nodes {
		if n.ParentID == parentID && n.ID != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

func (t *CategoryTree) Exists(ctx context.Context, id string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byID[id]
	return ok, nil
}
