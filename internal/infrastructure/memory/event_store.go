package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/tracking-service/internal/domain"
)

// EventStore keeps the event log in process. It backs local development
// when no DATABASE_URL is configured and the service tests.
type EventStore struct {
	mu     sync.RWMutex
	events []*domain.Event
}

func NewEventStore() *EventStore { return &EventStore{} }

func clone(e *domain.Event) *domain.Event {
	cp := *e
	if e.Metadata != nil {
		cp.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func (s *EventStore) Append(ctx context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, clone(e))
	return nil
}

func (s *EventStore) Find(ctx context.Context, f domain.EventFilter, limit int) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Event{}
	for i := len(s.events) - 1; i >= 0; i-- {
		if f.Matches(s.events[i]) {
			out = append(out, clone(s.events[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *EventStore) DistinctProductsViewedBy(ctx context.Context, actorID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	out := []string{}
	for _, e := range s.events {
		if e.ActorID != actorID || e.Action != domain.ActionView {
			continue
		}
		if _, ok := seen[e.ProductID]; ok {
			continue
		}
		seen[e.ProductID] = struct{}{}
		out = append(out, e.ProductID)
	}
	return out, nil
}

func (s *EventStore) ActionSummary(ctx context.Context, actorID string) (map[domain.Action]domain.ActionStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[domain.Action]domain.ActionStat{}
	for _, e := range s.events {
		if e.ActorID != actorID {
			continue
		}
		st := out[e.Action]
		st.Count++
		if e.CreatedAt.After(st.LastActivity) {
			st.LastActivity = e.CreatedAt
		}
		out[e.Action] = st
	}
	return out, nil
}

func (s *EventStore) ActivityCounts(ctx context.Context, g domain.Granularity, since *time.Time) ([]domain.BucketCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		bucket string
		action domain.Action
	}
	idx := map[key]int{}
	var out []domain.BucketCount
	for _, e := range s.events {
		if since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		k := key{bucket: domain.BucketKey(g, e.CreatedAt), action: e.Action}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, domain.BucketCount{Bucket: k.bucket, Action: k.action})
		}
		out[i].Count++
	}
	return out, nil
}

func (s *EventStore) ReassignSession(ctx context.Context, sessionID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, e := range s.events {
		if e.ActorID == domain.AnonymousActor && e.SessionID == sessionID {
			e.ActorID = userID
			e.SessionID = ""
			n++
		}
	}
	return n, nil
}

// productAgg accumulates event and distinct actor counts per product in
// first-appearance order.
type productAgg struct {
	idx    map[string]int
	stats  []domain.ProductStat
	actors []map[string]struct{}
}

func newProductAgg() *productAgg { return &productAgg{idx: map[string]int{}} }

func (a *productAgg) add(productID, actorID string) {
	i, ok := a.idx[productID]
	if !ok {
		i = len(a.stats)
		a.idx[productID] = i
		a.stats = append(a.stats, domain.ProductStat{ProductID: productID})
		a.actors = append(a.actors, map[string]struct{}{})
	}
	a.stats[i].Count++
	if _, seen := a.actors[i][actorID]; !seen {
		a.actors[i][actorID] = struct{}{}
		a.stats[i].DistinctActors++
	}
}

func (a *productAgg) result() []domain.ProductStat {
	if a.stats == nil {
		return []domain.ProductStat{}
	}
	return a.stats
}

func (s *EventStore) ProductInteractions(ctx context.Context, excludeActorID string) ([]domain.ProductStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := newProductAgg()
	for _, e := range s.events {
		if e.ActorID == excludeActorID || !domain.IsCatalogID(e.ProductID) {
			continue
		}
		agg.add(e.ProductID, e.ActorID)
	}
	return agg.result(), nil
}

func (s *EventStore) ProductViews(ctx context.Context) ([]domain.ProductStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := newProductAgg()
	for _, e := range s.events {
		if e.Action != domain.ActionView || !domain.IsCatalogID(e.ProductID) {
			continue
		}
		agg.add(e.ProductID, e.ActorID)
	}
	return agg.result(), nil
}

func (s *EventStore) CategoryWeights(ctx context.Context, productIDs []string) ([]domain.CategoryWeight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}
	idx := map[string]int{}
	seen := []map[string]struct{}{}
	out := []domain.CategoryWeight{}
	for _, e := range s.events {
		if e.CategoryID == "" {
			continue
		}
		if _, ok := wanted[e.ProductID]; !ok {
			continue
		}
		i, ok := idx[e.CategoryID]
		if !ok {
			i = len(out)
			idx[e.CategoryID] = i
			out = append(out, domain.CategoryWeight{CategoryID: e.CategoryID})
			seen = append(seen, map[string]struct{}{})
		}
		if _, dup := seen[i][e.ProductID]; !dup {
			seen[i][e.ProductID] = struct{}{}
			out[i].Weight++
		}
	}
	return out, nil
}

func (s *EventStore) CategoryProductCounts(ctx context.Context, categoryIDs []string) ([]domain.CategoryProductCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = struct{}{}
	}
	type key struct{ category, product string }
	idx := map[key]int{}
	out := []domain.CategoryProductCount{}
	for _, e := range s.events {
		if _, ok := wanted[e.CategoryID]; !ok || !domain.IsCatalogID(e.ProductID) {
			continue
		}
		k := key{e.CategoryID, e.ProductID}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, domain.CategoryProductCount{CategoryID: e.CategoryID, ProductID: e.ProductID})
		}
		out[i].Count++
	}
	return out, nil
}

func (s *EventStore) CoViewedProducts(ctx context.Context, productID string) ([]domain.ProductStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewers := map[string]struct{}{}
	for _, e := range s.events {
		if e.Action == domain.ActionView && e.ProductID == productID {
			viewers[e.ActorID] = struct{}{}
		}
	}
	agg := newProductAgg()
	for _, e := range s.events {
		if e.Action != domain.ActionView || e.ProductID == productID || !domain.IsCatalogID(e.ProductID) {
			continue
		}
		if _, ok := viewers[e.ActorID]; !ok {
			continue
		}
		agg.add(e.ProductID, e.ActorID)
	}
	return agg.result(), nil
}
