package recommend

import (
	"context"
	"sort"

	"github.com/baechuer/tracking-service/internal/domain"
)

// ContentBased recommends unseen products that share categories with what
// the actor has viewed. A candidate event in category c adds the number of
// viewed products tagged c, so products touching several of the actor's
// categories rank higher.
type ContentBased struct {
	src    EventSource
	expand CategoryExpander // nil disables descendant broadening
}

func NewContentBased(src EventSource, expand CategoryExpander) *ContentBased {
	return &ContentBased{src: src, expand: expand}
}

func (c *ContentBased) Strategy() domain.Strategy { return domain.StrategyContentBased }

func (c *ContentBased) Score(ctx context.Context, actorID string, limit int) ([]domain.Recommendation, error) {
	viewed, err := c.src.DistinctProductsViewedBy(ctx, actorID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(viewed))
	catalog := make([]string, 0, len(viewed))
	for _, id := range viewed {
		seen[id] = struct{}{}
		if domain.IsCatalogID(id) {
			catalog = append(catalog, id)
		}
	}
	if len(catalog) == 0 {
		return []domain.Recommendation{}, nil
	}

	weights, err := c.src.CategoryWeights(ctx, catalog)
	if err != nil {
		return nil, err
	}
	if c.expand != nil {
		if weights, err = c.broaden(ctx, weights); err != nil {
			return nil, err
		}
	}
	if len(weights) == 0 {
		return []domain.Recommendation{}, nil
	}

	weightOf := make(map[string]int64, len(weights))
	categoryIDs := make([]string, 0, len(weights))
	for _, w := range weights {
		weightOf[w.CategoryID] = w.Weight
		categoryIDs = append(categoryIDs, w.CategoryID)
	}

	counts, err := c.src.CategoryProductCounts(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		score   int64
		best    string
		bestVal int64
	}
	byProduct := map[string]*candidate{}
	var order []string
	for _, pc := range counts {
		if _, ok := seen[pc.ProductID]; ok || !domain.IsCatalogID(pc.ProductID) {
			continue
		}
		contrib := weightOf[pc.CategoryID] * pc.Count
		cand, ok := byProduct[pc.ProductID]
		if !ok {
			cand = &candidate{}
			byProduct[pc.ProductID] = cand
			order = append(order, pc.ProductID)
		}
		cand.score += contrib
		if contrib > cand.bestVal {
			cand.best, cand.bestVal = pc.CategoryID, contrib
		}
	}

	out := make([]domain.Recommendation, 0, len(order))
	for _, id := range order {
		cand := byProduct[id]
		out = append(out, domain.Recommendation{
			ProductID:  id,
			Score:      float64(cand.score),
			Strategy:   domain.StrategyContentBased,
			CategoryID: cand.best,
			Reason:     domain.ReasonSimilarProducts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, limit), nil
}

// broaden adds every descendant of a weighted category with its ancestor's
// weight. A category reached from several ancestors keeps the largest.
func (c *ContentBased) broaden(ctx context.Context, weights []domain.CategoryWeight) ([]domain.CategoryWeight, error) {
	idx := make(map[string]int, len(weights))
	out := make([]domain.CategoryWeight, 0, len(weights))
	for _, w := range weights {
		idx[w.CategoryID] = len(out)
		out = append(out, w)
	}
	for _, w := range weights {
		ids, err := c.expand.DescendantIDs(ctx, w.CategoryID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if i, ok := idx[id]; ok {
				if w.Weight > out[i].Weight {
					out[i].Weight = w.Weight
				}
				continue
			}
			idx[id] = len(out)
			out = append(out, domain.CategoryWeight{CategoryID: id, Weight: w.Weight})
		}
	}
	return out, nil
}
