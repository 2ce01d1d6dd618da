package recommend

import (
	"context"
	"sort"

	"github.com/baechuer/tracking-service/internal/domain"
)

// Collaborative ranks products by how broadly other actors interact with them:
// interactions divided by distinct actors. It is a "popular with everyone
// else" signal, not user-similarity filtering.
type Collaborative struct {
	src EventSource
}

func NewCollaborative(src EventSource) *Collaborative { return &Collaborative{src: src} }

func (c *Collaborative) Strategy() domain.Strategy { return domain.StrategyCollaborative }

func (c *Collaborative) Score(ctx context.Context, actorID string, limit int) ([]domain.Recommendation, error) {
	stats, err := c.src.ProductInteractions(ctx, actorID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Recommendation, 0, len(stats))
	for _, st := range stats {
		if st.DistinctActors == 0 {
			continue
		}
		out = append(out, domain.Recommendation{
			ProductID: st.ProductID,
			Score:     float64(st.Count) / float64(st.DistinctActors),
			Strategy:  domain.StrategyCollaborative,
			Reason:    domain.ReasonSimilarUsers,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, limit), nil
}

func truncate(items []domain.Recommendation, limit int) []domain.Recommendation {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
