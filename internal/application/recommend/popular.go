package recommend

import (
	"context"
	"sort"

	"github.com/baechuer/tracking-service/internal/domain"
)

// Popular ranks products by raw view count. Unique viewers are reported
// alongside but never affect order.
type Popular struct {
	src EventSource
}

func NewPopular(src EventSource) *Popular { return &Popular{src: src} }

func (p *Popular) Strategy() domain.Strategy { return domain.StrategyPopular }

func (p *Popular) Products(ctx context.Context, limit int) ([]domain.PopularProduct, error) {
	stats, err := p.src.ProductViews(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PopularProduct, 0, len(stats))
	for _, st := range stats {
		out = append(out, domain.PopularProduct{
			ProductID:       st.ProductID,
			ViewCount:       st.Count,
			UniqueUserCount: st.DistinctActors,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ViewCount > out[j].ViewCount })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p *Popular) Score(ctx context.Context, _ string, limit int) ([]domain.Recommendation, error) {
	items, err := p.Products(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Recommendation, 0, len(items))
	for _, it := range items {
		out = append(out, domain.Recommendation{
			ProductID: it.ProductID,
			Score:     float64(it.ViewCount),
			Strategy:  domain.StrategyPopular,
			Reason:    domain.ReasonPopular,
		})
	}
	return out, nil
}
