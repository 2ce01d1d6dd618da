package recommend

import (
	"context"
	"sort"

	"github.com/baechuer/tracking-service/internal/domain"
)

// Similar is item-to-item co-viewing: for a product, how many of its
// viewers also viewed each other product.
type Similar struct {
	src EventSource
}

func NewSimilar(src EventSource) *Similar { return &Similar{src: src} }

func (s *Similar) SimilarTo(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error) {
	if !domain.IsCatalogID(productID) {
		return []domain.Recommendation{}, nil
	}
	stats, err := s.src.CoViewedProducts(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Recommendation, 0, len(stats))
	for _, st := range stats {
		if st.ProductID == productID {
			continue
		}
		out = append(out, domain.Recommendation{
			ProductID: st.ProductID,
			Score:     float64(st.DistinctActors),
			Strategy:  domain.StrategySimilar,
			Reason:    domain.ReasonViewedTogether,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, limit), nil
}
