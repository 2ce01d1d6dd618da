package recommend

import (
	"context"

	"github.com/baechuer/tracking-service/internal/domain"
)

// EventSource is the read side of the event log the scorers aggregate over.
// Product-keyed aggregates only contain catalog-shaped product ids and are
// returned in first-appearance order so that ties rank deterministically.
type EventSource interface {
	// ProductInteractions aggregates every action of every actor other than excludeActorID.
	ProductInteractions(ctx context.Context, excludeActorID string) ([]domain.ProductStat, error)
	// ProductViews aggregates view events of all actors.
	ProductViews(ctx context.Context) ([]domain.ProductStat, error)
	DistinctProductsViewedBy(ctx context.Context, actorID string) ([]string, error)
	// CategoryWeights counts, per category, how many of productIDs carry it on any event.
	CategoryWeights(ctx context.Context, productIDs []string) ([]domain.CategoryWeight, error)
	// CategoryProductCounts counts events per (category, product) for the given categories.
	CategoryProductCounts(ctx context.Context, categoryIDs []string) ([]domain.CategoryProductCount, error)
	// CoViewedProducts counts, per other product, the distinct viewers of productID who also viewed it.
	CoViewedProducts(ctx context.Context, productID string) ([]domain.ProductStat, error)
}

type CategoryExpander interface {
	DescendantIDs(ctx context.Context, categoryID string) ([]string, error)
}

// Scorer produces a ranked list for an actor. Scorers that ignore the actor
// (popularity) accept any value.
type Scorer interface {
	Strategy() domain.Strategy
	Score(ctx context.Context, actorID string, limit int) ([]domain.Recommendation, error)
}
