package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/baechuer/tracking-service/internal/domain"
	"github.com/baechuer/tracking-service/internal/metrics"
)

const (
	WeightCollaborative = 0.5
	WeightContentBased  = 0.3
	WeightPopular       = 0.2
)

type weighted struct {
	scorer Scorer
	weight float64
}

// Blender fans out to its scorers concurrently and ranks the union of their
// results by score × strategy weight. The same product may appear once per
// strategy that surfaced it.
//
// Failure is fail-fast: the first scorer error (or scorer timeout) cancels
// the others and is returned.
type Blender struct {
	scorers []weighted
	timeout time.Duration
}

func NewBlender(collab, content, popular Scorer, scorerTimeout time.Duration) *Blender {
	return &Blender{
		scorers: []weighted{
			{scorer: collab, weight: WeightCollaborative},
			{scorer: content, weight: WeightContentBased},
			{scorer: popular, weight: WeightPopular},
		},
		timeout: scorerTimeout,
	}
}

func (b *Blender) Recommend(ctx context.Context, actorID string, limit int) ([]domain.Recommendation, error) {
	if limit <= 0 {
		return []domain.Recommendation{}, nil
	}
	per := (limit + len(b.scorers) - 1) / len(b.scorers)

	results := make([][]domain.Recommendation, len(b.scorers))
	g, gctx := errgroup.WithContext(ctx)
	for i, ws := range b.scorers {
		g.Go(func() error {
			items, err := b.run(gctx, ws.scorer, actorID, per)
			if err != nil {
				return err
			}
			for j := range items {
				items[j].Weight = ws.weight
				items[j].BlendedScore = items[j].Score * ws.weight
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Recommendation
	for _, items := range results {
		all = append(all, items...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].BlendedScore > all[j].BlendedScore })
	if all == nil {
		all = []domain.Recommendation{}
	}
	return truncate(all, limit), nil
}

func (b *Blender) run(ctx context.Context, s Scorer, actorID string, limit int) ([]domain.Recommendation, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	start := time.Now()
	items, err := s.Score(ctx, actorID, limit)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	metrics.RecordScorer(string(s.Strategy()), err, time.Since(start))
	if err != nil {
		zlog.Error().Err(err).Str("strategy", string(s.Strategy())).Str("actor_id", actorID).Msg("scorer failed")
		var ae *domain.AppError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, domain.ErrUnavailable(fmt.Sprintf("%s scorer", s.Strategy()), err)
	}
	return items, nil
}
