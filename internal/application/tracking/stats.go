package tracking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/baechuer/tracking-service/internal/domain"
)

func (s *Service) UserStats(ctx context.Context, actorID string) (map[domain.Action]domain.ActionStat, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, domain.ErrValidationMeta("invalid query", map[string]string{"user_id": "required"})
	}
	return s.store.ActionSummary(ctx, actorID)
}

// HourlyStats buckets the whole log by UTC hour of day.
func (s *Service) HourlyStats(ctx context.Context) ([]domain.ActivityBucket, error) {
	rows, err := s.store.ActivityCounts(ctx, domain.GranularityHour, nil)
	if err != nil {
		return nil, err
	}
	return foldBuckets(rows), nil
}

// DailyStats buckets the last days calendar days (UTC), today included.
func (s *Service) DailyStats(ctx context.Context, days int) ([]domain.ActivityBucket, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	if days > 366 {
		return nil, domain.ErrValidationMeta("invalid query", map[string]string{"days": "must be at most 366"})
	}
	now := s.clock.Now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	rows, err := s.store.ActivityCounts(ctx, domain.GranularityDay, &since)
	if err != nil {
		return nil, err
	}
	return foldBuckets(rows), nil
}

func foldBuckets(rows []domain.BucketCount) []domain.ActivityBucket {
	idx := map[string]int{}
	var out []domain.ActivityBucket
	for _, r := range rows {
		i, ok := idx[r.Bucket]
		if !ok {
			i = len(out)
			idx[r.Bucket] = i
			out = append(out, domain.ActivityBucket{Bucket: r.Bucket})
		}
		out[i].Actions = append(out[i].Actions, domain.ActionCount{Action: r.Action, Count: r.Count})
		out[i].Total += r.Count
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Bucket < out[b].Bucket })
	for i := range out {
		sort.SliceStable(out[i].Actions, func(a, b int) bool {
			return out[i].Actions[a].Action < out[i].Actions[b].Action
		})
	}
	if out == nil {
		out = []domain.ActivityBucket{}
	}
	return out
}
