package domain

import "time"

type ActionStat struct {
	Count        int64
	LastActivity time.Time
}

type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// BucketCount is one (bucket, action) row of an activity aggregate.
// Hour buckets are "00".."23" (UTC hour of day), day buckets are "YYYY-MM-DD".
type BucketCount struct {
	Bucket string
	Action Action
	Count  int64
}

type ActionCount struct {
	Action Action
	Count  int64
}

type ActivityBucket struct {
	Bucket  string
	Actions []ActionCount
	Total   int64
}

func BucketKey(g Granularity, t time.Time) string {
	t = t.UTC()
	if g == GranularityHour {
		return t.Format("15")
	}
	return t.Format("2006-01-02")
}

// ProductStat counts interactions with a product and the distinct actors behind them.
type ProductStat struct {
	ProductID      string
	Count          int64
	DistinctActors int64
}

type CategoryWeight struct {
	CategoryID string
	Weight     int64
}

type CategoryProductCount struct {
	CategoryID string
	ProductID  string
	Count      int64
}

type PopularProduct struct {
	ProductID       string
	ViewCount       int64
	UniqueUserCount int64
}
