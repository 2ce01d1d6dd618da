package dto

import (
	"time"

	"github.com/baechuer/tracking-service/internal/domain"
)

type ActionStatResp struct {
	Count        int64     `json:"count"`
	LastActivity time.Time `json:"lastActivity"`
}

// ToUserStatsResp keys the summary by action name.
func ToUserStatsResp(in map[domain.Action]domain.ActionStat) map[string]ActionStatResp {
	out := make(map[string]ActionStatResp, len(in))
	for a, st := range in {
		out[string(a)] = ActionStatResp{Count: st.Count, LastActivity: st.LastActivity.UTC()}
	}
	return out
}

type ActionCountResp struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type BucketResp struct {
	ID      string            `json:"_id"`
	Actions []ActionCountResp `json:"actions"`
	Total   int64             `json:"total"`
}

func ToBucketResps(in []domain.ActivityBucket) []BucketResp {
	out := make([]BucketResp, 0, len(in))
	for _, b := range in {
		actions := make([]ActionCountResp, 0, len(b.Actions))
		for _, a := range b.Actions {
			actions = append(actions, ActionCountResp{Action: string(a.Action), Count: a.Count})
		}
		out = append(out, BucketResp{ID: b.Bucket, Actions: actions, Total: b.Total})
	}
	return out
}
