package dto

import "github.com/baechuer/tracking-service/internal/domain"

type RecommendationResp struct {
	ProductID    string   `json:"productId"`
	Score        float64  `json:"score"`
	Strategy     string   `json:"strategy"`
	CategoryID   string   `json:"categoryId,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	BlendedScore *float64 `json:"blendedScore,omitempty"`
}

func ToRecommendationResps(in []domain.Recommendation) []RecommendationResp {
	out := make([]RecommendationResp, 0, len(in))
	for _, r := range in {
		item := RecommendationResp{
			ProductID:  r.ProductID,
			Score:      r.Score,
			Strategy:   string(r.Strategy),
			CategoryID: r.CategoryID,
			Reason:     r.Reason,
		}
		if r.Weight > 0 {
			w, b := r.Weight, r.BlendedScore
			item.Weight, item.BlendedScore = &w, &b
		}
		out = append(out, item)
	}
	return out
}

type PopularProductResp struct {
	ProductID       string `json:"productId"`
	ViewCount       int64  `json:"viewCount"`
	UniqueUserCount int64  `json:"uniqueUserCount"`
}

func ToPopularResps(in []domain.PopularProduct) []PopularProductResp {
	out := make([]PopularProductResp, 0, len(in))
	for _, p := range in {
		out = append(out, PopularProductResp{
			ProductID:       p.ProductID,
			ViewCount:       p.ViewCount,
			UniqueUserCount: p.UniqueUserCount,
		})
	}
	return out
}

type DescendantsResp struct {
	CategoryID string   `json:"categoryId"`
	IDs        []string `json:"ids"`
}
