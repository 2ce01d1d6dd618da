package recommend

import (
	"context"
	"strings"

	"github.com/baechuer/tracking-service/internal/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 500
)

type Service struct {
	blender *Blender
	collab  *Collaborative
	content *ContentBased
	popular *Popular
	similar *Similar
}

func NewService(blender *Blender, collab *Collaborative, content *ContentBased, popular *Popular, similar *Similar) *Service {
	return &Service{
		blender: blender,
		collab:  collab,
		content: content,
		popular: popular,
		similar: similar,
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func requireActor(actorID string) (string, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return "", domain.ErrValidationMeta("invalid request", map[string]string{"user_id": "required"})
	}
	return actorID, nil
}

func (s *Service) Recommend(ctx context.Context, actorID string, limit int) ([]domain.Recommendation, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return nil, err
	}
	return s.blender.Recommend(ctx, actorID, normalizeLimit(limit))
}

func (s *Service) Collaborative(ctx context.Context, actorID string, limit int) ([]domain.Recommendation, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return nil, err
	}
	return s.collab.Score(ctx, actorID, normalizeLimit(limit))
}

func (s *Service) ContentBased(ctx context.Context, actorID string, limit int) ([]domain.Recommendation, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return nil, err
	}
	return s.content.Score(ctx, actorID, normalizeLimit(limit))
}

func (s *Service) Popular(ctx context.Context, limit int) ([]domain.PopularProduct, error) {
	return s.popular.Products(ctx, normalizeLimit(limit))
}

func (s *Service) Similar(ctx context.Context, productID string, limit int) ([]domain.Recommendation, error) {
	return s.similar.SimilarTo(ctx, strings.TrimSpace(productID), normalizeLimit(limit))
}
