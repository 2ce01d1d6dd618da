package catalog

import (
	"context"
	"errors"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	appcatalog "github.com/baechuer/tracking-service/internal/application/catalog"
	"github.com/baechuer/tracking-service/internal/domain"
)

// BreakerRepo guards a category source with circuit breakers so a failing
// catalog database stops being hit on every recommendation request.
type BreakerRepo struct {
	inner    appcatalog.CategoryRepo
	children *gobreaker.CircuitBreaker[[]domain.Category]
	exists   *gobreaker.CircuitBreaker[bool]
}

type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func NewBreakerRepo(inner appcatalog.CategoryRepo, cfg BreakerConfig) *BreakerRepo {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= cfg.MaxFailures
			},
			// caller cancellations say nothing about catalog health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				zlog.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			},
		}
	}
	return &BreakerRepo{
		inner:    inner,
		children: gobreaker.NewCircuitBreaker[[]domain.Category](settings("catalog.children")),
		exists:   gobreaker.NewCircuitBreaker[bool](settings("catalog.exists")),
	}
}

func openErr(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.ErrUnavailable(op, err)
	}
	return err
}

func (b *BreakerRepo) Children(ctx context.Context, parentID string) ([]domain.Category, error) {
	cs, err := b.children.Execute(func() ([]domain.Category, error) {
		return b.inner.Children(ctx, parentID)
	})
	if err != nil {
		return nil, openErr("catalog: child categories", err)
	}
	return cs, nil
}

func (b *BreakerRepo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := b.exists.Execute(func() (bool, error) {
		return b.inner.Exists(ctx, id)
	})
	if err != nil {
		return false, openErr("catalog: category lookup", err)
	}
	return ok, nil
}
