package repository

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/astrobookings/internal/domain"
)

// RocketCache is a read-through cache for rockets. A miss is (zero, false, nil).
type RocketCache interface {
	GetRocket(ctx context.Context, id string) (domain.Rocket, bool, error)
	SetRocket(ctx context.Context, rocket domain.Rocket) error
}

// CachedRocketRepository serves GetByID from the cache when it can. Rockets are
// immutable, so cached entries never go stale; cache errors only cost a trip to
// the inner store.
type CachedRocketRepository struct {
	inner  RocketRepository
	cache  RocketCache
	logger *slog.Logger
}

func NewCachedRocketRepository(inner RocketRepository, cache RocketCache, logger *slog.Logger) *CachedRocketRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRocketRepository{inner: inner, cache: cache, logger: logger}
}

func (r *CachedRocketRepository) Add(ctx context.Context, rocket domain.Rocket) (domain.Rocket, error) {
	created, err := r.inner.Add(ctx, rocket)
	if err != nil {
		return domain.Rocket{}, err
	}
	r.store(ctx, created)
	return created, nil
}

func (r *CachedRocketRepository) List(ctx context.Context) ([]domain.Rocket, error) {
	return r.inner.List(ctx)
}

func (r *CachedRocketRepository) GetByID(ctx context.Context, id string) (domain.Rocket, error) {
	cached, ok, err := r.cache.GetRocket(ctx, id)
	if err != nil {
		r.logger.WarnContext(ctx, "rocket cache read failed", "rocket_id", id, "error", err)
	} else if ok {
		return cached, nil
	}

	rocket, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return domain.Rocket{}, err
	}
	r.store(ctx, rocket)
	return rocket, nil
}

func (r *CachedRocketRepository) store(ctx context.Context, rocket domain.Rocket) {
	if err := r.cache.SetRocket(ctx, rocket); err != nil {
		r.logger.WarnContext(ctx, "rocket cache write failed", "rocket_id", rocket.ID, "error", err)
	}
}

var _ RocketRepository = (*CachedRocketRepository)(nil)
