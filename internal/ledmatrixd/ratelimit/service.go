package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// service is the default Service: limits are checked against store, with
// per-type configuration registered at startup.
type service struct {
	store   Store
	logger  zerolog.Logger
	limitsM sync.RWMutex
	limits  map[string]Limit
}

// NewService builds a Service backed by store. A nil store yields a
// permissive no-op service.
func NewService(store Store, logger zerolog.Logger) Service {
	if store == nil {
		return noopService{}
	}
	return &service{
		store:  store,
		logger: logger.With().Str("component", "ratelimit").Logger(),
		limits: make(map[string]Limit),
	}
}

func (s *service) RegisterLimit(limitType string, limit Limit) {
	s.limitsM.Lock()
	defer s.limitsM.Unlock()
	s.limits[limitType] = limit
}

func (s *service) getLimit(limitType string) (Limit, bool) {
	s.limitsM.RLock()
	defer s.limitsM.RUnlock()
	l, ok := s.limits[limitType]
	return l, ok
}

func (s *service) Allow(ctx context.Context, key LimitKey) error {
	limit, ok := s.getLimit(key.Type)
	if !ok {
		s.logger.Warn().Str("type", key.Type).Msg("no rate limit configured for type")
		return nil
	}

	count, err := s.store.Increment(ctx, key, limit)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreError, err)
	}
	if count > limit.Rate {
		return ErrLimitExceeded
	}
	return nil
}

// noopService allows every request; used when no Redis address is
// configured, so the controller runs standalone.
type noopService struct{}

func (noopService) Allow(ctx context.Context, key LimitKey) error { return nil }
func (noopService) RegisterLimit(limitType string, limit Limit)   {}
