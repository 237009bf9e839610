package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"gudangpos/backend/internal/cache"
	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo       store.Repository
	summaries  cache.SummaryCache
	summaryTTL time.Duration
	lowStock   int
	logger     *zap.Logger
}

func New(repo store.Repository, summaries cache.SummaryCache, summaryTTL time.Duration, lowStockThreshold int, logger *zap.Logger) *Service {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if summaryTTL <= 0 {
		summaryTTL = 30 * time.Second
	}
	if lowStockThreshold < 1 {
		lowStockThreshold = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:       repo,
		summaries:  summaries,
		summaryTTL: summaryTTL,
		lowStock:   lowStockThreshold,
		logger:     logger,
	}
}

// nextBarcode draws random 4-digit codes until one is free. The code space
// is tiny (9000 values) so a dense catalog can exhaust it; after a bounded
// number of collisions we give up instead of spinning.
func (s *Service) nextBarcode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 25; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%04d", n.Int64()+1000)

		_, err = s.repo.GetProductByBarcode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: no free barcode available", store.ErrInvalidInput)
}

// invalidateSummary drops the cached dashboard summary after a write that
// changes what the summary reports. Failures are logged, never surfaced.
func (s *Service) invalidateSummary(ctx context.Context) {
	if err := s.summaries.Invalidate(ctx); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}
