package cache

import (
	"context"
	"time"

	"gudangpos/backend/internal/domain"
)

// SummaryCache holds the computed dashboard summary for a short TTL so
// dashboard polling does not rescan sales and purchases on every request.
type SummaryCache interface {
	Get(ctx context.Context) (*domain.DashboardSummary, bool, error)
	Set(ctx context.Context, summary *domain.DashboardSummary, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(_ context.Context) (*domain.DashboardSummary, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(_ context.Context, _ *domain.DashboardSummary, _ time.Duration) error {
	return nil
}

func (NoopSummaryCache) Invalidate(_ context.Context) error {
	return nil
}
