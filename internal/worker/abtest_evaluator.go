package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/distlock"
	"github.com/ignite/travel-crm/internal/pkg/logger"
)

// ABTestRunner is the slice of abtest.Service the evaluator drives.
type ABTestRunner interface {
	RunningTests(ctx context.Context) ([]domain.ABTest, error)
	Evaluate(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ABTestResult, error)
}

// MetricsSource reads per-campaign metrics. *campaign.Service satisfies it.
type MetricsSource interface {
	CampaignMetrics(ctx context.Context, tenantID uuid.UUID, campaignID string) (*domain.CampaignMetrics, error)
}

// LockFactory hands out distributed locks. *distlock.Factory satisfies it.
type LockFactory interface {
	Lock(key string) distlock.DistLock
}

// ABTestEvaluator periodically completes running A/B tests once both
// variants have enough sends. Each test is evaluated under a lock so that
// several workers can run side by side.
type ABTestEvaluator struct {
	tests         ABTestRunner
	metrics       MetricsSource
	locks         LockFactory
	interval      time.Duration
	initialDelay  time.Duration
	minSampleSize int

	mu        sync.Mutex
	lastRunAt time.Time
	healthy   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewABTestEvaluator(tests ABTestRunner, metrics MetricsSource, locks LockFactory, interval time.Duration, minSampleSize int) *ABTestEvaluator {
	return &ABTestEvaluator{
		tests:         tests,
		metrics:       metrics,
		locks:         locks,
		interval:      interval,
		initialDelay:  30 * time.Second,
		minSampleSize: minSampleSize,
		healthy:       true,
	}
}

func (e *ABTestEvaluator) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		logger.Info("ab test evaluator started",
			"interval", e.interval.String(),
			"min_sample_size", e.minSampleSize)

		select {
		case <-time.After(e.initialDelay):
		case <-ctx.Done():
			return
		}
		e.RunOnce(ctx)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("ab test evaluator stopped")
				return
			case <-ticker.C:
				e.RunOnce(ctx)
			}
		}
	}()
}

func (e *ABTestEvaluator) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *ABTestEvaluator) IsHealthy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.healthy
}

func (e *ABTestEvaluator) LastRunAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRunAt
}

// RunOnce makes one pass over running tests and returns how many were
// evaluated.
func (e *ABTestEvaluator) RunOnce(ctx context.Context) int {
	tests, err := e.tests.RunningTests(ctx)
	e.mu.Lock()
	e.lastRunAt = time.Now()
	e.healthy = err == nil
	e.mu.Unlock()
	if err != nil {
		logger.Error("list running ab tests failed", "error", err)
		return 0
	}

	evaluated := 0
	for _, t := range tests {
		if ctx.Err() != nil {
			break
		}
		ready, err := e.ready(ctx, t)
		if err != nil {
			logger.Warn("ab test readiness check failed", "test_id", t.ID, "error", err)
			continue
		}
		if !ready {
			continue
		}

		lock := e.locks.Lock(fmt.Sprintf("abtest:evaluate:%d", t.ID))
		err = distlock.Run(ctx, lock, func(ctx context.Context) error {
			res, err := e.tests.Evaluate(ctx, t.TenantID, t.ID)
			if err != nil {
				return err
			}
			if res != nil {
				evaluated++
			}
			return nil
		})
		switch {
		case errors.Is(err, distlock.ErrNotAcquired):
			logger.Debug("ab test evaluation held by another worker", "test_id", t.ID)
		case err != nil:
			logger.Error("ab test evaluation failed", "test_id", t.ID, "error", err)
		}
	}
	return evaluated
}

// ready reports whether the smaller variant has reached the sample size.
func (e *ABTestEvaluator) ready(ctx context.Context, t domain.ABTest) (bool, error) {
	a, err := e.metrics.CampaignMetrics(ctx, t.TenantID, t.VariantA.CampaignID)
	if err != nil {
		return false, err
	}
	b, err := e.metrics.CampaignMetrics(ctx, t.TenantID, t.VariantB.CampaignID)
	if err != nil {
		return false, err
	}
	if a == nil || b == nil {
		return false, nil
	}
	return min(a.Sent, b.Sent) >= e.minSampleSize, nil
}
