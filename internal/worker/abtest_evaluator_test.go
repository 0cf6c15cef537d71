package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/distlock"
)

// =============================================================================
// A/B TEST EVALUATOR TESTS
// =============================================================================

type fakeTests struct {
	mu        sync.Mutex
	running   []domain.ABTest
	listErr   error
	evaluated []int64
}

func (f *fakeTests) RunningTests(context.Context) ([]domain.ABTest, error) {
	return f.running, f.listErr
}

func (f *fakeTests) Evaluate(_ context.Context, _ uuid.UUID, id int64) (*domain.ABTestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluated = append(f.evaluated, id)
	return &domain.ABTestResult{TestID: id, Winner: domain.WinnerA}, nil
}

type fakeMetrics map[string]*domain.CampaignMetrics

func (f fakeMetrics) CampaignMetrics(_ context.Context, _ uuid.UUID, campaignID string) (*domain.CampaignMetrics, error) {
	if campaignID == "broken" {
		return nil, errors.New("db down")
	}
	return f[campaignID], nil
}

func runningTest(id int64, a, b string) domain.ABTest {
	return domain.ABTest{
		ID:       id,
		TenantID: uuid.New(),
		Status:   domain.ABTestRunning,
		VariantA: domain.Variant{CampaignID: a},
		VariantB: domain.Variant{CampaignID: b},
	}
}

func newLockFactory(t *testing.T) (*miniredis.Miniredis, *distlock.Factory) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, distlock.NewFactory(client, nil, time.Minute)
}

func TestABTestEvaluator_RunOnceHonoursSampleSize(t *testing.T) {
	_, locks := newLockFactory(t)
	tests := &fakeTests{running: []domain.ABTest{
		runningTest(1, "a1", "b1"),      // both variants above the floor
		runningTest(2, "a2", "b2"),      // B too small
		runningTest(3, "a3", "missing"), // B has no stats yet
		runningTest(4, "broken", "b1"),  // metrics error
	}}
	metrics := fakeMetrics{
		"a1": {Sent: 150}, "b1": {Sent: 100},
		"a2": {Sent: 500}, "b2": {Sent: 99},
		"a3": {Sent: 500},
	}

	e := NewABTestEvaluator(tests, metrics, locks, time.Minute, 100)
	n := e.RunOnce(context.Background())

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, tests.evaluated)
	assert.True(t, e.IsHealthy())
	assert.False(t, e.LastRunAt().IsZero())
}

func TestABTestEvaluator_SkipsLockedTests(t *testing.T) {
	_, locks := newLockFactory(t)
	tests := &fakeTests{running: []domain.ABTest{runningTest(7, "a", "b")}}
	metrics := fakeMetrics{"a": {Sent: 200}, "b": {Sent: 200}}

	held := locks.Lock("abtest:evaluate:7")
	ok, err := held.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	e := NewABTestEvaluator(tests, metrics, locks, time.Minute, 100)
	assert.Equal(t, 0, e.RunOnce(context.Background()))
	assert.Empty(t, tests.evaluated)

	require.NoError(t, held.Release(context.Background()))
	assert.Equal(t, 1, e.RunOnce(context.Background()))
	assert.Equal(t, []int64{7}, tests.evaluated)
}

func TestABTestEvaluator_ListFailureMarksUnhealthy(t *testing.T) {
	_, locks := newLockFactory(t)
	tests := &fakeTests{listErr: errors.New("db down")}

	e := NewABTestEvaluator(tests, fakeMetrics{}, locks, time.Minute, 100)
	assert.Equal(t, 0, e.RunOnce(context.Background()))
	assert.False(t, e.IsHealthy())
}

func TestABTestEvaluator_StartStop(t *testing.T) {
	_, locks := newLockFactory(t)
	tests := &fakeTests{running: []domain.ABTest{runningTest(9, "a", "b")}}
	metrics := fakeMetrics{"a": {Sent: 100}, "b": {Sent: 100}}

	e := NewABTestEvaluator(tests, metrics, locks, 10*time.Millisecond, 100)
	e.initialDelay = 0
	e.Start(context.Background())

	require.Eventually(t, func() bool {
		tests.mu.Lock()
		defer tests.mu.Unlock()
		return len(tests.evaluated) > 0
	}, time.Second, 5*time.Millisecond)

	e.Stop()
}
