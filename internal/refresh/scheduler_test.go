package refresh

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/nuvemflow/orderdesk-backend/internal/orders"
	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu      sync.Mutex
	clears  int
	fetches []string
	page    orders.Page
	fetched chan struct{}
}

func (c *fakeCache) ClearAll() {
	c.mu.Lock()
	c.clears++
	c.mu.Unlock()
}

func (c *fakeCache) FetchPage(_ context.Context, page, perPage int, statusFilter string) orders.Page {
	c.mu.Lock()
	c.fetches = append(c.fetches, orders.PageKey(page, perPage, statusFilter))
	result := c.page
	c.mu.Unlock()
	if c.fetched != nil {
		select {
		case c.fetched <- struct{}{}:
		default:
		}
	}
	return result
}

func (c *fakeCache) stats() (int, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears, append([]string(nil), c.fetches...)
}

type fakeCounter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *fakeCounter) Refresh(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

type fakeLock struct {
	held       bool
	deny       bool
	releaseErr error
	releases   int
}

func (l *fakeLock) Acquire(context.Context) (bool, error) {
	if l.deny || l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(context.Context) error {
	l.releases++
	l.held = false
	return l.releaseErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "refresh-test", Level: zerolog.Disabled, Output: io.Discard})
}

func healthyPage() orders.Page {
	return orders.Page{
		Orders: []orders.Order{
			{ID: "1", CustomerName: "Ana", ShippingStatus: enums.ShippingStatusUnpacked, IsDelayed: true, DaysInUnpacked: 6},
			{ID: "2", CustomerName: "Bruno", ShippingStatus: enums.ShippingStatusShipped},
			{ID: "3", CustomerName: "Carla", ShippingStatus: enums.ShippingStatusUnpacked, DaysInUnpacked: 1},
		},
		TotalCount: 120,
		TotalPages: 3,
	}
}

func newTestScheduler(t *testing.T, cache *fakeCache, counter *fakeCounter, lock Lock) *Scheduler {
	t.Helper()
	s, err := NewScheduler(Params{Cache: cache, Counter: counter, Lock: lock, Logger: testLogger()})
	require.NoError(t, err)
	return s
}

func TestRunRefreshesCacheAndCounts(t *testing.T) {
	cache := &fakeCache{page: healthyPage()}
	counter := &fakeCounter{}
	lock := &fakeLock{}
	s := newTestScheduler(t, cache, counter, lock)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	clears, fetches := cache.stats()
	assert.Equal(t, 1, clears)
	assert.Equal(t, []string{orders.PageKey(1, 50, "any")}, fetches)
	assert.Equal(t, 1, counter.calls)
	assert.Equal(t, 1, lock.releases)

	assert.Equal(t, 3, summary.OrdersFetched)
	assert.Equal(t, 120, summary.TotalCount)
	require.Len(t, summary.DelayedOrders, 1)
	assert.Equal(t, DelayedOrder{ID: "1", CustomerName: "Ana", DaysInUnpacked: 6}, summary.DelayedOrders[0])

	status := s.Status()
	assert.False(t, status.Running)
	require.NotNil(t, status.LastRefresh)
	assert.Empty(t, status.LastError)
	assert.Nil(t, status.NextRefresh)
}

func TestRunFailsOnDegradedPage(t *testing.T) {
	cache := &fakeCache{page: orders.Page{Orders: []orders.Order{}, Degraded: true}}
	counter := &fakeCounter{}
	lock := &fakeLock{}
	s := newTestScheduler(t, cache, counter, lock)

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, counter.calls)
	assert.Equal(t, 1, lock.releases)
	assert.NotEmpty(t, s.Status().LastError)
	assert.Nil(t, s.Status().LastRefresh)
}

func TestRunCombinesCountAndLockErrors(t *testing.T) {
	cache := &fakeCache{page: healthyPage()}
	counter := &fakeCounter{err: errors.New("counts down")}
	lock := &fakeLock{releaseErr: errors.New("redis gone")}
	s := newTestScheduler(t, cache, counter, lock)

	summary, err := s.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Contains(t, err.Error(), "counts down")
	assert.Contains(t, err.Error(), "redis gone")
}

func TestRunSkipsWhenLockHeldElsewhere(t *testing.T) {
	cache := &fakeCache{page: healthyPage()}
	reg := prometheus.NewRegistry()
	jobMetrics := metrics.NewJobMetrics(reg)
	s, err := NewScheduler(Params{Cache: cache, Lock: &fakeLock{deny: true}, Logger: testLogger(), JobMetrics: jobMetrics})
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Skipped)
	clears, _ := cache.stats()
	assert.Zero(t, clears)

	families, err := reg.Gather()
	require.NoError(t, err)
	var skipped float64
	for _, mf := range families {
		if mf.GetName() == "orderdesk_job_skipped_total" {
			for _, m := range mf.GetMetric() {
				skipped += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), skipped)
}

func TestStartPerformsEagerRefreshAndStops(t *testing.T) {
	cache := &fakeCache{page: healthyPage(), fetched: make(chan struct{}, 1)}
	s := newTestScheduler(t, cache, &fakeCounter{}, nil)

	s.Start(context.Background())
	s.Start(context.Background())

	select {
	case <-cache.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an eager refresh on start")
	}
	require.Eventually(t, func() bool { return s.Status().NextRefresh != nil }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, s.Status().Running)

	s.Stop()
	s.Stop()
	status := s.Status()
	assert.False(t, status.Running)
	assert.Nil(t, status.NextRefresh)

	_, fetches := cache.stats()
	assert.Len(t, fetches, 1)
}

func TestFailedTickKeepsSchedulerRunning(t *testing.T) {
	cache := &fakeCache{page: orders.Page{Degraded: true}, fetched: make(chan struct{}, 1)}
	s := newTestScheduler(t, cache, &fakeCounter{}, nil)

	s.Start(context.Background())
	defer s.Stop()

	<-cache.fetched
	require.Eventually(t, func() bool { return s.Status().LastError != "" }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, s.Status().Running)
}

func TestUpdateInterval(t *testing.T) {
	s := newTestScheduler(t, &fakeCache{page: healthyPage()}, nil, nil)

	for _, minutes := range []int{0, 4, 61} {
		err := s.UpdateInterval(minutes)
		require.Error(t, err, minutes)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}

	require.NoError(t, s.UpdateInterval(30))
	assert.Equal(t, 30, s.Status().IntervalMinutes)
}

func TestUpdateIntervalRestartsTimer(t *testing.T) {
	base := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	cache := &fakeCache{page: healthyPage()}
	s, err := NewScheduler(Params{Cache: cache, Logger: testLogger(), Now: func() time.Time { return base }})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()
	require.Eventually(t, func() bool {
		next := s.Status().NextRefresh
		return next != nil && next.Equal(base.Add(15*time.Minute))
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.UpdateInterval(5))
	require.Eventually(t, func() bool {
		next := s.Status().NextRefresh
		return next != nil && next.Equal(base.Add(5*time.Minute))
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewSchedulerValidation(t *testing.T) {
	_, err := NewScheduler(Params{Logger: testLogger()})
	require.Error(t, err)

	_, err = NewScheduler(Params{Cache: &fakeCache{}})
	require.Error(t, err)

	_, err = NewScheduler(Params{Cache: &fakeCache{}, Logger: testLogger(), Interval: 2 * time.Hour})
	require.Error(t, err)
}
