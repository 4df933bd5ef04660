package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nuvemflow/orderdesk-backend/internal/orders"
	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	jobName = "orders_refresh"

	defaultInterval = 15 * time.Minute
	defaultPageSize = 50
)

type pageCache interface {
	ClearAll()
	FetchPage(ctx context.Context, page, perPage int, statusFilter string) orders.Page
}

type countRefresher interface {
	Refresh(ctx context.Context) error
}

// Params configure a Scheduler.
type Params struct {
	Cache        pageCache
	Counter      countRefresher
	Lock         Lock
	Logger       *logger.Logger
	JobMetrics   *metrics.JobMetrics
	OrderMetrics *metrics.OrderMetrics
	Interval     time.Duration
	PageSize     int
	Now          func() time.Time
}

// DelayedOrder is an order past the calendar-day delay threshold.
type DelayedOrder struct {
	ID             string `json:"id"`
	CustomerName   string `json:"customerName"`
	DaysInUnpacked int    `json:"daysInUnpacked"`
}

// Summary describes one completed refresh run.
type Summary struct {
	StartedAt     time.Time      `json:"startedAt"`
	DurationMS    int64          `json:"durationMs"`
	OrdersFetched int            `json:"ordersFetched"`
	TotalCount    int            `json:"totalCount"`
	DelayedOrders []DelayedOrder `json:"delayedOrders"`
	Skipped       bool           `json:"skipped"`
}

// Status is the scheduler snapshot exposed by the status endpoint.
type Status struct {
	Running         bool       `json:"running"`
	IntervalMinutes int        `json:"intervalMinutes"`
	LastRefresh     *time.Time `json:"lastRefresh"`
	NextRefresh     *time.Time `json:"nextRefresh"`
	LastError       string     `json:"lastError,omitempty"`
	LastSummary     *Summary   `json:"lastSummary,omitempty"`
}

// Scheduler periodically invalidates the order cache and re-reads a
// representative page. It moves between Stopped and Running only through
// Start and Stop; a failed tick never stops it.
type Scheduler struct {
	cache        pageCache
	counter      countRefresher
	lock         Lock
	logg         *logger.Logger
	jobMetrics   *metrics.JobMetrics
	orderMetrics *metrics.OrderMetrics
	pageSize     int
	now          func() time.Time

	// runMu serializes refresh runs between the timer and manual triggers.
	runMu sync.Mutex

	mu          sync.Mutex
	interval    time.Duration
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	reset       chan struct{}
	lastRefresh time.Time
	nextRefresh time.Time
	lastErr     error
	lastSummary *Summary
}

func NewScheduler(params Params) (*Scheduler, error) {
	if params.Cache == nil {
		return nil, fmt.Errorf("order cache required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	lock := params.Lock
	if lock == nil {
		lock = noopLock{}
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	if err := validateInterval(interval); err != nil {
		return nil, err
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		cache:        params.Cache,
		counter:      params.Counter,
		lock:         lock,
		logg:         params.Logger,
		jobMetrics:   params.JobMetrics,
		orderMetrics: params.OrderMetrics,
		pageSize:     pageSize,
		now:          now,
		interval:     interval,
	}, nil
}

// Start moves the scheduler to Running and performs one refresh right away.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logg.Info(ctx, "order refresh scheduler already running")
		return
	}
	loopCtx, cancel := context.WithCancel(s.logg.WithJob(context.WithoutCancel(ctx), jobName))
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.reset = make(chan struct{}, 1)
	interval := s.interval
	done, reset := s.done, s.reset
	s.mu.Unlock()

	s.logg.Info(s.logg.WithField(loopCtx, "interval_minutes", int(interval/time.Minute)), "order refresh scheduler started")
	go s.loop(loopCtx, interval, reset, done)
}

// Stop cancels the timer and waits for an in-flight tick to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.cancel = nil
	s.nextRefresh = time.Time{}
	s.mu.Unlock()

	cancel()
	<-done
	s.logg.Info(context.Background(), "order refresh scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, reset <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	s.tick(ctx)
	s.setNext(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-reset:
			interval = s.currentInterval()
			ticker.Reset(interval)
			s.setNext(interval)
		case <-ticker.C:
			s.tick(ctx)
			s.setNext(interval)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.Run(ctx); err != nil {
		s.logg.Error(ctx, "scheduled order refresh failed", err)
	}
}

// Run executes the shared refresh routine: clear the cache, re-read a
// representative page, log delayed orders and refresh the stored counts.
func (s *Scheduler) Run(ctx context.Context) (summary *Summary, err error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx = s.logg.WithJob(ctx, jobName)
	start := s.now()
	defer func() {
		duration := s.now().Sub(start)
		s.jobMetrics.ObserveDuration(jobName, duration)
		switch {
		case err != nil:
			s.jobMetrics.IncFailure(jobName)
		case summary != nil && summary.Skipped:
			s.jobMetrics.IncSkipped(jobName)
		default:
			s.jobMetrics.IncSuccess(jobName)
		}
		s.record(start, summary, err)
	}()

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "another instance is refreshing orders; skipping")
		return &Summary{StartedAt: start, Skipped: true}, nil
	}
	defer func() {
		err = multierr.Append(err, s.lock.Release(context.WithoutCancel(ctx)))
	}()

	s.cache.ClearAll()
	page := s.cache.FetchPage(ctx, 1, s.pageSize, enums.ShippingStatusAny)
	if page.Degraded {
		return nil, fmt.Errorf("order source unavailable")
	}

	summary = &Summary{
		StartedAt:     start,
		OrdersFetched: len(page.Orders),
		TotalCount:    page.TotalCount,
		DelayedOrders: delayedOrders(page.Orders),
	}
	summary.DurationMS = s.now().Sub(start).Milliseconds()
	s.orderMetrics.SetDelayed(len(summary.DelayedOrders))

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"orders_fetched": summary.OrdersFetched,
		"total_count":    summary.TotalCount,
		"delayed_count":  len(summary.DelayedOrders),
		"duration_ms":    summary.DurationMS,
	}), "order refresh complete")
	for _, d := range summary.DelayedOrders {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id":         d.ID,
			"customer":         d.CustomerName,
			"days_in_unpacked": d.DaysInUnpacked,
		}), "order delayed")
	}

	if s.counter != nil {
		if cerr := s.counter.Refresh(ctx); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("refresh counts: %w", cerr))
		}
	}
	return summary, err
}

// UpdateInterval changes the tick interval and restarts the timer when running.
func (s *Scheduler) UpdateInterval(minutes int) error {
	interval := time.Duration(minutes) * time.Minute
	if err := validateInterval(interval); err != nil {
		return err
	}

	s.mu.Lock()
	s.interval = interval
	running, reset := s.running, s.reset
	s.mu.Unlock()

	if running {
		select {
		case reset <- struct{}{}:
		default:
		}
	}
	s.logg.Info(s.logg.WithField(context.Background(), "interval_minutes", minutes), "order refresh interval updated")
	return nil
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:         s.running,
		IntervalMinutes: int(s.interval / time.Minute),
		LastSummary:     s.lastSummary,
	}
	if !s.lastRefresh.IsZero() {
		last := s.lastRefresh
		status.LastRefresh = &last
	}
	if s.running && !s.nextRefresh.IsZero() {
		next := s.nextRefresh
		status.NextRefresh = &next
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

func (s *Scheduler) currentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) setNext(interval time.Duration) {
	s.mu.Lock()
	if s.running {
		s.nextRefresh = s.now().Add(interval)
	}
	s.mu.Unlock()
}

func (s *Scheduler) record(start time.Time, summary *Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if summary != nil && !summary.Skipped {
		s.lastRefresh = start
		s.lastSummary = summary
	}
}

func delayedOrders(page []orders.Order) []DelayedOrder {
	out := []DelayedOrder{}
	for _, o := range page {
		if o.IsDelayed {
			out = append(out, DelayedOrder{ID: o.ID, CustomerName: o.CustomerName, DaysInUnpacked: o.DaysInUnpacked})
		}
	}
	return out
}

func validateInterval(interval time.Duration) error {
	minutes := int(interval / time.Minute)
	if interval%time.Minute != 0 || minutes < config.MinRefreshIntervalMinutes || minutes > config.MaxRefreshIntervalMinutes {
		return pkgerrors.Invalid("minutes", fmt.Sprintf("interval must be between %d and %d minutes",
			config.MinRefreshIntervalMinutes, config.MaxRefreshIntervalMinutes))
	}
	return nil
}
