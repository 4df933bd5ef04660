package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

// Counter recomputes the unshipped/shipped totals and persists them.
type Counter struct {
	cache *Cache
	store CountsStore
	logg  *logger.Logger
	wg    sync.WaitGroup
}

func NewCounter(cache *Cache, store CountsStore, logg *logger.Logger) (*Counter, error) {
	if cache == nil {
		return nil, fmt.Errorf("order cache required")
	}
	if store == nil {
		return nil, fmt.Errorf("counts store required")
	}
	return &Counter{cache: cache, store: store, logg: logg}, nil
}

// Refresh reads one-order pages per status and stores their totals. A degraded
// upstream page aborts the write so stale counts are kept rather than zeroed.
func (c *Counter) Refresh(ctx context.Context) error {
	unshipped := c.cache.FetchPage(ctx, 1, 1, enums.ShippingStatusUnshipped.String())
	if unshipped.Degraded {
		return fmt.Errorf("unshipped count unavailable")
	}
	shipped := c.cache.FetchPage(ctx, 1, 1, enums.ShippingStatusShipped.String())
	if shipped.Degraded {
		return fmt.Errorf("shipped count unavailable")
	}
	if err := c.store.SetCounts(ctx, int64(unshipped.TotalCount), int64(shipped.TotalCount)); err != nil {
		return fmt.Errorf("persist counts: %w", err)
	}
	return nil
}

// RefreshAsync runs Refresh in the background, detached from ctx cancellation.
// Failures are logged only.
func (c *Counter) RefreshAsync(ctx context.Context) {
	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.Refresh(bg); err != nil && c.logg != nil {
			c.logg.Warn(c.logg.WithField(bg, "error", err.Error()), "order counts refresh failed")
		}
	}()
}

// Wait blocks until every background refresh has returned.
func (c *Counter) Wait() {
	c.wg.Wait()
}
