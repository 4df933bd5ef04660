package orders

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/metrics"
	"github.com/nuvemflow/orderdesk-backend/pkg/pagination"
)

const (
	DefaultCacheTTL       = 15 * time.Minute
	DefaultEmptyResultTTL = 5 * time.Minute

	cacheKindPage  = "page"
	cacheKindOrder = "order"
)

// PageKey identifies a cached upstream page.
func PageKey(page, perPage int, statusFilter string) string {
	return fmt.Sprintf("orders:%d:%d:%s", page, perPage, statusFilter)
}

// OrderKey identifies a cached single order.
func OrderKey(orderID string) string {
	return "order:" + orderID
}

type cacheEntry struct {
	page      *Page
	order     *Order
	expiresAt time.Time
}

// CacheOptions configure a Cache. Zero TTLs fall back to the defaults.
type CacheOptions struct {
	TTL            time.Duration
	EmptyResultTTL time.Duration
	Now            func() time.Time
	Logger         *logger.Logger
	Metrics        *metrics.OrderMetrics
}

// Cache memoizes normalized upstream pages. Concurrent misses on the same key may
// both reach upstream; the last write wins.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	source     Source
	classifier *Classifier
	ttl        time.Duration
	emptyTTL   time.Duration
	now        func() time.Time
	logg       *logger.Logger
	metrics    *metrics.OrderMetrics
}

// NewCache builds a cache in front of source.
func NewCache(source Source, classifier *Classifier, opts CacheOptions) (*Cache, error) {
	if source == nil {
		return nil, fmt.Errorf("order source required")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.EmptyResultTTL <= 0 {
		opts.EmptyResultTTL = DefaultEmptyResultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		source:     source,
		classifier: classifier,
		ttl:        opts.TTL,
		emptyTTL:   opts.EmptyResultTTL,
		now:        opts.Now,
		logg:       opts.Logger,
		metrics:    opts.Metrics,
	}, nil
}

// FetchPage returns the page for (page, perPage, statusFilter), from memory when
// fresh. An upstream failure yields an empty degraded page that is cached for the
// shorter empty-result TTL; it is never returned as an error.
func (c *Cache) FetchPage(ctx context.Context, page, perPage int, statusFilter string) Page {
	key := PageKey(page, perPage, statusFilter)
	if entry, ok := c.lookup(key); ok && entry.page != nil {
		c.metrics.CacheHit(cacheKindPage)
		return copyPage(entry.page)
	}
	c.metrics.CacheMiss(cacheKindPage)

	raws, total, err := c.source.FetchOrdersPage(ctx, page, perPage, statusFilter)
	if err != nil {
		c.metrics.UpstreamFailure(cacheKindPage)
		c.warn(ctx, key, err)
		empty := &Page{Orders: []Order{}, Degraded: true}
		c.store(key, cacheEntry{page: empty, expiresAt: c.now().Add(c.emptyTTL)})
		return copyPage(empty)
	}

	orders := make([]Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, c.classifier.Normalize(raw))
	}
	result := &Page{
		Orders:     orders,
		TotalCount: total,
		TotalPages: pagination.TotalPages(total, perPage),
	}
	c.store(key, cacheEntry{page: result, expiresAt: c.now().Add(c.ttl)})
	return copyPage(result)
}

// FetchOrder returns one normalized order. Unlike pages, failures are returned to
// the caller and nothing is cached for them.
func (c *Cache) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	key := OrderKey(orderID)
	if entry, ok := c.lookup(key); ok && entry.order != nil {
		c.metrics.CacheHit(cacheKindOrder)
		order := *entry.order
		return &order, nil
	}
	c.metrics.CacheMiss(cacheKindOrder)

	raw, err := c.source.FetchOrderByID(ctx, orderID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
		c.metrics.UpstreamFailure(cacheKindOrder)
		c.warn(ctx, key, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order source unavailable")
	}

	order := c.classifier.Normalize(*raw)
	c.store(key, cacheEntry{order: &order, expiresAt: c.now().Add(c.ttl)})
	out := order
	return &out, nil
}

// Clear evicts a single key.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// ClearAll evicts every entry.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// CacheEntryStats describes one cached key.
type CacheEntryStats struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
	Degraded  bool      `json:"degraded"`
}

// CacheStats is a snapshot of the cache contents.
type CacheStats struct {
	Size    int               `json:"size"`
	Entries []CacheEntryStats `json:"entries"`
}

func (c *Cache) Stats() CacheStats {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{Size: len(c.entries), Entries: make([]CacheEntryStats, 0, len(c.entries))}
	for key, entry := range c.entries {
		stats.Entries = append(stats.Entries, CacheEntryStats{
			Key:       key,
			ExpiresAt: entry.expiresAt,
			Expired:   !now.Before(entry.expiresAt),
			Degraded:  entry.page != nil && entry.page.Degraded,
		})
	}
	slices.SortFunc(stats.Entries, func(a, b CacheEntryStats) int {
		return strings.Compare(a.Key, b.Key)
	})
	return stats
}

func (c *Cache) lookup(key string) (cacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expiresAt) {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Cache) store(key string, entry cacheEntry) {
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

func (c *Cache) warn(ctx context.Context, key string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
		"cache_key": key,
		"error":     err.Error(),
	}), "order source request failed")
}

func copyPage(p *Page) Page {
	out := *p
	out.Orders = slices.Clone(p.Orders)
	if out.Orders == nil {
		out.Orders = []Order{}
	}
	return out
}
