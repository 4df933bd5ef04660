package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, source Source, clock *fakeClock) *Cache {
	t.Helper()
	cache, err := NewCache(source, NewClassifier(clock.Now, time.UTC), CacheOptions{Now: clock.Now, Logger: testLogger()})
	require.NoError(t, err)
	return cache
}

func TestCacheHitWithinTTLSkipsUpstream(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{
		pages: map[string][]RawOrder{
			PageKey(1, 2, "any"): {
				{ID: "1", CreatedAt: monday, ShippingStatus: "unpacked"},
				{ID: "2", CreatedAt: thursday, ShippingStatus: "fulfilled"},
			},
		},
		totals: map[string]int{PageKey(1, 2, "any"): 5},
	}
	cache := newTestCache(t, source, clock)

	first := cache.FetchPage(context.Background(), 1, 2, "any")
	clock.Advance(14 * time.Minute)
	second := cache.FetchPage(context.Background(), 1, 2, "any")

	assert.EqualValues(t, 1, source.pageCalls.Load())
	assert.Equal(t, 5, first.TotalCount)
	assert.Equal(t, 3, first.TotalPages)
	assert.False(t, first.Degraded)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{}
	cache := newTestCache(t, source, clock)

	cache.FetchPage(context.Background(), 1, 25, "any")
	clock.Advance(15 * time.Minute)
	cache.FetchPage(context.Background(), 1, 25, "any")

	assert.EqualValues(t, 2, source.pageCalls.Load())
}

func TestCacheKeysAreIndependent(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{}
	cache := newTestCache(t, source, clock)

	cache.FetchPage(context.Background(), 1, 25, "any")
	cache.FetchPage(context.Background(), 2, 25, "any")
	cache.FetchPage(context.Background(), 1, 50, "any")
	cache.FetchPage(context.Background(), 1, 25, "unpacked")

	assert.EqualValues(t, 4, source.pageCalls.Load())
}

func TestCacheUpstreamFailureCachesEmptyPageBriefly(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{pageErr: errors.New("connection reset")}
	cache := newTestCache(t, source, clock)

	page := cache.FetchPage(context.Background(), 1, 25, "any")
	assert.True(t, page.Degraded)
	assert.Empty(t, page.Orders)
	assert.NotNil(t, page.Orders)
	assert.Zero(t, page.TotalCount)
	assert.Zero(t, page.TotalPages)

	clock.Advance(4 * time.Minute)
	cache.FetchPage(context.Background(), 1, 25, "any")
	assert.EqualValues(t, 1, source.pageCalls.Load())

	source.pageErr = nil
	clock.Advance(time.Minute)
	page = cache.FetchPage(context.Background(), 1, 25, "any")
	assert.False(t, page.Degraded)
	assert.EqualValues(t, 2, source.pageCalls.Load())
}

func TestCacheReturnsCopies(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{pages: map[string][]RawOrder{PageKey(1, 25, "any"): {{ID: "1"}}}}
	cache := newTestCache(t, source, clock)

	page := cache.FetchPage(context.Background(), 1, 25, "any")
	page.Orders[0].ID = "mutated"

	again := cache.FetchPage(context.Background(), 1, 25, "any")
	assert.Equal(t, "1", again.Orders[0].ID)
}

func TestCacheClear(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{}
	cache := newTestCache(t, source, clock)
	ctx := context.Background()

	cache.FetchPage(ctx, 1, 25, "any")
	cache.FetchPage(ctx, 2, 25, "any")
	cache.Clear(PageKey(1, 25, "any"))
	cache.FetchPage(ctx, 1, 25, "any")
	cache.FetchPage(ctx, 2, 25, "any")
	assert.EqualValues(t, 3, source.pageCalls.Load())

	cache.ClearAll()
	assert.Zero(t, cache.Stats().Size)
	cache.FetchPage(ctx, 2, 25, "any")
	assert.EqualValues(t, 4, source.pageCalls.Load())
}

func TestCacheStats(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{}
	cache := newTestCache(t, source, clock)
	ctx := context.Background()

	cache.FetchPage(ctx, 2, 25, "any")
	source.pageErr = errors.New("down")
	cache.FetchPage(ctx, 1, 25, "any")
	clock.Advance(6 * time.Minute)

	stats := cache.Stats()
	require.Equal(t, 2, stats.Size)
	assert.Equal(t, PageKey(1, 25, "any"), stats.Entries[0].Key)
	assert.True(t, stats.Entries[0].Degraded)
	assert.True(t, stats.Entries[0].Expired)
	assert.Equal(t, PageKey(2, 25, "any"), stats.Entries[1].Key)
	assert.False(t, stats.Entries[1].Expired)
	assert.Equal(t, friday.Add(DefaultCacheTTL), stats.Entries[1].ExpiresAt)
}

func TestCacheFetchOrder(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{orders: map[string]RawOrder{
		"1001": {ID: "1001", CreatedAt: monday, ShippingStatus: "unpacked", Customer: &RawCustomer{Name: "Ana"}},
	}}
	cache := newTestCache(t, source, clock)

	order, err := cache.FetchOrder(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "Ana", order.CustomerName)
	assert.True(t, order.IsOverdue)

	_, err = cache.FetchOrder(context.Background(), "1001")
	require.NoError(t, err)
	assert.EqualValues(t, 1, source.orderCalls.Load())
}

func TestCacheFetchOrderErrors(t *testing.T) {
	clock := &fakeClock{now: friday}
	source := &stubSource{orderErr: pkgerrors.New(pkgerrors.CodeNotFound, "order 9 not found")}
	cache := newTestCache(t, source, clock)

	_, err := cache.FetchOrder(context.Background(), "9")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	source.orderErr = errors.New("timeout")
	_, err = cache.FetchOrder(context.Background(), "9")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	assert.Zero(t, cache.Stats().Size)
}

func TestNewCacheValidation(t *testing.T) {
	_, err := NewCache(nil, NewClassifier(nil, nil), CacheOptions{})
	require.Error(t, err)
	_, err = NewCache(&stubSource{}, nil, CacheOptions{})
	require.Error(t, err)
}
