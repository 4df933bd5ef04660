package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	delErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryStore) DeleteIfEquals(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return false, m.delErr
	}
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newMemoryStore()
	first, err := NewRedisLock(store, "od:lock:orders_refresh", 0)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "od:lock:orders_refresh", time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, defaultLockTTL, store.ttls["od:lock:orders_refresh"])

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// a lock that was never acquired must not delete the owner's key
	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.values, "od:lock:orders_refresh")

	require.NoError(t, first.Release(ctx))
	assert.NotContains(t, store.values, "od:lock:orders_refresh")

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseAfterExpiry(t *testing.T) {
	store := newMemoryStore()
	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// expired and taken over by another replica
	store.values["k"] = "someone-else"
	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.values["k"])

	delete(store.values, "k")
	require.NoError(t, lock.Release(ctx))
}

func TestRedisLockReleaseStoreError(t *testing.T) {
	store := newMemoryStore()
	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)
	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	store.delErr = errors.New("conn refused")
	require.Error(t, lock.Release(context.Background()))
}

func TestNewRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newMemoryStore(), "", time.Minute)
	require.Error(t, err)
}
