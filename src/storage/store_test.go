package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, ttl)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

// exerciseStore runs the contract every Store implementation must meet
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "a", []byte("one")))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, s.Put(ctx, "a", []byte("two")))
	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"), "delete is idempotent")
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStoreConcurrentKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("session-%d", i)
			for j := 0; j < 20; j++ {
				_ = s.Put(ctx, key, []byte(fmt.Sprint(j)))
				_, _ = s.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	exerciseStore(t, store)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 10*time.Minute)

	require.NoError(t, store.Put(ctx, "abc", []byte("{}")))
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, 10*time.Minute, mr.TTL("session:abc"))

	mr.FastForward(4 * time.Minute)
	_, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, mr.TTL("session:abc"), "reads refresh the TTL")

	mr.FastForward(11 * time.Minute)
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDefaultTTL(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	require.NoError(t, store.Put(context.Background(), "abc", []byte("{}")))
	assert.Equal(t, DefaultTTL, mr.TTL("session:abc"))
}
