package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, lockKeyPrefix+"test-item")
	locker := NewRedisLocker(client, 5*time.Second)

	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		maxSeen atomic.Int32
	)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "test-item")
			if err != nil {
				t.Errorf("Lock() unexpected error: %v", err)
				return
			}
			defer unlock()

			n := active.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if maxSeen.Load() != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen.Load())
	}
}

func TestRedisLocker_Timeout(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, lockKeyPrefix+"test-item")
	locker := NewRedisLocker(client, 5*time.Second)

	unlock, err := locker.Lock(ctx, "test-item")
	if err != nil {
		t.Fatalf("Lock() unexpected error: %v", err)
	}
	defer unlock()

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	if _, err := locker.Lock(waitCtx, "test-item"); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Lock() error = %v, want ErrLockTimeout", err)
	}
}

func TestRedisLocker_UnlockOnlyOwnToken(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	key := lockKeyPrefix + "test-item"
	client.Del(ctx, key)
	locker := NewRedisLocker(client, 5*time.Second)

	unlock, err := locker.Lock(ctx, "test-item")
	if err != nil {
		t.Fatalf("Lock() unexpected error: %v", err)
	}

	// Simulate expiry and takeover by another holder.
	client.Set(ctx, key, "someone-else", 5*time.Second)
	unlock()

	if got, _ := client.Get(ctx, key).Result(); got != "someone-else" {
		t.Errorf("lock value = %q, want someone-else", got)
	}
	client.Del(ctx, key)
}
