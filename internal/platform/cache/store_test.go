package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, 0)
	errBoom := errors.New("boom")

	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	v, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("unexpected result: v=%d err=%v", v, err)
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store := NewStore[string](time.Minute, 0)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected hit before ttl")
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected miss at ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be removed")
	}
}

func TestStore_ZeroTTLKeepsEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store := NewStore[string](0, 0)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	now = now.Add(30 * 24 * time.Hour)
	if v, ok := store.Get(context.Background(), "k"); !ok || v != "v" {
		t.Fatalf("expected entry to persist, got %q ok=%v", v, ok)
	}
}

func TestStore_MaxEntriesBound(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, 2)
	ctx := context.Background()

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Set(ctx, "a", 3)
	if store.Len() != 2 {
		t.Fatalf("overwrite must not evict, len=%d", store.Len())
	}

	store.Set(ctx, "c", 4)
	if store.Len() != 2 {
		t.Fatalf("expected bound of 2 entries, got %d", store.Len())
	}
	if v, ok := store.Get(ctx, "c"); !ok || v != 4 {
		t.Fatalf("newest entry must be present")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
