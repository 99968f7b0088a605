package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Minute)

	store.Set(ctx, "k", 42)
	got, ok := store.Get(ctx, "k")
	if !ok || got != 42 {
		t.Fatalf("unexpected get: %v %v", got, ok)
	}

	store.Delete(ctx, "k")
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestStore_GetOrLoadCachesValue(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "payload", nil
	}

	for i := 0; i < 3; i++ {
		got, err := store.GetOrLoad(ctx, "bootstrap", loader)
		if err != nil || got != "payload" {
			t.Fatalf("unexpected result: %v %v", got, err)
		}
	}

	if loads.Load() != 1 {
		t.Fatalf("expected one load, got %d", loads.Load())
	}
}

func TestStore_GetOrLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return nil, errors.New("feed down")
	}

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(ctx, "bootstrap", loader); err == nil {
			t.Fatalf("expected loader error")
		}
	}

	if loads.Load() != 2 {
		t.Fatalf("errors must not be cached, got %d loads", loads.Load())
	}
}
