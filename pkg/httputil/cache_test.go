package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	type entry struct {
		Title   string `json:"title"`
		Version int64  `json:"version"`
	}

	if err := cache.Set("conv:abc", entry{Title: "trip", Version: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got entry
	ok, err := cache.Get("conv:abc", &got)
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if got.Title != "trip" || got.Version != 3 {
		t.Errorf("Get = %+v", got)
	}
}

func TestCacheMiss(t *testing.T) {
	cache, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	var v string
	ok, err := cache.Get("nope", &v)
	if ok || err != nil {
		t.Errorf("Get on missing key = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Nanosecond)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if err := cache.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	var v string
	ok, err := cache.Get("k", &v)
	if ok || !errors.Is(err, ErrExpired) {
		t.Errorf("Get on stale entry = (%v, %v), want (false, ErrExpired)", ok, err)
	}
}

func TestCacheNamespace(t *testing.T) {
	cache, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	if err := cache.Namespace("a:").Set("key", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var v int
	if ok, _ := cache.Namespace("b:").Get("key", &v); ok {
		t.Error("namespaced entries collided")
	}
	if ok, _ := cache.Namespace("a:").Get("key", &v); !ok || v != 1 {
		t.Errorf("Get in same namespace = (%v, %d)", ok, v)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New("bad request")
	})
	if err == nil || calls != 1 {
		t.Errorf("Retry = %v after %d calls, want 1 call", err, calls)
	}
}

func TestRetryRetriesTransientError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("boom")}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry = %v after %d calls, want nil after 3", err, calls)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Minute, func() error {
		return &RetryableError{Err: errors.New("boom")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}
