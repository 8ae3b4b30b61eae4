package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type memoryLeases struct {
	values     map[string]string
	releaseErr error
}

func newMemoryLeases() *memoryLeases {
	return &memoryLeases{values: map[string]string{}}
}

func (m *memoryLeases) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryLeases) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	if m.releaseErr != nil {
		return false, m.releaseErr
	}
	if m.values[key] != expected {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	t.Setenv("STOREADMIN_WORKER_ID", "worker-a")
	store := newMemoryLeases()
	ctx := context.Background()

	first, err := NewRedisLock(store, "sa:lock:cron", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "sa:lock:cron", time.Minute)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(first.Token(), "worker-a:") {
		t.Fatalf("token should start with the worker id, got %q", first.Token())
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second acquire must fail while the lease is held")
	}

	if err := second.Release(ctx); err != nil {
		t.Fatalf("release without lease: %v", err)
	}
	if _, held := store.values["sa:lock:cron"]; !held {
		t.Fatal("a lock that never acquired must not drop the lease")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if first.Token() != "" {
		t.Fatal("token should clear after release")
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("acquire should succeed after release")
	}
}

func TestRedisLockStaleReleaseKeepsNewLease(t *testing.T) {
	store := newMemoryLeases()
	ctx := context.Background()
	stale, _ := NewRedisLock(store, "k", time.Minute)
	fresh, _ := NewRedisLock(store, "k", time.Minute)

	if ok, _ := stale.Acquire(ctx); !ok {
		t.Fatal("acquire")
	}
	// Simulate expiry followed by another worker taking the lease.
	delete(store.values, "k")
	if ok, _ := fresh.Acquire(ctx); !ok {
		t.Fatal("fresh acquire")
	}

	if err := stale.Release(ctx); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if store.values["k"] != fresh.Token() {
		t.Fatal("stale release removed the new lease")
	}
}

func TestRedisLockReleaseError(t *testing.T) {
	store := newMemoryLeases()
	lock, _ := NewRedisLock(store, "k", time.Minute)
	if ok, _ := lock.Acquire(context.Background()); !ok {
		t.Fatal("acquire")
	}
	store.releaseErr = errors.New("timeout")
	if err := lock.Release(context.Background()); err == nil {
		t.Fatal("expected release error")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Second); err == nil {
		t.Fatal("expected error without store")
	}
	if _, err := NewRedisLock(newMemoryLeases(), "", time.Second); err == nil {
		t.Fatal("expected error without key")
	}
}
