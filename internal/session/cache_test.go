package session

import (
	"context"
	"testing"
)

func newTestCache(t *testing.T, size int) (*Cache, *SQLiteStore) {
	t.Helper()
	store := newTestSQLite(t)
	cache, err := NewCache(store, size)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return cache, store
}

func TestCacheCreatesOnFirstContact(t *testing.T) {
	cache, store := newTestCache(t, 4)
	ctx := context.Background()

	sess, err := cache.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess.UserID != 42 || len(sess.Builds) != 0 {
		t.Fatalf("got %+v", sess)
	}

	// The fresh session is persisted immediately.
	if _, err := store.Get(ctx, 42); err != nil {
		t.Fatalf("store get after first contact: %v", err)
	}
}

func TestCacheReturnsSameInstance(t *testing.T) {
	cache, _ := newTestCache(t, 4)
	ctx := context.Background()

	a, err := cache.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	a.Pending = Pending{State: PendingBuildName}

	b, err := cache.Get(ctx, 42)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if a != b {
		t.Fatal("cache returned a different instance")
	}
	if b.Pending.State != PendingBuildName {
		t.Fatal("in-memory mutation lost")
	}
}

func TestCacheFlushPersists(t *testing.T) {
	cache, store := newTestCache(t, 4)
	ctx := context.Background()

	sess, err := cache.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sess.NewBuild("Gaming rig")

	if !cache.Flush(ctx, 42) {
		t.Fatal("flush reported failure")
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if len(got.Builds) != 1 || got.Builds[0].Name != "Gaming rig" {
		t.Fatalf("persisted %+v", got.Builds)
	}
}

func TestCacheFlushUnknownUser(t *testing.T) {
	cache, _ := newTestCache(t, 4)
	if cache.Flush(context.Background(), 99) {
		t.Fatal("flush of uncached user must report false")
	}
}

func TestCacheFlushAll(t *testing.T) {
	cache, store := newTestCache(t, 4)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		sess, err := cache.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		sess.NewBuild("rig")
	}

	cache.FlushAll(ctx)

	for _, id := range []int64{1, 2, 3} {
		got, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("store get %d: %v", id, err)
		}
		if len(got.Builds) != 1 {
			t.Fatalf("user %d: %d builds persisted", id, len(got.Builds))
		}
	}
}
