package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	sess := New(42)
	b := sess.NewBuild("Gaming rig")
	b.SetPart(KindCPU, "AMD Ryzen 5 5600X", 160)
	b.SetPart(KindRAM, "Kingston Fury 16GB", 55)
	sess.NewBuild("")

	if err := s.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != 42 || got.CurrentBuild != 2 || len(got.Builds) != 2 {
		t.Fatalf("got %+v", got)
	}

	gb := got.Build(1)
	if gb == nil {
		t.Fatal("build 1 missing")
	}
	if gb.Name != "Gaming rig" || gb.TotalPrice != 215 {
		t.Fatalf("build 1 = %+v", gb)
	}
	if p, ok := gb.Part(KindCPU); !ok || p.Price != 160 {
		t.Fatalf("cpu part = %+v ok=%v", p, ok)
	}
	if !gb.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("created at drifted: %v vs %v", gb.CreatedAt, b.CreatedAt)
	}

	// The pending-input tag is transient and must not come back from disk.
	if got.Pending.State != PendingNone {
		t.Fatalf("pending leaked through persistence: %+v", got.Pending)
	}
}

func TestSQLiteGetUnknownUser(t *testing.T) {
	s := newTestSQLite(t)
	if _, err := s.Get(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLitePutReplaces(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	sess := New(42)
	sess.NewBuild("first")
	if err := s.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	sess.NewBuild("second")
	if err := s.Put(ctx, sess); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Builds) != 2 || got.CurrentBuild != 2 {
		t.Fatalf("got %d builds current=%d", len(got.Builds), got.CurrentBuild)
	}
}
