package session

import "testing"

func TestBuildTotalRecompute(t *testing.T) {
	b := &Build{}
	b.SetPart(KindCPU, "AMD Ryzen 5 5600X", 160)
	b.SetPart(KindRAM, "Kingston Fury 16GB", 55)
	if b.TotalPrice != 215 {
		t.Fatalf("total = %d, want 215", b.TotalPrice)
	}

	// Replacing a slot must not accumulate the old price.
	b.SetPart(KindCPU, "AMD Ryzen 7 5800X", 220)
	if b.TotalPrice != 275 {
		t.Fatalf("total after replace = %d, want 275", b.TotalPrice)
	}

	b.ClearPart(KindRAM)
	if b.TotalPrice != 220 {
		t.Fatalf("total after clear = %d, want 220", b.TotalPrice)
	}

	// Recompute is idempotent.
	b.RecomputeTotal()
	b.RecomputeTotal()
	if b.TotalPrice != 220 {
		t.Fatalf("total after double recompute = %d, want 220", b.TotalPrice)
	}
}

func TestBuildProgress(t *testing.T) {
	b := &Build{}
	if filled, total := b.Progress(); filled != 0 || total != 5 {
		t.Fatalf("empty progress = %d/%d", filled, total)
	}
	b.SetPart(KindGPU, "MSI RTX 4060", 300)
	b.SetPart(KindCPU, "Intel Core i5-12400F", 150)
	if filled, _ := b.Progress(); filled != 2 {
		t.Fatalf("filled = %d, want 2", filled)
	}
	if b.Complete() {
		t.Fatal("two slots must not be complete")
	}
	for _, k := range Kinds() {
		b.SetPart(k, "x", 1)
	}
	if !b.Complete() {
		t.Fatal("all slots filled must be complete")
	}
}

func TestNewBuildIDsAndDefaults(t *testing.T) {
	s := New(42)
	first := s.NewBuild("")
	if first.ID != 1 || first.Name != "My computer #1" {
		t.Fatalf("first build = %d %q", first.ID, first.Name)
	}
	second := s.NewBuild("Gaming rig")
	if second.ID != 2 || second.Name != "Gaming rig" {
		t.Fatalf("second build = %d %q", second.ID, second.Name)
	}
	if s.CurrentBuild != 2 {
		t.Fatalf("current = %d, want the newest build", s.CurrentBuild)
	}
}

func TestCurrentDefaultsToFirst(t *testing.T) {
	s := New(42)
	if s.Current() != nil {
		t.Fatal("empty session must have no current build")
	}
	s.NewBuild("a")
	s.NewBuild("b")
	s.CurrentBuild = 0
	if got := s.Current(); got == nil || got.ID != 1 {
		t.Fatalf("current = %+v, want the first build", got)
	}
	if s.CurrentBuild != 1 {
		t.Fatalf("selection not recorded: %d", s.CurrentBuild)
	}
}
