package snapshot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"kpideck/internal/report"
)

func TestSaveOverwritesSameDate(t *testing.T) {
	store := NewStore(t.TempDir())

	first := Snapshot{
		Date:      "2026-01-05",
		Timestamp: time.Now(),
		Coverage:  &report.CoverageResult{SuccessCount: 10},
	}
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.Coverage = &report.CoverageResult{SuccessCount: 20}
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	got, ok := store.Get("2026-01-05")
	if !ok {
		t.Fatal("snapshot not found")
	}
	if got.Coverage.SuccessCount != 20 {
		t.Errorf("SuccessCount = %d, want 20 (same-date save must overwrite)", got.Coverage.SuccessCount)
	}
	if len(store.List()) != 1 {
		t.Errorf("List() has %d entries, want 1", len(store.List()))
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewStore(dir)
	for _, date := range []string{"2026-01-05", "2026-01-07", "2026-01-06"} {
		if err := store.Save(Snapshot{Date: date}); err != nil {
			t.Fatal(err)
		}
	}

	reloaded := NewStore(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	list := reloaded.List()
	if len(list) != 3 {
		t.Fatalf("got %d snapshots after reload, want 3", len(list))
	}
	// Newest first.
	want := []string{"2026-01-07", "2026-01-06", "2026-01-05"}
	for i, date := range want {
		if list[i].Date != date {
			t.Errorf("list[%d].Date = %s, want %s", i, list[i].Date, date)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Load(); err != nil {
		t.Errorf("Load on missing file = %v, want nil", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(Snapshot{Date: "2026-01-05"}); err != nil {
		t.Fatal(err)
	}

	ok, err := store.Delete("2026-01-05")
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if _, found := store.Get("2026-01-05"); found {
		t.Error("snapshot still present after delete")
	}

	ok, err = store.Delete("2026-01-05")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("deleting a missing date reported true")
	}
}

func TestSaveRequiresDate(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(Snapshot{}); err == nil {
		t.Error("expected error for snapshot without date")
	}
}

func TestConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			date := fmt.Sprintf("2026-01-%02d", day+1)
			if err := store.Save(Snapshot{Date: date}); err != nil {
				t.Errorf("Save(%s): %v", date, err)
			}
		}(i)
	}
	wg.Wait()

	reloaded := NewStore(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if got := len(reloaded.List()); got != 20 {
		t.Errorf("reloaded %d snapshots, want 20", got)
	}
}
