package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs", "selex-sim.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func saveTestRun(t *testing.T, store *Store, id string, started time.Time, warnings int) string {
	t.Helper()
	stored, err := store.Save(context.Background(), &Run{
		ID:              id,
		StartedAt:       started,
		Assay:           "aptamer directed evolution pt 1",
		SpecYAML:        "name: test\n",
		Metrics:         []byte(`{"commands_executed":3}`),
		Journal:         []byte(`[]`),
		Warnings:        warnings,
		VirtualDuration: 90 * time.Minute,
	})
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	return stored
}

func TestStore_SaveAndGet_RoundTrips(t *testing.T) {
	// GIVEN a saved run without an explicit ID
	store := openTestStore(t)
	id := saveTestRun(t, store, "", time.Time{}, 4)
	if id == "" {
		t.Fatal("save should assign an ID")
	}

	// WHEN the run is fetched back
	run, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// THEN every stored field survives
	if run.Assay != "aptamer directed evolution pt 1" || run.Warnings != 4 {
		t.Errorf("fields lost: assay=%q warnings=%d", run.Assay, run.Warnings)
	}
	if run.VirtualDuration != 90*time.Minute {
		t.Errorf("virtual duration: got %s", run.VirtualDuration)
	}
	if string(run.Journal) != "[]" || !strings.Contains(string(run.Metrics), "commands_executed") {
		t.Errorf("payloads lost: journal=%q metrics=%q", run.Journal, run.Metrics)
	}
	if run.StartedAt.IsZero() {
		t.Error("save should assign a start time")
	}
}

func TestStore_Get_ByUniquePrefix(t *testing.T) {
	store := openTestStore(t)
	saveTestRun(t, store, "aaaa1111", time.Now().UTC(), 0)
	saveTestRun(t, store, "bbbb2222", time.Now().UTC(), 0)

	run, err := store.Get(context.Background(), "aaaa")
	if err != nil {
		t.Fatalf("get by prefix: %v", err)
	}
	if run.ID != "aaaa1111" {
		t.Errorf("got run %q", run.ID)
	}
}

func TestStore_Get_AmbiguousPrefix(t *testing.T) {
	store := openTestStore(t)
	saveTestRun(t, store, "cafe0001", time.Now().UTC(), 0)
	saveTestRun(t, store, "cafe0002", time.Now().UTC(), 0)

	_, err := store.Get(context.Background(), "cafe")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List_NewestFirst(t *testing.T) {
	// GIVEN three runs saved out of chronological order
	store := openTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	saveTestRun(t, store, "middle", base.Add(time.Hour), 1)
	saveTestRun(t, store, "oldest", base, 0)
	saveTestRun(t, store, "newest", base.Add(2*time.Hour), 2)

	// WHEN the store is listed
	sums, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// THEN summaries come back newest first
	if len(sums) != 3 {
		t.Fatalf("got %d summaries, want 3", len(sums))
	}
	for i, want := range []string{"newest", "middle", "oldest"} {
		if sums[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, sums[i].ID, want)
		}
	}
	if sums[0].Warnings != 2 || !sums[0].StartedAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("summary fields lost: %+v", sums[0])
	}
}

func TestStore_Prune_KeepsNewest(t *testing.T) {
	// GIVEN five stored runs
	store := openTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		saveTestRun(t, store, "", base.Add(time.Duration(i)*time.Minute), 0)
	}

	// WHEN all but the newest two are pruned
	removed, err := store.Prune(context.Background(), 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}

	// THEN three rows go and the newest two remain
	if removed != 3 {
		t.Errorf("removed: got %d, want 3", removed)
	}
	sums, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d summaries, want 2", len(sums))
	}
	if !sums[0].StartedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("newest run pruned: %+v", sums[0])
	}
}

func TestStore_Save_DuplicateID(t *testing.T) {
	store := openTestStore(t)
	saveTestRun(t, store, "dup", time.Now().UTC(), 0)
	_, err := store.Save(context.Background(), &Run{
		ID: "dup", Assay: "x", SpecYAML: "", Metrics: []byte(`{}`), Journal: []byte(`[]`),
	})
	if err == nil {
		t.Error("duplicate primary key should fail")
	}
}
