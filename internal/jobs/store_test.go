package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

func newTestFileStore(t *testing.T, ttl time.Duration) (*FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "jobs")
	store, err := NewFileStore(dir, ttl, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store, dir
}

func TestFileStoreSaveAndGet(t *testing.T) {
	store, dir := newTestFileStore(t, time.Hour)

	rec := NewRecord(testJob("job-42"))
	rec.State = StateRunning
	rec.FindingsCount = 3

	if err := store.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get("job-42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.JobID != "job-42" || got.State != StateRunning || got.FindingsCount != 3 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "job-42.json" {
		t.Fatalf("unexpected store contents: %v", entries)
	}

	// a second save replaces the snapshot
	rec.State = StateDone
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, _ = store.Get("job-42")
	if got.State != StateDone {
		t.Fatalf("snapshot not replaced: %+v", got)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	store, _ := newTestFileStore(t, time.Hour)

	if _, err := store.Get("nope"); err == nil {
		t.Fatalf("expected error for unknown job")
	}
}

func TestFileStoreSweep(t *testing.T) {
	store, dir := newTestFileStore(t, time.Hour)

	old := NewRecord(testJob("job-old"))
	fresh := NewRecord(testJob("job-fresh"))
	if err := store.Save(old); err != nil {
		t.Fatalf("Save old: %v", err)
	}
	if err := store.Save(fresh); err != nil {
		t.Fatalf("Save fresh: %v", err)
	}

	expired := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "job-old.json"), expired, expired); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	removed, err := store.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed record, got %d", removed)
	}

	if _, err := store.Get("job-old"); err == nil {
		t.Fatalf("expired record must be gone")
	}
	if _, err := store.Get("job-fresh"); err != nil {
		t.Fatalf("fresh record must survive: %v", err)
	}
}

func TestFileStoreSweepIgnoresForeignFiles(t *testing.T) {
	store, dir := newTestFileStore(t, time.Hour)

	foreign := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(foreign, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}
	expired := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(foreign, expired, expired); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if _, err := store.Sweep(); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("sweep must only touch job records: %v", err)
	}
}
