package grouping

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store, err := NewStoreWithDB(db)
	if err != nil {
		t.Fatalf("NewStoreWithDB failed: %v", err)
	}
	return store
}

func TestHashSource_Deterministic(t *testing.T) {
	a := HashSource("Hurricane", "Hurricane Ian")
	b := HashSource("Hurricane", "Hurricane Ian")
	if a != b {
		t.Error("same inputs must hash identically")
	}
	if a == HashSource("Hurricane", "Hurricane Fiona") {
		t.Error("different names must hash differently")
	}
	if a == HashSource("Fire", "Hurricane Ian") {
		t.Error("different incident types must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestStore_GetMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)
	e, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Errorf("missing entry should be nil, got %+v", e)
	}
}

func TestStore_UpsertInsertsWhenAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	written, err := s.Upsert(ctx, Entry{
		RecordID:   "4673",
		SourceHash: HashSource("Hurricane", "Hurricane Ian"),
		GroupLabel: "Hurricane Ian",
		Confidence: 0.95,
		ModelID:    "gpt-4o-mini",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Error("first upsert must write")
	}

	got, err := s.Get(ctx, "4673")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.GroupLabel != "Hurricane Ian" || got.Confidence != 0.95 {
		t.Errorf("stored entry = %+v", got)
	}
}

func TestStore_UpsertSkipsUnchangedHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := Entry{
		RecordID:   "4673",
		SourceHash: HashSource("Hurricane", "Hurricane Ian"),
		GroupLabel: "Hurricane Ian",
	}
	if _, err := s.Upsert(ctx, entry); err != nil {
		t.Fatal(err)
	}

	// Same hash: the row must be left untouched even if the label differs.
	entry.GroupLabel = "Something Else"
	written, err := s.Upsert(ctx, entry)
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Error("unchanged source hash must not rewrite the row")
	}
	got, _ := s.Get(ctx, "4673")
	if got.GroupLabel != "Hurricane Ian" {
		t.Errorf("label = %q, want original preserved", got.GroupLabel)
	}
}

func TestStore_UpsertRewritesOnHashChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, Entry{
		RecordID:   "4673",
		SourceHash: HashSource("Hurricane", "Hurricane Ian"),
		GroupLabel: "Hurricane Ian",
	}); err != nil {
		t.Fatal(err)
	}

	// Upstream corrected the declaration name; the hash changes.
	written, err := s.Upsert(ctx, Entry{
		RecordID:   "4673",
		SourceHash: HashSource("Hurricane", "Hurricane Ian (Corrected)"),
		GroupLabel: "Hurricane Ian",
		Confidence: 0.99,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Error("changed source hash must rewrite the row")
	}
	got, _ := s.Get(ctx, "4673")
	if got.Confidence != 0.99 {
		t.Errorf("confidence = %v, want updated value", got.Confidence)
	}
}

func TestStore_GetFreshTreatsStaleAsMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	oldHash := HashSource("Hurricane", "Hurricane Ian")
	if _, err := s.Upsert(ctx, Entry{RecordID: "4673", SourceHash: oldHash, GroupLabel: "Hurricane Ian"}); err != nil {
		t.Fatal(err)
	}

	fresh, err := s.GetFresh(ctx, "4673", oldHash)
	if err != nil {
		t.Fatal(err)
	}
	if fresh == nil {
		t.Error("matching hash must hit")
	}

	stale, err := s.GetFresh(ctx, "4673", HashSource("Hurricane", "Renamed"))
	if err != nil {
		t.Fatal(err)
	}
	if stale != nil {
		t.Error("mismatched hash must be treated as a miss")
	}
}
