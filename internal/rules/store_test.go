package rules

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testDefaults() Defaults {
	return Defaults{Enabled: true, MinLevel: 0, MaxAttempts: 0}
}

func TestGetUnseenGroupReturnsDefaults(t *testing.T) {
	store := NewStore(NewFilePersister(t.TempDir()), Defaults{Enabled: true, MinLevel: 5, MaxAttempts: 3})

	cfg := store.Get("g1")
	if !cfg.Enabled {
		t.Error("unseen group not enabled by default switch")
	}
	if cfg.MinLevel != 5 || cfg.MaxAttempts != 3 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.AcceptKeywords) != 0 || len(cfg.RejectKeywords) != 0 || len(cfg.BlockedUsers) != 0 {
		t.Errorf("unseen group has non-empty lists: %+v", cfg)
	}
}

func TestGetDoesNotPersist(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir)
	store := NewStore(p, testDefaults())

	store.Get("g1")

	if _, err := os.Stat(p.Path()); !os.IsNotExist(err) {
		t.Error("Get materialized config on disk")
	}
}

func TestEnsureGroupPersistsOnce(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir)
	store := NewStore(p, testDefaults())

	store.EnsureGroup("g1")
	store.EnsureGroup("g1")

	reloaded := NewStore(NewFilePersister(dir), testDefaults())
	if got := reloaded.Groups(); len(got) != 1 || got[0] != "g1" {
		t.Errorf("reloaded groups = %v, want [g1]", got)
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(NewFilePersister(dir), testDefaults())

	store.SetEnabled("g1", true)
	store.SetAcceptKeywords("g1", []string{"friend", "invite"})
	store.SetRejectKeywords("g1", []string{"spam"})
	store.SetMinLevel("g1", 10)
	store.SetMaxAttempts("g1", 2)
	store.SetBlockedUsers("g1", []string{"u9"})

	want := store.Get("g1")
	reloaded := NewStore(NewFilePersister(dir), testDefaults())
	got := reloaded.Get("g1")

	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestAddBlockedUserIsIdempotent(t *testing.T) {
	store := NewStore(NewFilePersister(t.TempDir()), testDefaults())

	if !store.AddBlockedUser("g1", "u1") {
		t.Error("first insert reported no-op")
	}
	if store.AddBlockedUser("g1", "u1") {
		t.Error("second insert reported a change")
	}

	cfg := store.Get("g1")
	if len(cfg.BlockedUsers) != 1 {
		t.Errorf("blocked users = %v, want exactly one entry", cfg.BlockedUsers)
	}
}

func TestRemoveBlockedUser(t *testing.T) {
	store := NewStore(NewFilePersister(t.TempDir()), testDefaults())
	store.SetBlockedUsers("g1", []string{"u1", "u2"})

	if !store.RemoveBlockedUser("g1", "u1") {
		t.Error("removal of present user reported no-op")
	}
	if store.RemoveBlockedUser("g1", "u1") {
		t.Error("removal of absent user reported a change")
	}
	if got := store.Get("g1").BlockedUsers; !reflect.DeepEqual(got, []string{"u2"}) {
		t.Errorf("blocked users after removal = %v, want [u2]", got)
	}
}

func TestRemoveGroup(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(NewFilePersister(dir), testDefaults())
	store.SetMinLevel("g1", 10)

	store.Remove("g1")

	reloaded := NewStore(NewFilePersister(dir), testDefaults())
	if got := reloaded.Get("g1").MinLevel; got != 0 {
		t.Errorf("removed group still has MinLevel=%d", got)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir)
	if err := os.WriteFile(p.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(p, testDefaults())
	if got := store.Groups(); len(got) != 0 {
		t.Errorf("store loaded groups from corrupt file: %v", got)
	}
}

func TestSaveFailureKeepsInMemoryUpdate(t *testing.T) {
	// Point the persister at a path whose parent cannot be created.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(NewFilePersister(filepath.Join(blocker, "nested")), testDefaults())
	store.SetMinLevel("g1", 7)

	if got := store.Get("g1").MinLevel; got != 7 {
		t.Errorf("in-memory update lost after save failure: MinLevel=%d", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore(NewFilePersister(t.TempDir()), testDefaults())
	store.SetBlockedUsers("g1", []string{"u1"})

	cfg := store.Get("g1")
	cfg.BlockedUsers[0] = "mutated"

	if got := store.Get("g1").BlockedUsers[0]; got != "u1" {
		t.Errorf("caller mutation leaked into store: %q", got)
	}
}

func TestSchemaVersionInFileName(t *testing.T) {
	p := NewFilePersister("/data")
	if filepath.Base(p.Path()) != "rules_v2.json" {
		t.Errorf("unexpected rules file name %q", p.Path())
	}
}
