package index

import (
	"reflect"
	"testing"
	"time"
)

func TestStore_SetReplacesWholesale(t *testing.T) {
	store := NewStore(0)

	store.Set("root", []string{"root", "a", "b"})
	store.Set("root", []string{"root", "c"})

	if store.Has("root", "a") {
		t.Error("Expected old id to be gone after replace")
	}
	if !store.Has("root", "c") {
		t.Error("Expected new id to be present")
	}
	if !reflect.DeepEqual(store.IDs("root"), []string{"root", "c"}) {
		t.Errorf("Unexpected ids: %v", store.IDs("root"))
	}
}

func TestStore_DeduplicatesIDs(t *testing.T) {
	store := NewStore(0)
	store.Set("root", []string{"root", "a", "a", "b"})

	snap := store.Snapshot("root")
	if snap.Count != 3 {
		t.Errorf("Expected count 3, got %d", snap.Count)
	}
}

func TestStore_HasIndex(t *testing.T) {
	store := NewStore(0)

	if store.HasIndex("root") {
		t.Error("Expected no index before Set")
	}

	store.Set("root", nil)
	if store.HasIndex("root") {
		t.Error("Expected empty set not to count as an index")
	}

	store.Set("root", []string{"root"})
	if !store.HasIndex("root") {
		t.Error("Expected index after Set")
	}
	if store.HasIndex("other-root") {
		t.Error("Expected index to be keyed by root id")
	}

	store.Clear("root")
	if store.HasIndex("root") {
		t.Error("Expected no index after Clear")
	}
}

func TestStore_Snapshot(t *testing.T) {
	store := NewStore(0)

	if snap := store.Snapshot("root"); snap.Ready || snap.Count != 0 || !snap.UpdatedAt.IsZero() {
		t.Errorf("Expected empty snapshot, got %+v", snap)
	}

	before := time.Now()
	store.Set("root", []string{"root", "a"})
	snap := store.Snapshot("root")
	if !snap.Ready || snap.Count != 2 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
	if snap.UpdatedAt.Before(before) {
		t.Errorf("Expected UpdatedAt after %v, got %v", before, snap.UpdatedAt)
	}
}

func TestStore_TTL(t *testing.T) {
	store := NewStore(20 * time.Millisecond)
	store.Set("root", []string{"root"})

	if !store.HasIndex("root") {
		t.Fatal("Expected index right after Set")
	}

	time.Sleep(40 * time.Millisecond)
	if store.HasIndex("root") {
		t.Error("Expected index to expire after ttl")
	}
}

func TestStore_IDsReturnsCopy(t *testing.T) {
	store := NewStore(0)
	store.Set("root", []string{"root", "a"})

	ids := store.IDs("root")
	ids[0] = "mutated"

	if store.IDs("root")[0] != "root" {
		t.Error("Expected IDs to return a copy")
	}
}
