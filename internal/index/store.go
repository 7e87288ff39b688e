package index

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Snapshot describes the state of the descendant index for one root folder
type Snapshot struct {
	Ready     bool      `json:"ready"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type entry struct {
	ids       map[string]struct{}
	order     []string
	updatedAt time.Time
}

// Store is an in-process cache of descendant id sets keyed by root folder id
type Store struct {
	db *cache.Cache
}

// NewStore builds an index store. A ttl of zero keeps sets until they are replaced.
func NewStore(ttl time.Duration) *Store {
	expiration := cache.NoExpiration
	cleanup := time.Duration(-1)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl
	}
	return &Store{db: cache.New(expiration, cleanup)}
}

// Set replaces the id set for rootID wholesale
func (s *Store) Set(rootID string, ids []string) {
	e := &entry{
		ids:       make(map[string]struct{}, len(ids)),
		order:     make([]string, 0, len(ids)),
		updatedAt: time.Now(),
	}
	for _, id := range ids {
		if _, ok := e.ids[id]; ok {
			continue
		}
		e.ids[id] = struct{}{}
		e.order = append(e.order, id)
	}
	s.db.Set(rootID, e, cache.DefaultExpiration)
}

func (s *Store) get(rootID string) *entry {
	if x, found := s.db.Get(rootID); found {
		return x.(*entry)
	}
	return nil
}

// Has reports whether id is in the set for rootID
func (s *Store) Has(rootID, id string) bool {
	e := s.get(rootID)
	if e == nil {
		return false
	}
	_, ok := e.ids[id]
	return ok
}

// HasIndex reports whether a non-empty, unexpired set exists for rootID
func (s *Store) HasIndex(rootID string) bool {
	e := s.get(rootID)
	return e != nil && len(e.ids) > 0
}

// IDs returns the ids for rootID in crawl order
func (s *Store) IDs(rootID string) []string {
	e := s.get(rootID)
	if e == nil {
		return nil
	}
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Snapshot returns the size and age of the set for rootID
func (s *Store) Snapshot(rootID string) Snapshot {
	e := s.get(rootID)
	if e == nil || len(e.ids) == 0 {
		return Snapshot{}
	}
	return Snapshot{Ready: true, Count: len(e.ids), UpdatedAt: e.updatedAt}
}

// Clear drops the set for rootID
func (s *Store) Clear(rootID string) {
	s.db.Delete(rootID)
}
