package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is a Store backed by a map. Records are copied on the way in
// and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = clone(rec)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	out := clone(&rec)
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	all := slices.Collect(maps.Values(s.records))
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]*Record, len(all))
	for i := range all {
		rec := clone(&all[i])
		out[i] = &rec
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func clone(rec *Record) Record {
	out := *rec
	out.Ops = maps.Clone(rec.Ops)
	out.Warnings = slices.Clone(rec.Warnings)
	return out
}

var _ Store = (*MemoryStore)(nil)
