package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"bmcnav/internal/session"
)

const (
	defaultMemorySize = 1024
	defaultMemoryTTL  = 24 * time.Hour
)

// MemoryStore keeps sessions in a bounded LRU; entries expire after ttl.
type MemoryStore struct {
	cache *expirable.LRU[string, session.State]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	return &MemoryStore{cache: expirable.NewLRU[string, session.State](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (session.State, error) {
	id, err := normalizeID(id)
	if err != nil {
		return session.State{}, err
	}
	st, ok := s.cache.Get(id)
	if !ok {
		return session.State{}, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, st session.State) error {
	id, err := normalizeID(st.ID)
	if err != nil {
		return err
	}
	s.cache.Add(id, st.Clone())
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	s.cache.Remove(id)
	return nil
}

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
