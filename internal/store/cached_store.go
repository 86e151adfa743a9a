package store

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"bmcnav/internal/session"
)

// CachedStore is a read-through, write-through LRU in front of a remote store.
// Cached entries live at most ttl, so a session the origin has expired or
// another replica has changed is fetched again.
type CachedStore struct {
	origin Store
	cache  *expirable.LRU[string, session.State]
}

func NewCachedStore(origin Store, size int, ttl time.Duration) *CachedStore {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	return &CachedStore{origin: origin, cache: expirable.NewLRU[string, session.State](size, nil, ttl)}
}

func (s *CachedStore) Get(ctx context.Context, id string) (session.State, error) {
	id, err := normalizeID(id)
	if err != nil {
		return session.State{}, err
	}
	if st, ok := s.cache.Get(id); ok {
		return st.Clone(), nil
	}
	st, err := s.origin.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.cache.Remove(id)
		}
		return session.State{}, err
	}
	s.cache.Add(id, st.Clone())
	return st, nil
}

func (s *CachedStore) Put(ctx context.Context, st session.State) error {
	if err := s.origin.Put(ctx, st); err != nil {
		s.cache.Remove(st.ID)
		return err
	}
	s.cache.Add(st.ID, st.Clone())
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	return s.origin.Delete(ctx, id)
}

func (s *CachedStore) Close() error {
	s.cache.Purge()
	return s.origin.Close()
}
