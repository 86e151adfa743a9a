package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bmcnav/internal/session"
)

const redisKeyPrefix = "bmcnav:session:"

// RedisStore keeps each session as a JSON value that expires after ttl.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisStoreWithClient(rdb, ttl), nil
}

func newRedisStoreWithClient(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (session.State, error) {
	id, err := normalizeID(id)
	if err != nil {
		return session.State{}, err
	}
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return session.State{}, ErrNotFound
	}
	if err != nil {
		return session.State{}, err
	}
	var st session.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return session.State{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return st, nil
}

func (s *RedisStore) Put(ctx context.Context, st session.State) error {
	id, err := normalizeID(st.ID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	return s.rdb.Set(ctx, redisKeyPrefix+id, raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	return s.rdb.Del(ctx, redisKeyPrefix+id).Err()
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
