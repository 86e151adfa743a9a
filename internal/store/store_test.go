package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmcnav/internal/config"
	"bmcnav/internal/session"
)

func sampleState(userContext string) session.State {
	s := session.New()
	s.Stage = session.StageDataGathering
	s.UserContext = userContext
	s.Answers.Set("customer_segments", "Malé firmy")
	s.Answers.Set("channels", "Skipped")
	return s
}

func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, err := st.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	s := sampleState("SaaS")
	require.NoError(t, st.Put(ctx, s))

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.UserContext, got.UserContext)
	assert.Equal(t, s.Answers.Entries(), got.Answers.Entries())
	assert.Equal(t, len(s.History), len(got.History))

	s.UserContext = "changed"
	require.NoError(t, st.Put(ctx, s))
	got, err = st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.UserContext)

	require.NoError(t, st.Delete(ctx, s.ID))
	_, err = st.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Error(t, st.Put(ctx, session.State{}))
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore(8, time.Minute)
	defer st.Close()
	exerciseStore(t, st)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	st := NewMemoryStore(8, time.Minute)
	defer st.Close()
	ctx := context.Background()
	s := sampleState("SaaS")
	require.NoError(t, st.Put(ctx, s))

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	got.Answers.Set("customer_segments", "mutated")
	got.History = append(got.History, session.Message{Body: "x"})

	again, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	v, _ := again.Answers.Get("customer_segments")
	assert.Equal(t, "Malé firmy", v)
	assert.Len(t, again.History, len(s.History))
}

func TestMemoryStoreExpires(t *testing.T) {
	st := NewMemoryStore(8, 30*time.Millisecond)
	defer st.Close()
	ctx := context.Background()
	s := sampleState("SaaS")
	require.NoError(t, st.Put(ctx, s))
	time.Sleep(80 * time.Millisecond)
	_, err := st.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(filepath.Join(t.TempDir(), "sessions.json")))
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.json")
	ctx := context.Background()
	s := sampleState("persist me")
	require.NoError(t, NewFileStore(path).Put(ctx, s))

	got, err := NewFileStore(path).Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist me", got.UserContext)
	assert.Equal(t, session.StageDataGathering, got.Stage)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileStore(path).Get(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

type countingStore struct {
	Store
	gets int
}

func (c *countingStore) Get(ctx context.Context, id string) (session.State, error) {
	c.gets++
	return c.Store.Get(ctx, id)
}

func TestCachedStore(t *testing.T) {
	origin := &countingStore{Store: NewFileStore(filepath.Join(t.TempDir(), "s.json"))}
	exerciseStore(t, NewCachedStore(origin, 4, time.Minute))
}

func TestCachedStoreServesFromCache(t *testing.T) {
	origin := &countingStore{Store: NewFileStore(filepath.Join(t.TempDir(), "s.json"))}
	st := NewCachedStore(origin, 4, time.Minute)
	ctx := context.Background()
	s := sampleState("cached")
	require.NoError(t, st.Put(ctx, s))

	for i := 0; i < 3; i++ {
		_, err := st.Get(ctx, s.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, origin.gets)

	cold := NewCachedStore(origin, 4, time.Minute)
	_, err := cold.Get(ctx, s.ID)
	require.NoError(t, err)
	_, err = cold.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, origin.gets)
}

func TestCachedStoreEntriesExpire(t *testing.T) {
	origin := &countingStore{Store: NewFileStore(filepath.Join(t.TempDir(), "s.json"))}
	st := NewCachedStore(origin, 4, 30*time.Millisecond)
	defer st.Close()
	ctx := context.Background()
	s := sampleState("expiring")
	require.NoError(t, st.Put(ctx, s))

	_, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, origin.gets)

	// the origin dropped the session meanwhile
	require.NoError(t, origin.Store.Delete(ctx, s.ID))
	time.Sleep(80 * time.Millisecond)

	_, err = st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, origin.gets)
}

func TestNewFromConfigFallbacks(t *testing.T) {
	st, err := NewFromConfig(config.StoreConfig{FilePath: filepath.Join(t.TempDir(), "s.json")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, st)

	st, err = NewFromConfig(config.StoreConfig{CacheSize: 4, TTL: time.Minute}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)
	require.NoError(t, st.Close())
}
