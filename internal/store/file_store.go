package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"bmcnav/internal/session"
)

// FileStore keeps every session in one JSON file, loaded lazily and
// rewritten on each change.
type FileStore struct {
	path string

	loadOnce sync.Once
	loadErr  error
	mu       sync.RWMutex
	byID     map[string]session.State
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		byID: make(map[string]session.State),
	}
}

func (s *FileStore) ensureLoaded() error {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.loadErr = fmt.Errorf("read session file: %w", err)
			}
			return
		}
		var rows []session.State
		if err := json.Unmarshal(b, &rows); err != nil {
			s.loadErr = fmt.Errorf("decode session file: %w", err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			if id, err := normalizeID(row.ID); err == nil {
				s.byID[id] = row
			}
		}
	})
	return s.loadErr
}

// saveLocked writes the file; the caller holds mu.
func (s *FileStore) saveLocked() error {
	rows := make([]session.State, 0, len(s.byID))
	for _, st := range s.byID {
		rows = append(rows, st)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Get(_ context.Context, id string) (session.State, error) {
	if err := s.ensureLoaded(); err != nil {
		return session.State{}, err
	}
	id, err := normalizeID(id)
	if err != nil {
		return session.State{}, err
	}
	s.mu.RLock()
	st, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return session.State{}, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *FileStore) Put(_ context.Context, st session.State) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	id, err := normalizeID(st.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = st.Clone()
	return s.saveLocked()
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	return s.saveLocked()
}

func (s *FileStore) Close() error { return nil }
