package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("report not found")

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, sessionID, name string, content []byte) error {
	key, err := objectKey(sessionID, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID, name string) ([]byte, error) {
	key, err := objectKey(sessionID, name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

// GetURL returns "" since memory reports are only served by the web handler.
func (s *MemoryStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}

func objectKey(sessionID, name string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	return sessionID + "/" + name, nil
}
