package web

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bmcnav/internal/session"
)

const subscriberBuffer = 32

// Hub fans session messages out to live subscribers. Slow subscribers lose
// their oldest pending message rather than blocking the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan session.Message]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan session.Message]struct{})}
}

// Publish matches session.Observer.
func (h *Hub) Publish(sessionID string, m session.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[sessionID] {
		pushMessage(ch, m)
	}
}

// Subscribe streams messages for sessionID until ctx is canceled, then
// closes the channel.
func (h *Hub) Subscribe(ctx context.Context, sessionID string) (<-chan session.Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	ch := make(chan session.Message, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[chan session.Message]struct{})
		h.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, sessionID)
		}
		close(ch)
	}()
	return ch, nil
}

func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

func pushMessage(ch chan session.Message, m session.Message) {
	select {
	case ch <- m:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- m:
	default:
	}
}
