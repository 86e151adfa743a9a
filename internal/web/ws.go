package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"bmcnav/internal/store"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamQueue      = 32
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// streamRequest is a client frame: "ping" or "history".
type streamRequest struct {
	Type string `json:"type"`
}

// streamFrame is a server frame. "snapshot" carries the whole stored
// session, "message" one history entry appended after it.
type streamFrame struct {
	Type      string       `json:"type"`
	SessionID string       `json:"sessionId,omitempty"`
	Session   *SessionView `json:"session,omitempty"`
	Kind      string       `json:"kind,omitempty"`
	Title     string       `json:"title,omitempty"`
	Body      string       `json:"body,omitempty"`
	Code      string       `json:"code,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// sessionStream is one websocket client following one session.
type sessionStream struct {
	id   string
	conn *websocket.Conn
	svc  *Service
	out  chan streamFrame
}

// HandleSessionWS follows one session: the stored history is replayed as a
// snapshot, then every message the runner appends is forwarded live.
func (h *Handler) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := &sessionStream{id: id, conn: conn, svc: h.svc, out: make(chan streamFrame, streamQueue)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := conn.SetReadDeadline(time.Now().Add(streamPongWait)); err != nil {
		h.log.Warn("session stream read deadline failed", "session_id", id, "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	// subscribe before loading so nothing appended in between is lost
	live, err := h.hub.Subscribe(ctx, id)
	if err != nil {
		s.send(streamFrame{Type: "error", Code: "invalid_argument", Message: err.Error()})
		return
	}
	s.send(streamFrame{Type: "subscribed", SessionID: id})
	s.replay(ctx)

	go func() {
		for m := range live {
			s.send(streamFrame{Type: "message", SessionID: id, Kind: string(m.Kind), Title: m.Title, Body: m.Body})
		}
	}()
	s.readLoop(ctx)
}

func (s *sessionStream) readLoop(ctx context.Context) {
	for {
		var req streamRequest
		if err := s.conn.ReadJSON(&req); err != nil {
			return
		}
		switch strings.ToLower(strings.TrimSpace(req.Type)) {
		case "ping":
			s.send(streamFrame{Type: "pong"})
		case "history":
			s.replay(ctx)
		case "":
			s.send(streamFrame{Type: "error", Code: "invalid_argument", Message: "type is required"})
		default:
			s.send(streamFrame{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + req.Type})
		}
	}
}

// replay sends the stored session. An id with no stored session yet gets
// nothing; its messages arrive live once it exists.
func (s *sessionStream) replay(ctx context.Context) {
	st, err := s.svc.Get(ctx, s.id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return
	case err != nil:
		s.send(streamFrame{Type: "error", Code: "unavailable", Message: err.Error()})
		return
	}
	s.send(streamFrame{Type: "snapshot", SessionID: s.id, Session: newSessionView(st, s.svc.Pending(st))})
}

func (s *sessionStream) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()
	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case f := <-s.out:
			if err = s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err == nil {
				err = s.conn.WriteJSON(f)
			}
		case <-ticker.C:
			if err = s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err == nil {
				err = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
		if err != nil {
			return
		}
	}
}

// send queues f, dropping the oldest queued frame when the client lags.
func (s *sessionStream) send(f streamFrame) {
	for {
		select {
		case s.out <- f:
			return
		default:
		}
		select {
		case <-s.out:
		default:
		}
	}
}
