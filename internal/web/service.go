package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"bmcnav/internal/logger"
	"bmcnav/internal/report"
	"bmcnav/internal/session"
	"bmcnav/internal/store"
)

// ErrNotAwaitingInput is returned when an answer arrives while the session
// is waiting for the model or has ended.
var ErrNotAwaitingInput = errors.New("session is not waiting for input")

// Service owns session lifecycles for the web surfaces. Requests touching
// the same session are serialised; different sessions only share the stores.
type Service struct {
	runner  *session.Runner
	store   store.Store
	reports report.Store
	log     *logger.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from the map once no request holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(runner *session.Runner, st store.Store, reports report.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		runner:  runner,
		store:   st,
		reports: reports,
		log:     log,
		locks:   make(map[string]*sessionLock),
	}
}

func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Start creates and persists a fresh session.
func (s *Service) Start(ctx context.Context) (session.State, error) {
	st := session.New()
	if err := s.store.Put(ctx, st); err != nil {
		return session.State{}, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("session started", "session_id", st.ID)
	return st, nil
}

// Open returns the stored session for id, or a new one when id is empty or
// unknown.
func (s *Service) Open(ctx context.Context, id string) (session.State, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.Start(ctx)
	}
	st, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return s.Start(ctx)
	}
	if err != nil {
		return session.State{}, fmt.Errorf("load session: %w", err)
	}
	return st, nil
}

func (s *Service) Get(ctx context.Context, id string) (session.State, error) {
	return s.store.Get(ctx, strings.TrimSpace(id))
}

// Pending reports what st waits for.
func (s *Service) Pending(st session.State) session.Effect {
	return s.runner.Pending(st)
}

// Answer applies one line of user input. Unknown ids fail before any lock
// is taken.
func (s *Service) Answer(ctx context.Context, id, text string) (session.State, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return session.State{}, err
	}
	unlock := s.lock(id)
	defer unlock()

	st, err := s.store.Get(ctx, id)
	if err != nil {
		return session.State{}, err
	}
	if _, ok := s.runner.Pending(st).(session.AwaitInput); !ok {
		return st, ErrNotAwaitingInput
	}
	next := s.runner.Submit(st, text)
	if err := s.store.Put(ctx, next); err != nil {
		return st, fmt.Errorf("save session: %w", err)
	}
	return next, nil
}

// Advance performs at most one model call for id and persists the result.
// A session that reaches FINISHED has its report archived. Cancelling ctx
// does not abort the call or the save; a dropped request leaves the result
// for the next one.
func (s *Service) Advance(ctx context.Context, id string) (session.State, session.Effect, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return session.State{}, nil, err
	}
	if _, ok := s.runner.Pending(st).(session.CallModel); !ok {
		return st, s.runner.Pending(st), nil
	}

	unlock := s.lock(id)
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	st, err = s.store.Get(ctx, id)
	if err != nil {
		return session.State{}, nil, err
	}
	if _, ok := s.runner.Pending(st).(session.CallModel); !ok {
		return st, s.runner.Pending(st), nil
	}
	next, eff, err := s.runner.Step(ctx, st)
	if err != nil {
		return st, eff, err
	}
	if err := s.store.Put(ctx, next); err != nil {
		return st, eff, fmt.Errorf("save session: %w", err)
	}
	if next.Stage == session.StageFinished && st.Stage != session.StageFinished {
		s.archive(ctx, next)
	}
	return next, eff, nil
}

// Restart drops id and starts over.
func (s *Service) Restart(ctx context.Context, id string) (session.State, error) {
	if id = strings.TrimSpace(id); id != "" {
		unlock := s.lock(id)
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warn("delete session failed", "session_id", id, "error", err)
		}
		unlock()
	}
	return s.Start(ctx)
}

func (s *Service) archive(ctx context.Context, st session.State) {
	if s.reports == nil {
		return
	}
	location, err := report.Archive(ctx, s.reports, st)
	if err != nil {
		s.log.Warn("report archive failed", "session_id", st.ID, "error", err)
		return
	}
	s.log.Info("report archived", "session_id", st.ID, "location", location)
}

// Report returns the archived report of a finished session and renders st
// afresh otherwise.
func (s *Service) Report(ctx context.Context, st session.State) []byte {
	if s.reports != nil && st.Stage == session.StageFinished {
		raw, err := s.reports.Get(ctx, st.ID, report.FileName)
		if err == nil {
			return raw
		}
		if !errors.Is(err, report.ErrNotFound) {
			s.log.Warn("load archived report failed", "session_id", st.ID, "error", err)
		}
	}
	return []byte(report.Build(st))
}
