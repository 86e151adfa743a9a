package session

import (
	"context"
	"errors"
	"fmt"

	"bmcnav/internal/bmc"
	"bmcnav/internal/llm"
	"bmcnav/internal/logger"
)

// InputSource supplies user text for AwaitInput effects.
type InputSource interface {
	ReadInput(ctx context.Context, prompt string) (string, error)
}

// Observer is told about every message appended to a session's history, as
// soon as it exists. Status lines emitted during a model call arrive before
// the call returns.
type Observer func(sessionID string, m Message)

// Runner drives a Machine against a model client.
type Runner struct {
	machine  *Machine
	client   llm.Client
	log      *logger.Logger
	observer Observer
}

type RunnerOption func(*Runner)

func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

func WithLogger(log *logger.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

func NewRunner(machine *Machine, client llm.Client, opts ...RunnerOption) *Runner {
	r := &Runner{machine: machine, client: client, log: logger.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Runner) Machine() *Machine { return r.machine }

// Pending reports what s is waiting for.
func (r *Runner) Pending(s State) Effect { return r.machine.Pending(s) }

// Submit applies one line of user input.
func (r *Runner) Submit(s State, text string) State {
	next, _ := r.machine.Transition(s, InputEvent{Text: text})
	r.emitFrom(next, len(s.History))
	return next
}

// Step performs at most one model call. It returns the new state and what
// the session needs next; a state waiting for input or halted is returned
// unchanged.
func (r *Runner) Step(ctx context.Context, s State) (State, Effect, error) {
	call, ok := r.machine.Pending(s).(CallModel)
	if !ok {
		return s, r.machine.Pending(s), nil
	}
	if r.client == nil {
		return s, call, errors.New("session runner has no model client")
	}

	cur := s.Clone()
	ctx = llm.WithPhase(ctx, call.Phase)
	ctx = llm.WithStatusNotifier(ctx, llm.StatusFunc(func(_ context.Context, msg string) {
		m := Message{Kind: KindStatus, Body: msg, At: r.machine.now()}
		cur.History = append(cur.History, m)
		r.emit(cur.ID, m)
	}))

	log := r.log.With("session_id", s.ID, "stage", string(s.Stage), "phase", call.Phase)
	text, err := r.client.Generate(ctx, call.Prompt, llm.WithTemperature(call.Temperature))
	var ev Event
	if err != nil {
		log.Warn("model call failed", "error", err)
		ev = ModelErrorEvent{Phase: call.Phase, Err: err}
	} else {
		ev = ModelReplyEvent{Phase: call.Phase, Text: text}
	}

	next, effects := r.machine.Transition(cur, ev)
	r.emitFrom(next, len(cur.History))
	r.logTransition(log, s, next)
	return next, effects[0], nil
}

// Run drives s synchronously until it halts or input runs out.
func (r *Runner) Run(ctx context.Context, s State, in InputSource) (State, error) {
	r.emitFrom(s, 0)
	for {
		switch eff := r.machine.Pending(s).(type) {
		case Halt:
			return s, nil
		case AwaitInput:
			if in == nil {
				return s, errors.New("session runner has no input source")
			}
			text, err := in.ReadInput(ctx, eff.Prompt)
			if err != nil {
				return s, fmt.Errorf("read input: %w", err)
			}
			s = r.Submit(s, text)
		case CallModel:
			next, _, err := r.Step(ctx, s)
			if err != nil {
				return s, err
			}
			s = next
		}
	}
}

func (r *Runner) emitFrom(s State, from int) {
	if r.observer == nil || from >= len(s.History) {
		return
	}
	for _, m := range s.History[from:] {
		r.observer(s.ID, m)
	}
}

func (r *Runner) emit(id string, m Message) {
	if r.observer != nil {
		r.observer(id, m)
	}
}

func (r *Runner) logTransition(log *logger.Logger, prev, next State) {
	if prev.Stage == next.Stage {
		return
	}
	log.Info("session stage changed", "from", string(prev.Stage), "to", string(next.Stage))
	switch next.Stage {
	case StageDataGathering:
		if n := len(next.Plan); n != bmc.ExpectedPlanLength {
			log.Warn("question plan has unexpected length", "items", n, "expected", bmc.ExpectedPlanLength)
		}
	case StageFailed:
		log.Warn("session failed", "reason", next.Failure)
	}
}
