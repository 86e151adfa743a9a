package llm

import (
	"context"
)

// Client generates free text for a prompt. Failures are returned as *Error.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error)
	Close() error
}

// Call phases, used for logging, status lines and the fake client.
const (
	PhasePlanner    = "planner"
	PhaseAnalysis   = "analysis"
	PhaseIdeaList   = "idea_list"
	PhaseIdeaDetail = "idea_detail"
)

// CallOption tweaks a single Generate call.
type CallOption func(*callOptions)

type callOptions struct {
	temperature *float32
}

// WithTemperature overrides the baseline temperature for one call.
func WithTemperature(t float32) CallOption {
	return func(o *callOptions) {
		v := t
		o.temperature = &v
	}
}

func applyOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// TemperatureOf reports the temperature override carried by opts, if any.
func TemperatureOf(opts ...CallOption) (float32, bool) {
	o := applyOptions(opts)
	if o.temperature == nil {
		return 0, false
	}
	return *o.temperature, true
}

type ctxKeyPhase struct{}

// WithPhase tags ctx with the call phase.
func WithPhase(ctx context.Context, phase string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if ctx != nil {
		if v := ctx.Value(ctxKeyPhase{}); v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return "unknown"
}
