package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"bmcnav/internal/logger"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (status lines, logging, rate limiting).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			out = mws[i](out)
		}
	}
	return out
}

// -------- Status notifications --------

// StatusNotifier receives human-readable progress lines.
type StatusNotifier interface {
	Status(ctx context.Context, message string)
}

// StatusFunc adapts a function to StatusNotifier.
type StatusFunc func(ctx context.Context, message string)

func (f StatusFunc) Status(ctx context.Context, message string) { f(ctx, message) }

type ctxKeyStatus struct{}

// WithStatusNotifier attaches a per-request notifier; it takes precedence
// over the notifier given to WithStatus.
func WithStatusNotifier(ctx context.Context, n StatusNotifier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyStatus{}, n)
}

func statusNotifierFrom(ctx context.Context) StatusNotifier {
	if ctx == nil {
		return nil
	}
	if v := ctx.Value(ctxKeyStatus{}); v != nil {
		if n, ok := v.(StatusNotifier); ok {
			return n
		}
	}
	return nil
}

// ThinkingMessage is the status line shown before a model call.
func ThinkingMessage(opts ...CallOption) string {
	if t, ok := TemperatureOf(opts...); ok {
		return fmt.Sprintf("AI přemýšlí s teplotou: %.1f...", t)
	}
	return "AI přemýšlí s výchozí teplotou..."
}

// WithStatus emits a "thinking" line before every call and a failure line
// after transport errors.
func WithStatus(fallback StatusNotifier) Middleware {
	return func(next Client) Client {
		return &statusing{next: next, fallback: fallback}
	}
}

type statusing struct {
	next     Client
	fallback StatusNotifier
}

func (s *statusing) Name() string { return s.next.Name() }
func (s *statusing) Close() error { return s.next.Close() }

func (s *statusing) Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	n := statusNotifierFrom(ctx)
	if n == nil {
		n = s.fallback
	}
	if n != nil {
		n.Status(ctx, ThinkingMessage(opts...))
	}
	out, err := s.next.Generate(ctx, prompt, opts...)
	if err != nil && n != nil {
		if e := AsError(err); e.Kind == KindTransport && e.Err != nil {
			n.Status(ctx, "CHYBA při volání API: "+e.Err.Error())
		}
	}
	return out, err
}

// -------- Logging --------

// WithLogging logs phase, prompt size, duration and errors.
func WithLogging(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Nop()
	}
	return func(next Client) Client {
		return &logging{next: next, log: log}
	}
}

type logging struct {
	next Client
	log  *logger.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	phase := PhaseFrom(ctx)
	start := time.Now()
	kv := []interface{}{"phase", phase, "model", l.next.Name(), "prompt_bytes", len(prompt)}
	if t, ok := TemperatureOf(opts...); ok {
		kv = append(kv, "temperature", t)
	}
	l.log.Debug("LLM request", kv...)
	out, err := l.next.Generate(ctx, prompt, opts...)
	if err != nil {
		l.log.Warn("LLM error", "phase", phase, "duration", time.Since(start), "error", err)
		return out, err
	}
	l.log.Info("LLM response", "phase", phase, "duration", time.Since(start), "response_bytes", len(out))
	return out, nil
}

// -------- Rate limiting --------

// RateLimit limits request rate. If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		return &rateLimited{next: next, rl: newCallBudget(rps, burst)}
	}
}

// RateLimitFromEnv reads RPS/BURST from environment variables with the
// given prefixes in priority order. For example, ("LLM","GEMINI")
// checks LLM_RPS/LLM_BURST first, then GEMINI_RPS/GEMINI_BURST.
func RateLimitFromEnv(prefixes ...string) Middleware {
	find := func(suffix string) string {
		for _, p := range prefixes {
			if p == "" {
				continue
			}
			if v := os.Getenv(p + suffix); v != "" {
				return v
			}
		}
		return ""
	}
	rps, _ := strconv.ParseFloat(find("_RPS"), 64)
	burst, _ := strconv.Atoi(find("_BURST"))
	return RateLimit(rps, burst)
}

type rateLimited struct {
	next Client
	rl   *callBudget
}

func (c *rateLimited) Name() string { return c.next.Name() }

func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", errTransport(err)
	}
	return c.next.Generate(ctx, prompt, opts...)
}
