package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	out   string
	err   error
	calls int
	temps []float32
}

func (s *stubClient) Name() string { return "stub" }
func (s *stubClient) Close() error { return nil }
func (s *stubClient) Generate(_ context.Context, _ string, opts ...CallOption) (string, error) {
	s.calls++
	if t, ok := TemperatureOf(opts...); ok {
		s.temps = append(s.temps, t)
	}
	return s.out, s.err
}

type recordingNotifier struct{ lines []string }

func (r *recordingNotifier) Status(_ context.Context, msg string) { r.lines = append(r.lines, msg) }

func TestWithStatusEmitsThinkingLine(t *testing.T) {
	n := &recordingNotifier{}
	cli := Wrap(&stubClient{out: "ok"}, WithStatus(n))

	_, err := cli.Generate(context.Background(), "p", WithTemperature(0.2))
	require.NoError(t, err)
	_, err = cli.Generate(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, []string{"AI přemýšlí s teplotou: 0.2...", "AI přemýšlí s výchozí teplotou..."}, n.lines)
}

func TestWithStatusPrefersContextNotifier(t *testing.T) {
	fallback := &recordingNotifier{}
	scoped := &recordingNotifier{}
	cli := Wrap(&stubClient{out: "ok"}, WithStatus(fallback))

	ctx := WithStatusNotifier(context.Background(), scoped)
	_, err := cli.Generate(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, fallback.lines)
	assert.Len(t, scoped.lines, 1)
}

func TestWithStatusReportsTransportFailure(t *testing.T) {
	n := &recordingNotifier{}
	cli := Wrap(&stubClient{err: errTransport(io.ErrUnexpectedEOF)}, WithStatus(n))

	_, err := cli.Generate(context.Background(), "p")
	require.Error(t, err)
	require.Len(t, n.lines, 2)
	assert.Contains(t, n.lines[1], "CHYBA při volání API")
}

func TestWrapOrderAndNoRetry(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Client) Client {
			return &orderClient{name: name, next: next, order: &order}
		}
	}
	inner := &stubClient{err: errIncomplete()}
	cli := Wrap(inner, mark("A"), mark("B"), WithLogging(nil))

	_, err := cli.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, []string{"A", "B"}, order)
	assert.Equal(t, 1, inner.calls)
}

type orderClient struct {
	name  string
	next  Client
	order *[]string
}

func (o *orderClient) Name() string { return o.next.Name() }
func (o *orderClient) Close() error { return o.next.Close() }
func (o *orderClient) Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	*o.order = append(*o.order, o.name)
	return o.next.Generate(ctx, prompt, opts...)
}

func TestRateLimitDisabledAndCanceled(t *testing.T) {
	inner := &stubClient{out: "ok"}
	cli := Wrap(inner, RateLimit(0, 0))
	out, err := cli.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	limited := Wrap(&stubClient{out: "ok"}, RateLimit(0.001, 1))
	defer limited.Close()
	_, err = limited.Generate(context.Background(), "p")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Generate(ctx, "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRateLimitFromEnvPrefixes(t *testing.T) {
	t.Setenv("LLM_RPS", "")
	t.Setenv("GEMINI_RPS", "1000")
	t.Setenv("GEMINI_BURST", "2")
	cli := Wrap(&stubClient{out: "ok"}, RateLimitFromEnv("LLM", "GEMINI"))
	defer cli.Close()
	rl, ok := cli.(*rateLimited)
	require.True(t, ok)
	require.NotNil(t, rl.rl)
	assert.Equal(t, 2, rl.rl.burst)
	assert.Equal(t, time.Millisecond, rl.rl.interval)
}

func TestCallBudgetAllowsBurstThenSpacesCalls(t *testing.T) {
	b := newCallBudget(10, 2)
	now := time.Now()
	assert.Zero(t, b.reserve(now))
	assert.Zero(t, b.reserve(now))
	assert.Equal(t, 100*time.Millisecond, b.reserve(now))

	// a refused call books nothing
	assert.Equal(t, 100*time.Millisecond, b.reserve(now))
	assert.Zero(t, b.reserve(now.Add(100*time.Millisecond)))

	// idle time refills at most burst calls
	later := now.Add(time.Hour)
	assert.Zero(t, b.reserve(later))
	assert.Zero(t, b.reserve(later))
	assert.Equal(t, 100*time.Millisecond, b.reserve(later))
}

func TestNilCallBudgetNeverBlocks(t *testing.T) {
	var b *callBudget
	assert.Nil(t, newCallBudget(0, 5))
	assert.NoError(t, b.Acquire(context.Background()))
}
