package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmcnav/internal/session"
)

func newTestRenderer(t *testing.T) (*Renderer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r, err := NewRenderer(&buf, WithStyle("notty"))
	require.NoError(t, err)
	return r, &buf
}

func TestWrapKeepsNewlinesAndWidth(t *testing.T) {
	long := strings.Repeat("slovo ", 40)
	out := Wrap("první\n\n"+long, 30)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "první", lines[0])
	assert.Equal(t, "", lines[1])
	for _, l := range lines {
		assert.LessOrEqual(t, len([]rune(l)), 30)
	}
	assert.Equal(t, "beze změny", Wrap("beze změny", 0))
}

func TestRenderKinds(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.Render(session.Message{Kind: session.KindAI, Title: "✅ Plán připraven", Body: "Zeptám se vás na 9 oblastí."})
	r.Render(session.Message{Kind: session.KindUser, Body: "Jsme malá pekárna"})
	r.Render(session.Message{Kind: session.KindStatus, Body: "AI přemýšlí s teplotou: 0.8..."})
	out := buf.String()
	assert.Contains(t, out, "Plán připraven")
	assert.Contains(t, out, "Zeptám se vás na 9 oblastí.")
	assert.Contains(t, out, labelUser)
	assert.Contains(t, out, "Jsme malá pekárna")
	assert.Contains(t, out, "AI přemýšlí s teplotou: 0.8...")
}

func TestRenderErrorMarkerUsesErrorBox(t *testing.T) {
	r, buf := newTestRenderer(t)
	r.Render(session.Message{Kind: session.KindOutput, Title: "Fáze 3", Body: "AI_ERROR: blocked: SAFETY"})
	out := buf.String()
	assert.Contains(t, out, "AI_ERROR: blocked: SAFETY")
	assert.NotContains(t, out, "--- Fáze 3 ---")
	// thick border
	assert.Contains(t, out, "┏")
}

func TestRenderOutputAsMarkdown(t *testing.T) {
	r, buf := newTestRenderer(t)
	r.Render(session.Message{Kind: session.KindOutput, Title: "Přehled návrhů inovací", Body: "1. **Partnerský program**\n2. Předplatné"})
	out := buf.String()
	assert.Contains(t, out, "--- Přehled návrhů inovací ---")
	assert.Contains(t, out, "Partnerský program")
	assert.Contains(t, out, "Předplatné")
}

func TestLineInput(t *testing.T) {
	r, buf := newTestRenderer(t)
	in := NewLineInput(strings.NewReader("první odpověď\r\nskip\n"), r)
	ctx := context.Background()

	got, err := in.ReadInput(ctx, "Kdo jsou vaši zákazníci?")
	require.NoError(t, err)
	assert.Equal(t, "první odpověď", got)
	assert.Contains(t, buf.String(), labelTask)
	assert.Contains(t, buf.String(), "Kdo jsou vaši zákazníci?")

	got, err = in.ReadInput(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "skip", got)

	_, err = in.ReadInput(ctx, "další")
	assert.True(t, errors.Is(err, io.EOF))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = in.ReadInput(cancelled, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObserverRendersRunnerMessages(t *testing.T) {
	r, buf := newTestRenderer(t)
	obs := r.Observer()
	obs("id", session.Message{Kind: session.KindError, Body: "něco selhalo"})
	assert.Contains(t, buf.String(), "něco selhalo")
	assert.Contains(t, buf.String(), labelError)
}
