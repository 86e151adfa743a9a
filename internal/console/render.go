// Package console renders a session in a terminal and reads answers from a
// line-oriented reader.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/go-wordwrap"

	"bmcnav/internal/llm"
	"bmcnav/internal/session"
)

// Width is the column bound for every wrapped line.
const Width = 110

var (
	aiStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 1)
	userStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("42")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("196")).Foreground(lipgloss.Color("196")).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("214")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	outputStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
)

const (
	labelAI    = "🤖 BMC Navigátor"
	labelUser  = "👤 Vy"
	labelError = "❌ Chyba"
	labelTask  = "✍️ Úkol pro vás"
)

// Renderer writes session messages to a terminal.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
	md  *glamour.TermRenderer
}

type Option func(*rendererOptions)

type rendererOptions struct {
	style string
}

// WithStyle selects a named glamour style ("dark", "light", "notty", ...)
// instead of detecting one from the terminal.
func WithStyle(name string) Option {
	return func(o *rendererOptions) { o.style = strings.TrimSpace(name) }
}

func NewRenderer(out io.Writer, opts ...Option) (*Renderer, error) {
	var o rendererOptions
	for _, opt := range opts {
		opt(&o)
	}
	styleOpt := glamour.WithAutoStyle()
	if o.style != "" {
		styleOpt = glamour.WithStandardStyle(o.style)
	}
	md, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(Width))
	if err != nil {
		return nil, fmt.Errorf("init markdown renderer: %w", err)
	}
	return &Renderer{out: out, md: md}, nil
}

// Observer adapts the renderer to a session runner.
func (r *Renderer) Observer() session.Observer {
	return func(_ string, m session.Message) { r.Render(m) }
}

// Render prints one message in the style of its kind. Bodies carrying the
// model error marker always get the error style.
func (r *Renderer) Render(m session.Message) {
	var block string
	switch {
	case m.Kind == session.KindError || llm.IsErrorText(m.Body):
		block = r.box(errorStyle, firstNonEmpty(m.Title, labelError), m.Body)
	case m.Kind == session.KindStatus:
		block = statusStyle.Render("⏳ " + Wrap(m.Body, Width))
	case m.Kind == session.KindOutput:
		block = r.output(m.Title, m.Body)
	case m.Kind == session.KindUser:
		block = r.box(userStyle, labelUser, m.Body)
	default:
		block = r.box(aiStyle, firstNonEmpty(m.Title, labelAI), m.Body)
	}
	r.write(block)
}

// Prompt shows the task box before an answer is read.
func (r *Renderer) Prompt(text string) {
	r.write(r.box(promptStyle, labelTask, text))
}

func (r *Renderer) box(style lipgloss.Style, title, body string) string {
	content := titleStyle.Render(title)
	if body = strings.TrimSpace(body); body != "" {
		content += "\n\n" + Wrap(body, Width-4)
	}
	return style.Render(content)
}

func (r *Renderer) output(title, body string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(outputStyle.Render("--- " + title + " ---"))
		sb.WriteString("\n")
	}
	rendered, err := r.md.Render(body)
	if err != nil {
		rendered = Wrap(body, Width)
	}
	sb.WriteString(strings.TrimRight(rendered, "\n"))
	return sb.String()
}

func (r *Renderer) write(block string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, block)
	fmt.Fprintln(r.out)
}

// Wrap bounds every line of text to width columns and keeps the original
// line breaks.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wordwrap.WrapString(line, uint(width))
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
