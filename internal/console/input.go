package console

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// LineInput reads one answer per line. It implements session.InputSource.
type LineInput struct {
	sc       *bufio.Scanner
	renderer *Renderer
}

func NewLineInput(r io.Reader, renderer *Renderer) *LineInput {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LineInput{sc: sc, renderer: renderer}
}

// ReadInput shows prompt and blocks for the next line. It returns io.EOF
// once the reader is exhausted.
func (in *LineInput) ReadInput(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if in.renderer != nil && strings.TrimSpace(prompt) != "" {
		in.renderer.Prompt(prompt)
	}
	if !in.sc.Scan() {
		if err := in.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(in.sc.Text(), "\r"), nil
}
