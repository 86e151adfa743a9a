package bmc

import (
	"errors"
	"regexp"
	"strings"
)

var ErrNoTitles = errors.New("could not extract innovation titles")

var reNumberedLine = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]*(.*)$`)

// ExtractTitles returns the text after "N." on every numbered line, in order.
// Matching is per line: lines that do not match are dropped, and so are
// numbered lines with no text.
func ExtractTitles(text string) []string {
	matches := reNumberedLine.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if t := strings.TrimSpace(m[1]); t != "" {
			out = append(out, t)
		}
	}
	return out
}
