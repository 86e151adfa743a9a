// Package bmc holds the Business Model Canvas domain types: the question plan
// produced by the planner, the collected answers and the parsers for model output.
package bmc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrEmptyPlan    = errors.New("question plan is empty")
	ErrMissingKey   = errors.New("question plan item is missing key")
	ErrDuplicateKey = errors.New("question plan has duplicate key")
)

// ExpectedPlanLength is the number of canvas blocks the planner is asked for.
const ExpectedPlanLength = 9

const missingQuestionText = "Chybí text otázky."

// QuestionPlanItem is one guided question. Read-only after parsing.
type QuestionPlanItem struct {
	Key            string   `json:"key"`
	Question       string   `json:"question"`
	CoveragePoints []string `json:"coverage_points"`
	Examples       []string `json:"examples"`
}

type QuestionPlan []QuestionPlanItem

// ParsePlan strips an optional code fence and decodes a JSON list of plan
// items. Every item must carry a non-empty, unique key; a malformed plan is
// rejected as a whole.
func ParsePlan(raw string) (QuestionPlan, error) {
	body := StripCodeFence(raw)
	var plan QuestionPlan
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, fmt.Errorf("decode question plan: %w", err)
	}
	if len(plan) == 0 {
		return nil, ErrEmptyPlan
	}
	seen := make(map[string]struct{}, len(plan))
	for i := range plan {
		key := strings.TrimSpace(plan[i].Key)
		if key == "" {
			return nil, fmt.Errorf("%w (item %d)", ErrMissingKey, i+1)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateKey, key)
		}
		seen[key] = struct{}{}
		plan[i].Key = key
	}
	return plan, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence, if present.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	firstNewline := strings.Index(trimmed, "\n")
	if firstNewline == -1 {
		return stripFenceTag(strings.TrimSpace(strings.Trim(trimmed, "`")))
	}
	body := trimmed[firstNewline+1:]
	if end := strings.LastIndex(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// stripFenceTag drops a language tag left in front of a one-line fence body,
// as in "```json [...]```".
func stripFenceTag(body string) string {
	end := strings.IndexAny(body, " \t[{")
	if end <= 0 {
		return body
	}
	for _, r := range body[:end] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return body
		}
	}
	return strings.TrimSpace(body[end:])
}

// Keys returns the plan keys in order.
func (p QuestionPlan) Keys() []string {
	out := make([]string, 0, len(p))
	for _, item := range p {
		out = append(out, item.Key)
	}
	return out
}

// QuestionText returns the question, or a placeholder when the planner omitted it.
func (q QuestionPlanItem) QuestionText() string {
	if t := strings.TrimSpace(q.Question); t != "" {
		return t
	}
	return missingQuestionText
}

// Guidance renders the question with its coverage points and examples.
func (q QuestionPlanItem) Guidance() string {
	var sb strings.Builder
	sb.WriteString(q.QuestionText())
	if points := nonEmpty(q.CoveragePoints); len(points) > 0 {
		sb.WriteString("\n\nPro komplexní odpověď zvažte prosím následující body:")
		for _, p := range points {
			sb.WriteString("\n- ")
			sb.WriteString(p)
		}
	}
	if examples := nonEmpty(q.Examples); len(examples) > 0 {
		fmt.Fprintf(&sb, "\n\nNapříklad: %s.", strings.Join(examples, ", "))
	}
	return sb.String()
}

// DisplayName turns a plan key like "customer_segments" into "Customer Segments".
func DisplayName(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "Neznámý blok"
	}
	return cases.Title(language.Czech).String(strings.ReplaceAll(key, "_", " "))
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
