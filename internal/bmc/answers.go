package bmc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Skipped is stored instead of the literal answer when the user declines a question.
const Skipped = "Skipped"

// NormalizeAnswer trims the answer and maps the skip vocabulary to Skipped.
func NormalizeAnswer(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if IsSkip(trimmed) {
		return Skipped
	}
	return trimmed
}

// IsSkip reports whether the trimmed, lower-cased text is a skip word.
func IsSkip(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "n/a", "ne", "přeskočit", "skip":
		return true
	}
	return false
}

// Answer is one key/value pair of an AnswerMap.
type Answer struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AnswerMap maps plan keys to answers and keeps insertion order.
type AnswerMap struct {
	entries []Answer
}

// Set stores value under key. An existing key is overwritten in place.
func (m *AnswerMap) Set(key, value string) {
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, Answer{Key: key, Value: value})
}

func (m AnswerMap) Get(key string) (string, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

func (m AnswerMap) Len() int { return len(m.entries) }

// Entries returns a copy of the pairs in insertion order.
func (m AnswerMap) Entries() []Answer {
	return append([]Answer(nil), m.entries...)
}

func (m AnswerMap) MarshalJSON() ([]byte, error) {
	if m.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.entries)
}

func (m *AnswerMap) UnmarshalJSON(b []byte) error {
	var entries []Answer
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	m.entries = nil
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return nil
}

// Summary renders one "- key: value" line per entry, in insertion order.
// Skipped entries are left out unless includeSkipped is set.
func Summary(m AnswerMap, includeSkipped bool) string {
	lines := make([]string, 0, m.Len())
	for _, e := range m.entries {
		if e.Value == Skipped && !includeSkipped {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", e.Key, e.Value))
	}
	return strings.Join(lines, "\n")
}

// Clone returns an independent copy.
func (m AnswerMap) Clone() AnswerMap {
	return AnswerMap{entries: append([]Answer(nil), m.entries...)}
}
