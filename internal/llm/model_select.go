package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEligibleModel means none of the priority stems matched an available model.
var ErrNoEligibleModel = errors.New("no priority model is available for content generation")

const actionGenerateContent = "generateContent"

// ModelInfo is the subset of model metadata used for selection.
type ModelInfo struct {
	Name             string
	SupportedActions []string
}

func (m ModelInfo) supports(action string) bool {
	for _, a := range m.SupportedActions {
		if a == action {
			return true
		}
	}
	return false
}

// SelectModel walks stems in priority order and returns the first model whose
// name contains the stem, supports content generation and is not a vision model.
func SelectModel(stems []string, available []ModelInfo) (string, error) {
	candidates := make([]ModelInfo, 0, len(available))
	for _, m := range available {
		if m.supports(actionGenerateContent) {
			candidates = append(candidates, m)
		}
	}
	for _, stem := range stems {
		stem = strings.TrimSpace(stem)
		if stem == "" {
			continue
		}
		for _, m := range candidates {
			if strings.Contains(m.Name, stem) && !strings.Contains(strings.ToLower(m.Name), "vision") {
				return m.Name, nil
			}
		}
	}
	return "", fmt.Errorf("%w (stems: %s)", ErrNoEligibleModel, strings.Join(stems, ", "))
}
