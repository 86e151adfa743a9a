package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed library.yaml
var defaultLibrary []byte

// Library holds the four instruction templates. Builders never fail.
type Library struct {
	PlannerTemplate    string `yaml:"planner"`
	AnalysisTemplate   string `yaml:"analysis"`
	IdeaListTemplate   string `yaml:"idea_list"`
	IdeaDetailTemplate string `yaml:"idea_detail"`
}

// Bundle is the shared context passed to the innovation prompts.
type Bundle struct {
	UserContext string
	Summary     string
	Analysis    string
}

// Default returns the embedded Czech library.
func Default() *Library {
	lib, err := parse(defaultLibrary)
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded library is invalid: %v", err))
	}
	return lib
}

// Load returns the default library with templates from path layered on top.
// An empty path yields the defaults; keys missing from the file keep them.
func Load(path string) (*Library, error) {
	lib := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return lib, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	override, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	lib.merge(override)
	return lib, nil
}

func parse(raw []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(raw, &lib); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (l *Library) merge(o *Library) {
	if o == nil {
		return
	}
	if strings.TrimSpace(o.PlannerTemplate) != "" {
		l.PlannerTemplate = o.PlannerTemplate
	}
	if strings.TrimSpace(o.AnalysisTemplate) != "" {
		l.AnalysisTemplate = o.AnalysisTemplate
	}
	if strings.TrimSpace(o.IdeaListTemplate) != "" {
		l.IdeaListTemplate = o.IdeaListTemplate
	}
	if strings.TrimSpace(o.IdeaDetailTemplate) != "" {
		l.IdeaDetailTemplate = o.IdeaDetailTemplate
	}
}

// Planner asks for the question plan, using the user's description as context.
func (l *Library) Planner(userContext string) string {
	return fmt.Sprintf("%s\n\nÚvodní popis od uživatele (použijte jako kontext):\n---\n%s\n---",
		l.PlannerTemplate, userContext)
}

// Analysis asks for the strategic analysis of the collected canvas data.
func (l *Library) Analysis(userContext, summary string) string {
	return fmt.Sprintf("%s\n\nÚvodní kontext od uživatele:\n%s\n\nDetailní data z Business Model Canvas:\n%s",
		l.AnalysisTemplate, userContext, summary)
}

// IdeaList asks for a numbered list of innovation titles.
func (l *Library) IdeaList(b Bundle) string {
	var sb strings.Builder
	sb.WriteString(l.IdeaListTemplate)
	sb.WriteString("\n\nKontext:\n")
	writeBundle(&sb, b)
	sb.WriteString("\n\nNyní vygenerujte stručný číslovaný seznam názvů inovací.")
	return sb.String()
}

// IdeaDetail asks for the full write-up of one innovation title.
func (l *Library) IdeaDetail(title string, b Bundle) string {
	var sb strings.Builder
	sb.WriteString(l.IdeaDetailTemplate)
	fmt.Fprintf(&sb, "\n\nNázev nápadu k rozpracování: '%s'\n\nPodpůrný kontext:\n", title)
	writeBundle(&sb, b)
	sb.WriteString("\n\nNyní detailně rozpracujte tento jeden nápad podle zadaného formátu.")
	return sb.String()
}

func writeBundle(sb *strings.Builder, b Bundle) {
	fmt.Fprintf(sb, "Počáteční cíl uživatele:\n%s\n\nBMC uživatele:\n%s\n\nShrnutí analýzy:\n%s",
		b.UserContext, b.Summary, b.Analysis)
}
