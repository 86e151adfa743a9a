package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FakeClient returns deterministic Czech payloads per phase for offline runs.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

var reFakeTitle = regexp.MustCompile(`'([^']*)'`)

func (f *FakeClient) Generate(ctx context.Context, prompt string, _ ...CallOption) (string, error) {
	switch PhaseFrom(ctx) {
	case PhasePlanner:
		b, _ := json.MarshalIndent(fakePlan(), "", "  ")
		return "```json\n" + string(b) + "\n```", nil
	case PhaseAnalysis:
		return strings.Join([]string{
			"## 1. Shrnutí pro vedení",
			"Byznys model stojí na jasném zákaznickém segmentu, ale příjmy jsou závislé na jediném kanálu.",
			"## 2. Hloubková analýza (SWOT)",
			"- **Silné stránky:** specializovaný produkt. Důkaz: odpovědi o hodnotové nabídce. Dopad: vyšší retence.",
			"- **Slabé stránky:** úzká distribuce. Důkaz: kanály. Dopad: pomalý růst.",
			"## 3. Klíčové souvislosti",
			"Nákladová struktura přímo limituje tempo akvizice.",
			"## 4. Klíčové strategické otázky pro vedení",
			"1. Které partnerství zrychlí vstup na nové trhy?",
		}, "\n"), nil
	case PhaseIdeaList:
		return strings.Join([]string{
			"### Rychlá vítězství",
			"1. Partnerský program pro účetní kanceláře",
			"### Strategické posuny",
			"2. Přechod na tarify podle využití",
			"### Experimentální nápady",
			"3. AI asistent pro párování plateb",
		}, "\n"), nil
	case PhaseIdeaDetail:
		title := "Nápad"
		if m := reFakeTitle.FindStringSubmatch(prompt); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
			title = strings.TrimSpace(m[1])
		}
		return fmt.Sprintf("**Název návrhu:** %s\n**Popis:** Ukázkový popis.\n**Odůvodnění a napojení na analýzu:** Navazuje na slabé stránky.\n**Dopad na Business Model Canvas:** Kanály, Klíčová partnerství.\n**Akční první kroky (příštích 30 dní):** Oslovit tři pilotní partnery.\n**Možná rizika ke zvážení:** Nízký zájem partnerů.", title), nil
	default:
		return "", errIncomplete()
	}
}

func fakePlan() []map[string]any {
	blocks := []struct{ key, question string }{
		{"customer_segments", "Kdo jsou vaši klíčoví zákazníci?"},
		{"value_propositions", "Jakou hodnotu zákazníkům přinášíte?"},
		{"channels", "Jakými kanály se k zákazníkům dostáváte?"},
		{"customer_relationships", "Jaké vztahy se zákazníky budujete?"},
		{"revenue_streams", "Z čeho plynou vaše příjmy?"},
		{"key_resources", "Jaké klíčové zdroje potřebujete?"},
		{"key_activities", "Jaké klíčové aktivity vykonáváte?"},
		{"key_partnerships", "Kdo jsou vaši klíčoví partneři?"},
		{"cost_structure", "Jaká je vaše nákladová struktura?"},
	}
	out := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, map[string]any{
			"key":             b.key,
			"question":        b.question,
			"coverage_points": []string{"Popište současný stav.", "Uveďte plánované změny."},
			"examples":        []string{"SaaS předplatné", "jednorázová implementace"},
		})
	}
	return out
}
