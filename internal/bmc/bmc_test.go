package bmc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planJSON(n int) string {
	items := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, map[string]any{
			"key":             fmt.Sprintf("key_%d", i),
			"question":        fmt.Sprintf("Otázka %d?", i),
			"coverage_points": []string{"Bod A."},
			"examples":        []string{"příklad"},
		})
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func TestParsePlanLengthMatchesEmittedArray(t *testing.T) {
	for _, n := range []int{1, 3, ExpectedPlanLength, 12} {
		plan, err := ParsePlan(planJSON(n))
		require.NoError(t, err)
		assert.Len(t, plan, n)
		for _, item := range plan {
			assert.NotEmpty(t, item.Key)
		}
	}
}

func TestParsePlanStripsFences(t *testing.T) {
	for _, raw := range []string{
		"```json\n" + planJSON(2) + "\n```",
		"```\n" + planJSON(2) + "\n```",
		"  \n" + planJSON(2) + "\n",
	} {
		plan, err := ParsePlan(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, []string{"key_1", "key_2"}, plan.Keys())
	}
}

func TestParsePlanRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"missing key", `[{"key":"a"},{"question":"q"}]`, ErrMissingKey},
		{"blank key", `[{"key":"  "}]`, ErrMissingKey},
		{"duplicate", `[{"key":"a"},{"key":"a"}]`, ErrDuplicateKey},
		{"empty", `[]`, ErrEmptyPlan},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ParsePlan(tc.raw)
			assert.Nil(t, plan)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	_, err := ParsePlan(`{"key":"a"}`)
	assert.Error(t, err)
	_, err = ParsePlan("AI_ERROR: incomplete response from model")
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `[1]`, StripCodeFence("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, StripCodeFence("```json\n[1]"))
	assert.Equal(t, `[1]`, StripCodeFence("```[1]```"))
	assert.Equal(t, `[1]`, StripCodeFence("```json [1]```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json{\"a\":1}```"))
	assert.Equal(t, `plain`, StripCodeFence("  plain  "))

	plan, err := ParsePlan("```json [{\"key\":\"a\"}]```")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, plan.Keys())
}

func TestGuidance(t *testing.T) {
	item := QuestionPlanItem{
		Key:            "channels",
		Question:       "Jak prodáváte?",
		CoveragePoints: []string{"Online.", " ", "Partneři."},
		Examples:       []string{"e-shop", "resellers"},
	}
	assert.Equal(t,
		"Jak prodáváte?\n\nPro komplexní odpověď zvažte prosím následující body:\n- Online.\n- Partneři.\n\nNapříklad: e-shop, resellers.",
		item.Guidance())

	assert.Equal(t, "Chybí text otázky.", QuestionPlanItem{Key: "x"}.Guidance())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Customer Segments", DisplayName("customer_segments"))
	assert.Equal(t, "Neznámý blok", DisplayName(""))
}

func TestNormalizeAnswerSkipVocabulary(t *testing.T) {
	for _, raw := range []string{"n/a", "N/A", " ne ", "Přeskočit", "PŘESKOČIT", "skip", "\tSKIP\n"} {
		assert.Equal(t, Skipped, NormalizeAnswer(raw), raw)
	}
	for _, raw := range []string{"nevím", "skipping", "ano"} {
		assert.Equal(t, raw, NormalizeAnswer(raw))
	}
	assert.Equal(t, "Malé firmy", NormalizeAnswer("  Malé firmy \n"))
	assert.Equal(t, "", NormalizeAnswer("   "))
}

func TestAnswerMapOrderAndOverwrite(t *testing.T) {
	var m AnswerMap
	m.Set("b", "1")
	m.Set("a", "2")
	m.Set("c", "3")
	m.Set("a", "22")

	assert.Equal(t, []Answer{{"b", "1"}, {"a", "22"}, {"c", "3"}}, m.Entries())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "22", v)
	_, ok = m.Get("z")
	assert.False(t, ok)
}

func TestAnswerMapJSONKeepsOrder(t *testing.T) {
	var m AnswerMap
	m.Set("z", "last")
	m.Set("a", "first")
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"z","value":"last"},{"key":"a","value":"first"}]`, string(b))

	var back AnswerMap
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, m.Entries(), back.Entries())

	var empty AnswerMap
	b, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestSummaryFormatAndSkipFilter(t *testing.T) {
	var m AnswerMap
	for i := 1; i <= 4; i++ {
		v := fmt.Sprintf("odpověď %d", i)
		if i == 3 {
			v = NormalizeAnswer("skip")
		}
		m.Set(fmt.Sprintf("key_%d", i), v)
	}

	got := Summary(m, false)
	assert.Equal(t, "- key_1: odpověď 1\n- key_2: odpověď 2\n- key_4: odpověď 4", got)
	assert.NotContains(t, got, "key_3")

	withSkipped := Summary(m, true)
	lines := strings.Split(withSkipped, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "- key_3: Skipped", lines[2])

	assert.Equal(t, "", Summary(AnswerMap{}, false))
}

func TestExtractTitles(t *testing.T) {
	text := strings.Join([]string{
		"### Rychlá vítězství",
		"1. Partnerský program",
		"   2.Tarify podle využití  ",
		"- odrážka bez čísla",
		"3.",
		"**4. Tučný nadpis**",
		"10. Desátý nápad",
	}, "\n")
	want := []string{"Partnerský program", "Tarify podle využití", "Desátý nápad"}
	assert.Equal(t, want, ExtractTitles(text))
	assert.Equal(t, ExtractTitles(text), ExtractTitles(text))
	assert.Empty(t, ExtractTitles("Žádný číslovaný seznam.\n- jen odrážky"))
}
