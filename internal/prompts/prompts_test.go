package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibraryHasAllTemplates(t *testing.T) {
	lib := Default()
	assert.Contains(t, lib.PlannerTemplate, "JSON seznam 9 objektů")
	assert.Contains(t, lib.PlannerTemplate, `"coverage_points"`)
	assert.Contains(t, lib.AnalysisTemplate, "SWOT")
	assert.Contains(t, lib.IdeaListTemplate, "Rychlá vítězství")
	assert.Contains(t, lib.IdeaDetailTemplate, "**Možná rizika ke zvážení:**")
	assert.False(t, strings.HasSuffix(lib.PlannerTemplate, "\n"))
}

func TestPlannerEmbedsContext(t *testing.T) {
	lib := Default()
	got := lib.Planner("Malé SaaS pro fakturaci")
	assert.True(t, strings.HasPrefix(got, lib.PlannerTemplate))
	assert.True(t, strings.HasSuffix(got, "---\nMalé SaaS pro fakturaci\n---"))
}

func TestAnalysisSections(t *testing.T) {
	lib := Default()
	got := lib.Analysis("ctx", "- channels: web")
	assert.Contains(t, got, "\n\nÚvodní kontext od uživatele:\nctx\n\n")
	assert.True(t, strings.HasSuffix(got, "Detailní data z Business Model Canvas:\n- channels: web"))
}

func TestInnovationPromptsShareBundle(t *testing.T) {
	lib := Default()
	b := Bundle{UserContext: "ctx", Summary: "- k: v", Analysis: "SWOT"}

	list := lib.IdeaList(b)
	assert.Contains(t, list, "Kontext:\nPočáteční cíl uživatele:\nctx\n\nBMC uživatele:\n- k: v\n\nShrnutí analýzy:\nSWOT")
	assert.True(t, strings.HasSuffix(list, "seznam názvů inovací."))

	detail := lib.IdeaDetail("Tarify", b)
	assert.Contains(t, detail, "Název nápadu k rozpracování: 'Tarify'")
	assert.Contains(t, detail, "Podpůrný kontext:\nPočáteční cíl uživatele:\nctx")
	assert.True(t, strings.HasSuffix(detail, "podle zadaného formátu."))
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: Analyze briefly.\n"), 0o644))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Analyze briefly.", lib.AnalysisTemplate)
	assert.Equal(t, Default().PlannerTemplate, lib.PlannerTemplate)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("planner: [unclosed"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	lib, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), lib)
}
