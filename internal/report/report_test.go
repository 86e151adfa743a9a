package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmcnav/internal/bmc"
	"bmcnav/internal/config"
	"bmcnav/internal/session"
)

func finishedState() session.State {
	s := session.New()
	s.Stage = session.StageFinished
	s.UserContext = "Malé SaaS pro fakturaci"
	s.Plan = bmc.QuestionPlan{
		{Key: "customer_segments", Question: "Kdo jsou vaši zákazníci?"},
		{Key: "channels", Question: "Jak prodáváte?"},
		{Key: "cost_structure"},
	}
	s.Answers.Set("customer_segments", "Účetní kanceláře")
	s.Answers.Set("channels", bmc.Skipped)
	s.Analysis = "Silné stránky: nika."
	s.IdeaList = "1. Partnerský program"
	s.Titles = []string{"Partnerský program"}
	s.Details = []session.IdeaDetail{{Title: "Partnerský program", Detail: "**Popis:** ..."}}
	return s
}

func TestBuildContainsAllSections(t *testing.T) {
	out := Build(finishedState())
	for _, want := range []string{
		"# BMC Navigátor",
		"- Stav: Dokončeno",
		"## Úvodní kontext\n\nMalé SaaS pro fakturaci",
		"### Customer Segments\n\n_Kdo jsou vaši zákazníci?_\n\nÚčetní kanceláře",
		"### Channels\n\n_Jak prodáváte?_\n\n(přeskočeno)",
		"### Cost Structure\n\n_Chybí text otázky._\n\n(bez odpovědi)",
		"## Strategická analýza\n\nSilné stránky: nika.",
		"## Přehled návrhů inovací",
		"## Návrh 1: Partnerský program\n\n**Popis:** ...",
	} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.Index(out, "Customer Segments") < strings.Index(out, "Channels"))
}

func TestBuildSkipsEmptySections(t *testing.T) {
	s := session.New()
	s.Stage = session.StageFailed
	s.Failure = "AI_ERROR: incomplete response from model"
	out := Build(s)
	assert.Contains(t, out, "- Chyba: AI_ERROR")
	assert.NotContains(t, out, "## Strategická analýza")
	assert.NotContains(t, out, "## Business Model Canvas")
}

func TestArchiveToMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	s := finishedState()
	url, err := Archive(context.Background(), st, s)
	require.NoError(t, err)
	assert.Empty(t, url)

	raw, err := st.Get(context.Background(), s.ID, FileName)
	require.NoError(t, err)
	assert.Equal(t, Build(s), string(raw))

	_, err = st.Get(context.Background(), s.ID, "other.md")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Error(t, st.Put(context.Background(), "", FileName, nil))

	url, err = Archive(context.Background(), nil, s)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(config.ReportConfig{})
	assert.Error(t, err)
	_, err = NewS3Store(config.ReportConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)

	st, err := NewS3Store(config.ReportConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "reports"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", st.region)
}
