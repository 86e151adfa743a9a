package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmcnav/internal/config"
	"bmcnav/internal/logger"
	"bmcnav/internal/report"
	"bmcnav/internal/session"
)

func fakeConfig() *config.Config {
	return &config.Config{
		Port:    ":0",
		Fake:    true,
		LogMode: "dev",
	}
}

func TestNewRequiresAPIKeyOutsideFakeMode(t *testing.T) {
	cfg := fakeConfig()
	cfg.Fake = false
	_, err := New(context.Background(), cfg, nil)
	assert.True(t, errors.Is(err, config.ErrMissingAPIKey))
}

func TestNewRejectsMissingPromptsFile(t *testing.T) {
	cfg := fakeConfig()
	cfg.PromptsFile = "/nonexistent/prompts.yaml"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestChatRunsFakeSessionToFinish(t *testing.T) {
	a, err := New(context.Background(), fakeConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	lines := []string{"Jsme malé SaaS pro fakturaci"}
	for i := 0; i < 9; i++ {
		if i%3 == 0 {
			lines = append(lines, "n/a")
			continue
		}
		lines = append(lines, "odpověď")
	}
	var out bytes.Buffer
	st, err := a.Chat(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, session.StageFinished, st.Stage)
	assert.Len(t, st.Details, 3)
	assert.Equal(t, 9, st.Answers.Len())
	assert.Contains(t, out.String(), "AI přemýšlí s teplotou: 0.2...")
	assert.Contains(t, out.String(), "Sezení dokončeno")
	assert.Contains(t, out.String(), report.FileName)

	raw, err := a.Reports().Get(context.Background(), st.ID, report.FileName)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "(přeskočeno)")
}

func TestChatStopsQuietlyWhenInputEnds(t *testing.T) {
	a, err := New(context.Background(), fakeConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	st, err := a.Chat(context.Background(), strings.NewReader("Kontext\nprvní\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, session.StageDataGathering, st.Stage)
	assert.Equal(t, 1, st.Answers.Len())
}

func TestChooseReportStore(t *testing.T) {
	cfg := fakeConfig()
	cfg.Report = config.ReportConfig{Enabled: true, Endpoint: "localhost:9000"}
	st, err := chooseReportStore(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &report.MemoryStore{}, st)

	cfg.Report = config.ReportConfig{Enabled: true, Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "reports"}
	st, err = chooseReportStore(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &report.S3Store{}, st)
}

func TestWebBuildsServerOnFileStore(t *testing.T) {
	cfg := fakeConfig()
	cfg.Store.FilePath = t.TempDir() + "/sessions.json"
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	srv, sessions, err := a.Web()
	require.NoError(t, err)
	defer sessions.Close()
	assert.Equal(t, ":0", srv.Addr())
}
