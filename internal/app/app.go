// Package app wires configuration, the model client, stores and the two
// presentation surfaces together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"bmcnav/internal/config"
	"bmcnav/internal/console"
	"bmcnav/internal/llm"
	"bmcnav/internal/logger"
	"bmcnav/internal/prompts"
	"bmcnav/internal/report"
	"bmcnav/internal/session"
	"bmcnav/internal/store"
	"bmcnav/internal/web"
)

type App struct {
	cfg     *config.Config
	log     *logger.Logger
	client  llm.Client
	machine *session.Machine
	reports report.Store
}

// New builds the model client, prompt library and report archive. Missing
// credentials and an empty model list are returned as errors here, before
// any session starts.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lib, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	client, err := NewClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	reports, err := chooseReportStore(cfg, log)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &App{
		cfg:     cfg,
		log:     log,
		client:  client,
		machine: session.NewMachine(lib, session.Options{IncludeSkipped: cfg.IncludeSkipped}),
		reports: reports,
	}, nil
}

// NewClient returns the configured model client wrapped with status lines,
// logging and the optional rate limit (LLM_RPS / GEMINI_RPS).
func NewClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (llm.Client, error) {
	var inner llm.Client
	if cfg.Fake {
		inner = llm.NewFakeClient()
	} else {
		g, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:     cfg.APIKey,
			ModelStems: cfg.ModelStems,
			Generation: llm.GenerationConfig(cfg.Generation),
		})
		if err != nil {
			return nil, fmt.Errorf("init model client: %w", err)
		}
		inner = g
	}
	log.Info("model client ready", "model", inner.Name())
	return llm.Wrap(inner,
		llm.WithStatus(nil),
		llm.WithLogging(log),
		llm.RateLimitFromEnv("LLM", "GEMINI"),
	), nil
}

func (a *App) Client() llm.Client { return a.client }

func (a *App) Reports() report.Store { return a.reports }

// Chat runs one console session reading answers from in. The report is
// archived once the session finishes.
func (a *App) Chat(ctx context.Context, in io.Reader, out io.Writer) (session.State, error) {
	renderer, err := console.NewRenderer(out)
	if err != nil {
		return session.State{}, err
	}
	runner := session.NewRunner(a.machine, a.client,
		session.WithObserver(renderer.Observer()),
		session.WithLogger(a.log),
	)
	st, runErr := runner.Run(ctx, session.New(), console.NewLineInput(in, renderer))
	if st.Stage == session.StageFinished {
		location, err := report.Archive(ctx, a.reports, st)
		if err != nil {
			a.log.Warn("report archive failed", "session_id", st.ID, "error", err)
		} else {
			if location == "" {
				location = report.FileName
			}
			renderer.Render(session.Message{Kind: session.KindAI, Title: "📄 Výstup uložen", Body: location})
		}
	}
	if runErr != nil && errors.Is(runErr, io.EOF) {
		return st, nil
	}
	return st, runErr
}

// Web builds the HTTP server and the session store behind it. The caller
// closes the returned store after shutdown.
func (a *App) Web() (*web.Server, store.Store, error) {
	sessions, err := store.NewFromConfig(a.cfg.Store, a.log)
	if err != nil {
		return nil, nil, err
	}
	hub := web.NewHub()
	runner := session.NewRunner(a.machine, a.client,
		session.WithObserver(hub.Publish),
		session.WithLogger(a.log),
	)
	svc := web.NewService(runner, sessions, a.reports, a.log)
	mux := web.NewMux(web.NewHandler(svc, hub, a.log), web.NewRPCHandler(svc))
	return web.NewServer(a.cfg.Port, mux, a.log), sessions, nil
}

func (a *App) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}
