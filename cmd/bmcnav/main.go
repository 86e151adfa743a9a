package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bmcnav/internal/app"
	"bmcnav/internal/config"
	"bmcnav/internal/llm"
	"bmcnav/internal/logger"
)

const shutdownTimeout = 5 * time.Second

var (
	fakeLLM     bool
	port        string
	promptsFile string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bmcnav",
	Short: "BMC Navigátor: guided Business Model Canvas analysis",
	Long: `BMC Navigátor interviews you about your business model block by block,
then produces a strategic analysis and detailed innovation proposals.

Run without arguments to start the interactive console session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("fake") {
			cfg.Fake = fakeLLM
		}
		if p := strings.TrimSpace(port); p != "" {
			if !strings.Contains(p, ":") {
				p = ":" + p
			}
			cfg.Port = p
		}
		if f := strings.TrimSpace(promptsFile); f != "" {
			cfg.PromptsFile = f
		}
		log, err = logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if log != nil {
			log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChat(cmd.Context())
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run one interactive session in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChat(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web interface and the session API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&fakeLLM, "fake", false, "use the offline fake model instead of Gemini")
	rootCmd.PersistentFlags().StringVar(&promptsFile, "prompts", "", "YAML file overriding the built-in prompt templates")
	serveCmd.Flags().StringVar(&port, "port", "", "listen address (default from PORT or :8080)")
	rootCmd.AddCommand(chatCmd, serveCmd)
}

func runChat(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.Chat(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, sessions, err := a.Web()
	if err != nil {
		return err
	}
	defer sessions.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("server exited")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		switch {
		case errors.Is(err, config.ErrMissingAPIKey):
			fmt.Fprintln(os.Stderr, "CHYBA:", err)
		case errors.Is(err, llm.ErrNoEligibleModel):
			fmt.Fprintln(os.Stderr, "CHYBA: žádný z prioritních modelů není dostupný:", err)
		default:
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
