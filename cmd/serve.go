package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-intel/config"
	"media-intel/database"
	"media-intel/handlers"
	"media-intel/llm"
	"media-intel/logger"
	"media-intel/metrics"
	"media-intel/normalizer"
	"media-intel/services"
	"media-intel/store"
	"media-intel/summary"
)

type serveOptions struct {
	configFile string
	port       int
	mode       string
	provider   string
	language   string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (or MEDIAINTEL_CONFIG_FILE)")
	f.IntVarP(&opts.port, "port", "p", 0, "listen port")
	f.StringVar(&opts.mode, "mode", "", "gin mode: debug, release or test")
	f.StringVar(&opts.provider, "llm-provider", "", "summary model provider: gemini, chat or genai")
	f.StringVar(&opts.language, "lang", "", "default summary language: id or en")
	return cmd
}

// apply overrides cfg with the flags set on the command line.
func (o *serveOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if flags.Changed("mode") {
		cfg.Server.Mode = o.mode
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = o.provider
	}
	if flags.Changed("lang") {
		cfg.LLM.Language = o.language
	}
	return cfg.Validate()
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open("media-intel", log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	client, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		log.Warn("no LLM API key configured, summary generation will fail", zap.String("provider", cfg.LLM.Provider))
	}

	m := metrics.New()
	datasets := store.NewDatasetStore(db, cfg.Cache.MaxDatasets, log)
	ingestor := services.NewIngestor(normalizer.New(log), datasets, m, log)
	summaries := summary.NewService(datasets, client, m, log, cfg.LLM.Timeout, cfg.LLM.Language)

	h := handlers.New(ingestor, summaries, cfg.Upload.MaxBytes, cfg.LLM.Language, log)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		Mode:                 cfg.Server.Mode,
		SummaryRatePerMinute: cfg.LLM.RatePerMinute,
		Metrics:              m.Handler(),
		Logger:               log,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting media intelligence server",
			zap.String("addr", srv.Addr),
			zap.String("dashboard", fmt.Sprintf("http://localhost%s/dashboard", srv.Addr)),
			zap.String("llm_provider", cfg.LLM.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
