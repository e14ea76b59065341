package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/smallnest/medichat/app"
	"github.com/smallnest/medichat/config"
	"github.com/smallnest/medichat/llms/gemini"
	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/rag/embedding"
	"github.com/smallnest/medichat/server"
)

const shutdownTimeout = 15 * time.Second

type rootOptions struct {
	v          *viper.Viper
	configFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:   "medichat",
		Short: "Medical question-answering chatbot backed by a vector index and Gemini",
		Long: `medichat answers medical questions from a document index.

Each question is embedded, the three most similar chunks are fetched from the
vector index, and Gemini answers from those chunks only.

Settings come from the environment, an optional .env file in the working
directory and an optional --config file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json, toml or dotenv)")
	cmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error or none")
	_ = opts.v.BindPFlag(config.KeyLogLevel, cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newServeCommand(opts), newRetrieveCommand(opts))
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newRetrieveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Print the documents the vector index returns for a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cmd.Context(), opts, args[0])
		},
	}
}

// load reads the configuration and installs the default logger.
func (o *rootOptions) load() (*config.Config, log.Logger, error) {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return nil, nil, err
	}
	level, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(os.Stderr, level)
	log.SetDefaultLogger(logger)
	return cfg, logger, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed: %v", err)
		return err
	}
	defer a.Close()
	logger.Debug("answer graph:\n%s", a.Chain.Mermaid())

	srv, err := server.New(server.Config{
		Addr:    cfg.Addr(),
		Backend: a,
		Metrics: a.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func runRetrieve(ctx context.Context, opts *rootOptions, query string) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}

	// Only the googleai embedder needs a model client.
	var embedClient embeddings.EmbedderClient
	if cfg.EmbeddingProvider == embedding.ProviderGoogleAI {
		client, err := gemini.New(ctx, app.GeminiOptions(cfg)...)
		if err != nil {
			return err
		}
		defer client.Close()
		embedClient = client
	}

	vs, err := app.NewStore(ctx, cfg, embedClient)
	if err != nil {
		return err
	}

	r := app.NewRetriever(cfg, vs, logger)
	docs, err := r.Retrieve(ctx, query)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(server.NewRetrievalReport(query, docs))
}
