// Package app assembles medichat's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/smallnest/medichat/chain"
	"github.com/smallnest/medichat/config"
	"github.com/smallnest/medichat/graph"
	"github.com/smallnest/medichat/llms/gemini"
	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/metrics"
	"github.com/smallnest/medichat/prompt"
	"github.com/smallnest/medichat/rag"
	"github.com/smallnest/medichat/rag/embedding"
	"github.com/smallnest/medichat/rag/retriever"
	"github.com/smallnest/medichat/rag/store"
)

// App holds the components shared by every request. It is built once at
// startup and read-only afterwards.
type App struct {
	Config  *config.Config
	Logger  log.Logger
	Metrics *metrics.Metrics
	Chain   *chain.Chain

	retriever *retriever.VectorRetriever
	closers   []func() error
}

// Components lets callers supply the external services directly.
type Components struct {
	Store  vectorstores.VectorStore
	LLM    llms.Model
	Logger log.Logger
}

// New connects to the configured embedding provider, vector index and model.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	logger = log.OrDefault(logger)

	llm, err := gemini.New(ctx, GeminiOptions(cfg)...)
	if err != nil {
		return nil, err
	}

	vs, err := NewStore(ctx, cfg, llm)
	if err != nil {
		_ = llm.Close()
		return nil, err
	}

	a, err := NewWithComponents(cfg, Components{Store: vs, LLM: llm, Logger: logger})
	if err != nil {
		_ = llm.Close()
		return nil, err
	}
	a.closers = append(a.closers, llm.Close)

	logger.Info("using %s vector store, %s embeddings, model %s (temperature %.2f), k=%d",
		cfg.VectorStore, cfg.EmbeddingProvider, llm.Model(), llm.Temperature(), a.retriever.K())
	return a, nil
}

// NewWithComponents wires the retriever, prompt and chain around already
// constructed services.
func NewWithComponents(cfg *config.Config, c Components) (*App, error) {
	if c.Store == nil {
		return nil, errors.New("app: vector store is required")
	}
	if c.LLM == nil {
		return nil, errors.New("app: llm is required")
	}
	logger := log.OrDefault(c.Logger)

	systemPrompt, err := cfg.ResolveSystemPrompt()
	if err != nil {
		return nil, err
	}
	tmpl, err := prompt.New(systemPrompt)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		retriever: NewRetriever(cfg, c.Store, logger),
	}

	a.Chain, err = chain.New(chain.Config{
		Retriever: rag.RetrieverFunc(a.Retrieve),
		LLM:       c.LLM,
		Template:  tmpl,
		Hooks:     []graph.TraceHook{a.Metrics.GraphHook()},
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewStore builds the embedder and the vector store. llm backs the googleai
// embedding provider and may be nil for the others.
func NewStore(ctx context.Context, cfg *config.Config, llm embeddings.EmbedderClient) (vectorstores.VectorStore, error) {
	embedder, err := NewEmbedder(cfg, llm)
	if err != nil {
		return nil, err
	}

	return store.New(ctx, store.Config{
		Backend: cfg.VectorStore,
		Pinecone: store.PineconeConfig{
			APIKey:    cfg.PineconeAPIKey,
			IndexName: cfg.PineconeIndexName,
			IndexHost: cfg.PineconeIndexHost,
			Namespace: cfg.PineconeNamespace,
		},
		SeedFile: cfg.MemorySeedFile,
	}, embedder)
}

// NewEmbedder returns the embedder for cfg.EmbeddingProvider.
func NewEmbedder(cfg *config.Config, client embeddings.EmbedderClient) (embeddings.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case embedding.ProviderHuggingFace, "":
		return embedding.NewHuggingFace(cfg.HFToken, cfg.EmbeddingModel)
	case embedding.ProviderGoogleAI:
		if client == nil {
			return nil, errors.New("app: googleai embeddings need a gemini client")
		}
		return embedding.NewGoogleAI(client)
	case embedding.ProviderMock:
		return embedding.NewMockEmbedder(cfg.EmbeddingDimension), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, cfg.EmbeddingProvider)
	}
}

// Retrieve runs the similarity search the chain and /test-retrieval share.
func (a *App) Retrieve(ctx context.Context, query string) ([]rag.Document, error) {
	docs, err := a.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	a.Metrics.ObserveRetrieval(len(docs))
	return docs, nil
}

// Ask answers one question.
func (a *App) Ask(ctx context.Context, question string) (*chain.Response, error) {
	return a.Chain.Invoke(ctx, question)
}

// Close releases the model client.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// GeminiOptions maps cfg onto the Gemini client options.
func GeminiOptions(cfg *config.Config) []gemini.Option {
	opts := []gemini.Option{
		gemini.WithAPIKey(cfg.GoogleAPIKey),
		gemini.WithModel(cfg.LLMModel),
		gemini.WithTemperature(cfg.LLMTemperature),
		gemini.WithMaxTokens(cfg.LLMMaxTokens),
	}
	if cfg.EmbeddingProvider == embedding.ProviderGoogleAI {
		opts = append(opts, gemini.WithEmbeddingModel(cfg.EmbeddingModel))
	}
	return opts
}

// NewRetriever returns the similarity retriever over vs, scoped to the
// configured Pinecone namespace.
func NewRetriever(cfg *config.Config, vs vectorstores.VectorStore, logger log.Logger) *retriever.VectorRetriever {
	return retriever.NewVectorRetriever(vs, retriever.Config{
		K:       cfg.RetrieverK,
		Options: searchOptions(cfg),
		Logger:  logger,
	})
}

func searchOptions(cfg *config.Config) []vectorstores.Option {
	if cfg.VectorStore == store.BackendPinecone && cfg.PineconeNamespace != "" {
		return []vectorstores.Option{vectorstores.WithNameSpace(cfg.PineconeNamespace)}
	}
	return nil
}
