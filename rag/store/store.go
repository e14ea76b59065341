// Package store builds the vector index the retriever queries.
package store

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/smallnest/medichat/rag"
	"github.com/smallnest/medichat/rag/loader"
)

// Backend names.
const (
	BackendPinecone = "pinecone"
	BackendMemory   = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string
	Pinecone PineconeConfig
	// SeedFile is a JSON-lines file loaded into the memory backend.
	SeedFile string
}

// New returns the configured vector store.
func New(ctx context.Context, cfg Config, embedder embeddings.Embedder) (vectorstores.VectorStore, error) {
	switch cfg.Backend {
	case BackendPinecone, "":
		return NewPinecone(ctx, cfg.Pinecone, embedder)
	case BackendMemory:
		s := NewInMemoryVectorStore(embedder)
		if cfg.SeedFile == "" {
			return s, nil
		}
		docs, err := loader.NewJSONLLoader(cfg.SeedFile).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		if _, err := s.AddDocuments(ctx, rag.ToSchemaDocuments(docs)); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", cfg.Backend)
	}
}
