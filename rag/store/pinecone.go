package store

import (
	"context"
	"errors"
	"fmt"

	pc "github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/vectorstores/pinecone"
)

// ErrNoIndex is returned when neither an index host nor an index name is configured.
var ErrNoIndex = errors.New("pinecone: index host or index name required")

// PineconeConfig addresses an existing Pinecone index.
type PineconeConfig struct {
	APIKey    string
	IndexName string
	// IndexHost skips the control-plane lookup when set.
	IndexHost string
	Namespace string
	// TextKey is the metadata field holding chunk text. Defaults to "text".
	TextKey string
}

// NewPinecone connects to an existing index. The index is read from; nothing
// is created or populated here.
func NewPinecone(ctx context.Context, cfg PineconeConfig, embedder embeddings.Embedder) (pinecone.Store, error) {
	host := cfg.IndexHost
	if host == "" {
		if cfg.IndexName == "" {
			return pinecone.Store{}, ErrNoIndex
		}
		var err error
		host, err = resolveIndexHost(ctx, cfg.APIKey, cfg.IndexName)
		if err != nil {
			return pinecone.Store{}, err
		}
	}

	opts := []pinecone.Option{
		pinecone.WithHost(host),
		pinecone.WithEmbedder(embedder),
	}
	if cfg.APIKey != "" {
		opts = append(opts, pinecone.WithAPIKey(cfg.APIKey))
	}
	if cfg.Namespace != "" {
		opts = append(opts, pinecone.WithNameSpace(cfg.Namespace))
	}
	if cfg.TextKey != "" {
		opts = append(opts, pinecone.WithTextKey(cfg.TextKey))
	}

	s, err := pinecone.New(opts...)
	if err != nil {
		return pinecone.Store{}, fmt.Errorf("create pinecone store: %w", err)
	}
	return s, nil
}

func resolveIndexHost(ctx context.Context, apiKey, name string) (string, error) {
	client, err := pc.NewClient(pc.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return "", fmt.Errorf("create pinecone client: %w", err)
	}
	idx, err := client.DescribeIndex(ctx, name)
	if err != nil {
		return "", fmt.Errorf("describe pinecone index %q: %w", name, err)
	}
	if idx.Host == "" {
		return "", fmt.Errorf("pinecone index %q has no host", name)
	}
	return idx.Host, nil
}
