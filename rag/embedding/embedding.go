// Package embedding builds the text embedders used to query the vector index.
package embedding

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	embhf "github.com/tmc/langchaingo/embeddings/huggingface"
	"github.com/tmc/langchaingo/llms/huggingface"
)

// Supported providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderGoogleAI    = "googleai"
	ProviderMock        = "mock"
)

// DefaultHuggingFaceModel produces 384-dimensional vectors and must match the
// model the index was built with.
const DefaultHuggingFaceModel = "sentence-transformers/all-MiniLM-L6-v2"

// DefaultDimension is the vector size of DefaultHuggingFaceModel.
const DefaultDimension = 384

// NewHuggingFace returns an embedder backed by the HuggingFace inference API.
// An empty token falls back to HF_TOKEN / HUGGINGFACEHUB_API_TOKEN.
func NewHuggingFace(token, model string) (embeddings.Embedder, error) {
	if model == "" {
		model = DefaultHuggingFaceModel
	}

	var clientOpts []huggingface.Option
	if token != "" {
		clientOpts = append(clientOpts, huggingface.WithToken(token))
	}
	client, err := huggingface.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create huggingface client: %w", err)
	}

	e, err := embhf.NewHuggingface(
		embhf.WithClient(*client),
		embhf.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create huggingface embedder: %w", err)
	}
	return e, nil
}

// NewGoogleAI wraps a Gemini client (or any EmbedderClient) as an embedder.
func NewGoogleAI(client embeddings.EmbedderClient) (embeddings.Embedder, error) {
	e, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create googleai embedder: %w", err)
	}
	return e, nil
}

// ValidProvider reports whether p names a supported provider.
func ValidProvider(p string) bool {
	switch p {
	case ProviderHuggingFace, ProviderGoogleAI, ProviderMock:
		return true
	}
	return false
}
