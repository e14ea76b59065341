// Package gemini wraps the langchaingo Google AI client with the settings
// medichat answers with.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ErrNotSetAuth is returned when no API key is available.
var ErrNotSetAuth = errors.New("gemini: GOOGLE_API_KEY not set")

// LLM is a Gemini chat model with a fixed temperature.
type LLM struct {
	client      *googleai.GoogleAI
	model       string
	temperature float64
	maxTokens   int
}

var _ llms.Model = (*LLM)(nil)

// New creates a Gemini client.
//
//	llm, err := gemini.New(ctx,
//		gemini.WithAPIKey(key),
//		gemini.WithTemperature(0.3),
//	)
func New(ctx context.Context, opts ...Option) (*LLM, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.apiKey == "" {
		return nil, ErrNotSetAuth
	}

	clientOpts := []googleai.Option{
		googleai.WithAPIKey(o.apiKey),
		googleai.WithDefaultModel(o.model),
		googleai.WithDefaultTemperature(o.temperature),
		googleai.WithDefaultEmbeddingModel(o.embeddingModel),
	}
	if o.maxTokens > 0 {
		clientOpts = append(clientOpts, googleai.WithDefaultMaxTokens(o.maxTokens))
	}

	client, err := googleai.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create googleai client: %w", err)
	}

	return &LLM{
		client:      client,
		model:       o.model,
		temperature: o.temperature,
		maxTokens:   o.maxTokens,
	}, nil
}

// Model returns the configured model name.
func (l *LLM) Model() string {
	return l.model
}

// Temperature returns the configured sampling temperature.
func (l *LLM) Temperature() float64 {
	return l.temperature
}

// GenerateContent sends messages to Gemini. Caller options override the
// configured temperature.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	callOpts := append([]llms.CallOption{llms.WithTemperature(l.temperature)}, options...)
	return l.client.GenerateContent(ctx, messages, callOpts...)
}

// Call generates a reply to a single prompt.
func (l *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l, prompt, options...)
}

// CreateEmbedding embeds texts with the configured embedding model, so the
// client can back an embeddings.Embedder.
func (l *LLM) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return l.client.CreateEmbedding(ctx, texts)
}

// Close releases the underlying connection.
func (l *LLM) Close() error {
	return l.client.Close()
}
