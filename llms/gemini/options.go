package gemini

import "os"

// Defaults for the hosted chat model.
const (
	DefaultModel          = "gemini-2.0-flash"
	DefaultTemperature    = 0.3
	DefaultEmbeddingModel = "embedding-001"
)

type options struct {
	apiKey         string
	model          string
	temperature    float64
	maxTokens      int
	embeddingModel string
}

// Option configures the Gemini client.
type Option func(*options)

// WithAPIKey sets the Google AI API key. Defaults to GOOGLE_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(o *options) {
		if apiKey != "" {
			o.apiKey = apiKey
		}
	}
}

// WithModel sets the chat model name.
func WithModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

// WithTemperature sets the sampling temperature sent with every request.
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = t
	}
}

// WithMaxTokens caps the generated answer length. Zero keeps the provider default.
func WithMaxTokens(n int) Option {
	return func(o *options) {
		o.maxTokens = n
	}
}

// WithEmbeddingModel sets the model used by CreateEmbedding.
func WithEmbeddingModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.embeddingModel = model
		}
	}
}

func defaultOptions() *options {
	return &options{
		apiKey:         os.Getenv("GOOGLE_API_KEY"),
		model:          DefaultModel,
		temperature:    DefaultTemperature,
		embeddingModel: DefaultEmbeddingModel,
	}
}
