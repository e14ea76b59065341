package embedding

import (
	"context"
	"math"

	"github.com/tmc/langchaingo/embeddings"
)

// MockEmbedder derives a deterministic unit vector from the text. It needs no
// network access and is used by the in-memory store in local runs and tests.
type MockEmbedder struct {
	Dimension int
}

var _ embeddings.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a new MockEmbedder
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &MockEmbedder{
		Dimension: dimension,
	}
}

// EmbedQuery generates the embedding for a single query.
func (e *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.generateEmbedding(text), nil
}

// EmbedDocuments generates embeddings for documents
func (e *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.generateEmbedding(text)
	}
	return vectors, nil
}

func (e *MockEmbedder) generateEmbedding(text string) []float32 {
	embedding := make([]float32, e.Dimension)

	for i := 0; i < e.Dimension; i++ {
		var sum float64
		for j, char := range text {
			sum += float64(char) * float64(i+j+1)
		}
		embedding[i] = float32(math.Sin(sum / 1000.0))
	}

	var norm float32
	for _, v := range embedding {
		norm += v * v
	}
	norm = float32(math.Sqrt(float64(norm)))

	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}

	return embedding
}
