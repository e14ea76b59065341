package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// ErrNoEmbedder is returned when neither the store nor the call options carry an embedder.
var ErrNoEmbedder = errors.New("no embedder configured")

// InMemoryVectorStore is an in-process cosine-similarity index. It satisfies
// vectorstores.VectorStore so it can stand in for Pinecone.
type InMemoryVectorStore struct {
	mu         sync.RWMutex
	ids        []string
	documents  []schema.Document
	embeddings [][]float32
	embedder   embeddings.Embedder
}

var _ vectorstores.VectorStore = (*InMemoryVectorStore)(nil)

// NewInMemoryVectorStore creates a new InMemoryVectorStore
func NewInMemoryVectorStore(embedder embeddings.Embedder) *InMemoryVectorStore {
	return &InMemoryVectorStore{
		ids:        make([]string, 0),
		documents:  make([]schema.Document, 0),
		embeddings: make([][]float32, 0),
		embedder:   embedder,
	}
}

// AddDocuments embeds and stores docs, returning generated IDs.
func (s *InMemoryVectorStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := s.getOptions(options...)
	if opts.Embedder == nil {
		return nil, ErrNoEmbedder
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}
	vectors, err := opts.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = uuid.NewString()
		s.ids = append(s.ids, ids[i])
		s.documents = append(s.documents, doc)
		s.embeddings = append(s.embeddings, vectors[i])
	}
	return ids, nil
}

// SimilaritySearch returns the numDocuments stored documents closest to query,
// most similar first. Equal scores keep insertion order.
func (s *InMemoryVectorStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	if numDocuments <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	opts := s.getOptions(options...)
	if opts.Embedder == nil {
		return nil, ErrNoEmbedder
	}

	queryEmbedding, err := opts.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.documents) == 0 {
		return []schema.Document{}, nil
	}

	type docScore struct {
		index int
		score float64
	}

	scores := make([]docScore, 0, len(s.documents))
	for i, docEmb := range s.embeddings {
		similarity := cosineSimilarity32(queryEmbedding, docEmb)
		if opts.ScoreThreshold > 0 && similarity < float64(opts.ScoreThreshold) {
			continue
		}
		scores = append(scores, docScore{index: i, score: similarity})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	k := min(numDocuments, len(scores))

	results := make([]schema.Document, k)
	for i := 0; i < k; i++ {
		doc := s.documents[scores[i].index]
		results[i] = schema.Document{
			PageContent: doc.PageContent,
			Metadata:    doc.Metadata,
			Score:       float32(scores[i].score),
		}
	}

	return results, nil
}

// Len returns the number of stored documents.
func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

func (s *InMemoryVectorStore) getOptions(options ...vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{Embedder: s.embedder}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

// cosineSimilarity32 calculates cosine similarity between two float32 vectors
func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
