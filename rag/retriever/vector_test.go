package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/rag"
	"github.com/smallnest/medichat/rag/embedding"
	"github.com/smallnest/medichat/rag/store"
)

type mockVectorStore struct {
	docs      []schema.Document
	err       error
	lastK     int
	lastQuery string
	lastOpts  vectorstores.Options
}

func (m *mockVectorStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	m.docs = append(m.docs, docs...)
	return make([]string, len(docs)), nil
}

func (m *mockVectorStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	m.lastK = numDocuments
	m.lastQuery = query
	m.lastOpts = vectorstores.Options{}
	for _, opt := range options {
		opt(&m.lastOpts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func TestVectorRetriever(t *testing.T) {
	ctx := context.Background()
	vs := &mockVectorStore{
		docs: []schema.Document{
			{PageContent: "content 1", Metadata: map[string]any{"source": "doc1"}},
			{PageContent: "content 2", Metadata: map[string]any{"source": "doc2"}},
		},
	}

	t.Run("Basic Retrieve", func(t *testing.T) {
		r := NewVectorRetriever(vs, Config{Logger: &log.NoOpLogger{}})
		docs, err := r.Retrieve(ctx, "test query")
		require.NoError(t, err)
		assert.Len(t, docs, 2)
		assert.Equal(t, "doc1", docs[0].ID)
		assert.Equal(t, "doc2", docs[1].Source())
		assert.Equal(t, DefaultK, vs.lastK)
		assert.Equal(t, "test query", vs.lastQuery)
	})

	t.Run("defaults", func(t *testing.T) {
		r := NewVectorRetriever(vs, Config{K: -1})
		assert.Equal(t, DefaultK, r.K())
		assert.Equal(t, SearchTypeSimilarity, r.SearchType())
	})

	t.Run("caps oversized results", func(t *testing.T) {
		big := &mockVectorStore{}
		for i := 0; i < 5; i++ {
			big.docs = append(big.docs, schema.Document{PageContent: "x"})
		}
		r := NewVectorRetriever(big, Config{K: 3})
		docs, err := r.Retrieve(ctx, "q")
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("passes options", func(t *testing.T) {
		r := NewVectorRetriever(vs, Config{Options: []vectorstores.Option{vectorstores.WithNameSpace("medical")}})
		_, err := r.Retrieve(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, "medical", vs.lastOpts.NameSpace)
	})

	t.Run("propagates errors", func(t *testing.T) {
		boom := errors.New("index unavailable")
		r := NewVectorRetriever(&mockVectorStore{err: boom}, Config{})
		_, err := r.Retrieve(ctx, "q")
		assert.ErrorIs(t, err, boom)
	})
}

func TestVectorRetriever_InMemory(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemoryVectorStore(embedding.NewMockEmbedder(64))
	_, err := s.AddDocuments(ctx, []schema.Document{
		{PageContent: "Diabetes is a disease that occurs when blood glucose is too high.", Metadata: map[string]any{"source": "a.pdf"}},
		{PageContent: "Asthma is a condition in which airways narrow and swell.", Metadata: map[string]any{"source": "b.pdf"}},
		{PageContent: "Hypertension is a condition of elevated blood pressure.", Metadata: map[string]any{"source": "c.pdf"}},
		{PageContent: "Migraine is a headache of varying intensity.", Metadata: map[string]any{"source": "d.pdf"}},
		{PageContent: "Anemia is a lack of healthy red blood cells."},
	})
	require.NoError(t, err)

	r := NewVectorRetriever(s, Config{})

	first, err := r.Retrieve(ctx, "What is diabetes?")
	require.NoError(t, err)
	assert.Len(t, first, 3)

	second, err := r.Retrieve(ctx, "What is diabetes?")
	require.NoError(t, err)

	sources := func(docs []rag.Document) []string {
		out := make([]string, len(docs))
		for i, d := range docs {
			out[i] = d.Source()
		}
		return out
	}
	assert.Equal(t, sources(first), sources(second))
}
