// Package retriever provides the similarity retriever the answer chain and the
// retrieval debug endpoint share.
package retriever

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/rag"
)

// DefaultK is the number of chunks fetched per query.
const DefaultK = 3

// SearchTypeSimilarity is the only supported search type.
const SearchTypeSimilarity = "similarity"

// Config configures a VectorRetriever
type Config struct {
	K int
	// Options are passed through to every SimilaritySearch call,
	// e.g. vectorstores.WithNameSpace.
	Options []vectorstores.Option
	Logger  log.Logger
}

// VectorRetriever returns the top K chunks by similarity. Results are passed
// through in index order without re-ranking, filtering or deduplication.
type VectorRetriever struct {
	retriever schema.Retriever
	k         int
	logger    log.Logger
}

var _ rag.Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever creates a new vector retriever
func NewVectorRetriever(store vectorstores.VectorStore, config Config) *VectorRetriever {
	if config.K <= 0 {
		config.K = DefaultK
	}

	return &VectorRetriever{
		retriever: vectorstores.ToRetriever(store, config.K, config.Options...),
		k:         config.K,
		logger:    log.OrDefault(config.Logger),
	}
}

// K returns the number of chunks fetched per query.
func (r *VectorRetriever) K() int {
	return r.k
}

// SearchType returns the search strategy in use.
func (r *VectorRetriever) SearchType() string {
	return SearchTypeSimilarity
}

// Retrieve retrieves documents based on a query
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]rag.Document, error) {
	schemaDocs, err := r.retriever.GetRelevantDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if len(schemaDocs) > r.k {
		schemaDocs = schemaDocs[:r.k]
	}

	docs := rag.FromSchemaDocuments(schemaDocs)
	r.logger.Debug("retrieved %d documents for query %q", len(docs), query)
	return docs, nil
}
