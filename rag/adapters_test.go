package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/schema"
)

func TestSchemaConversion(t *testing.T) {
	t.Run("FromSchemaDocuments", func(t *testing.T) {
		schemaDocs := []schema.Document{
			{PageContent: "content", Metadata: map[string]any{"source": "src1"}, Score: 0.9},
			{PageContent: "other"},
		}
		docs := FromSchemaDocuments(schemaDocs)
		assert.Len(t, docs, 2)
		assert.Equal(t, "content", docs[0].Content)
		assert.Equal(t, "src1", docs[0].ID)
		assert.InDelta(t, 0.9, docs[0].Score, 1e-6)
		assert.Equal(t, "doc_1", docs[1].ID)
		assert.NotNil(t, docs[1].Metadata)
	})

	t.Run("metadata is copied", func(t *testing.T) {
		meta := map[string]any{"source": "a.pdf"}
		docs := FromSchemaDocuments([]schema.Document{{PageContent: "x", Metadata: meta}})
		docs[0].Metadata["page"] = 3
		_, leaked := meta["page"]
		assert.False(t, leaked)
	})

	t.Run("ToSchemaDocuments", func(t *testing.T) {
		out := ToSchemaDocuments([]Document{{Content: "c", Metadata: map[string]any{"k": "v"}}})
		assert.Len(t, out, 1)
		assert.Equal(t, "c", out[0].PageContent)
		assert.Equal(t, "v", out[0].Metadata["k"])
	})
}
