package rag

import (
	"fmt"
	"maps"

	"github.com/tmc/langchaingo/schema"
)

// FromSchemaDocuments converts langchaingo documents, preserving order.
func FromSchemaDocuments(schemaDocs []schema.Document) []Document {
	docs := make([]Document, len(schemaDocs))
	for i, schemaDoc := range schemaDocs {
		docs[i] = Document{
			Content:  schemaDoc.PageContent,
			Metadata: convertSchemaMetadata(schemaDoc.Metadata),
			Score:    float64(schemaDoc.Score),
		}

		if source, ok := schemaDoc.Metadata["source"]; ok {
			docs[i].ID = fmt.Sprintf("%v", source)
		} else {
			docs[i].ID = fmt.Sprintf("doc_%d", i)
		}
	}
	return docs
}

// ToSchemaDocuments converts documents back into langchaingo documents.
func ToSchemaDocuments(docs []Document) []schema.Document {
	schemaDocs := make([]schema.Document, len(docs))
	for i, doc := range docs {
		schemaDocs[i] = schema.Document{
			PageContent: doc.Content,
			Metadata:    convertSchemaMetadata(doc.Metadata),
			Score:       float32(doc.Score),
		}
	}
	return schemaDocs
}

func convertSchemaMetadata(metadata map[string]any) map[string]any {
	result := make(map[string]any, len(metadata))
	maps.Copy(result, metadata)
	return result
}
