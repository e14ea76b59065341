package rag

import (
	"context"
	"fmt"
)

// UnknownSource is reported for chunks whose metadata carries no source.
const UnknownSource = "Unknown"

// Document is a chunk of text returned by the vector index.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Source returns the "source" metadata value as text. UnknownSource is
// returned only when the key is absent or nil; an empty value stays empty.
func (d Document) Source() string {
	src, ok := d.SourceValue()
	if !ok || src == nil {
		return UnknownSource
	}
	return fmt.Sprintf("%v", src)
}

// SourceValue returns the raw "source" metadata value and whether it is set.
func (d Document) SourceValue() (any, bool) {
	src, ok := d.Metadata["source"]
	return src, ok
}

// Preview returns at most n characters of the content. It never splits a rune.
func (d Document) Preview(n int) string {
	return Truncate(d.Content, n)
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Retriever fetches the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// RetrieverFunc adapts a function to the Retriever interface.
type RetrieverFunc func(ctx context.Context, query string) ([]Document, error)

// Retrieve calls f(ctx, query).
func (f RetrieverFunc) Retrieve(ctx context.Context, query string) ([]Document, error) {
	return f(ctx, query)
}
