// Package loader reads pre-chunked documents from disk.
package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/smallnest/medichat/rag"
)

// JSONLLoader loads one document per line. Each line is an object with a
// "content" (or "text") string and an optional "metadata" object.
type JSONLLoader struct {
	filePath string
	metadata map[string]any
}

// JSONLLoaderOption configures the JSONLLoader
type JSONLLoaderOption func(*JSONLLoader)

// WithMetadata sets metadata merged into every loaded document. Per-line
// metadata wins on conflicts.
func WithMetadata(metadata map[string]any) JSONLLoaderOption {
	return func(l *JSONLLoader) {
		maps.Copy(l.metadata, metadata)
	}
}

// NewJSONLLoader creates a new JSONLLoader
func NewJSONLLoader(filePath string, opts ...JSONLLoaderOption) *JSONLLoader {
	l := &JSONLLoader{
		filePath: filePath,
		metadata: make(map[string]any),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type jsonlRecord struct {
	Content  string         `json:"content"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Load reads the file. Blank lines are skipped; a malformed line is an error.
func (l *JSONLLoader) Load(ctx context.Context) ([]rag.Document, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var documents []rag.Document
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", l.filePath, lineNumber, err)
		}
		content := rec.Content
		if content == "" {
			content = rec.Text
		}

		metadata := make(map[string]any, len(l.metadata)+len(rec.Metadata))
		maps.Copy(metadata, l.metadata)
		maps.Copy(metadata, rec.Metadata)

		documents = append(documents, rag.Document{
			ID:       fmt.Sprintf("%s_line_%d", l.filePath, lineNumber),
			Content:  content,
			Metadata: metadata,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", l.filePath, err)
	}

	return documents, nil
}
