package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLLoader(t *testing.T) {
	ctx := context.Background()
	content := `{"content": "Diabetes is a chronic disease.", "metadata": {"source": "Medical_book.pdf", "page": 12}}

{"text": "Hypertension is high blood pressure."}
`
	tmpFile := filepath.Join(t.TempDir(), "seed.jsonl")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	t.Run("Basic Load", func(t *testing.T) {
		docs, err := NewJSONLLoader(tmpFile).Load(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Diabetes is a chronic disease.", docs[0].Content)
		assert.Equal(t, "Medical_book.pdf", docs[0].Metadata["source"])
		assert.Equal(t, "Hypertension is high blood pressure.", docs[1].Content)
		assert.Equal(t, "Unknown", docs[1].Source())
	})

	t.Run("Load with Metadata", func(t *testing.T) {
		docs, err := NewJSONLLoader(tmpFile, WithMetadata(map[string]any{"source": "seed", "lang": "en"})).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Medical_book.pdf", docs[0].Metadata["source"])
		assert.Equal(t, "seed", docs[1].Metadata["source"])
		assert.Equal(t, "en", docs[1].Metadata["lang"])
	})

	t.Run("Malformed line", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.jsonl")
		require.NoError(t, os.WriteFile(bad, []byte("{not json}\n"), 0644))
		_, err := NewJSONLLoader(bad).Load(ctx)
		assert.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := NewJSONLLoader(filepath.Join(t.TempDir(), "none.jsonl")).Load(ctx)
		assert.Error(t, err)
	})
}
