package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a fresh directory so a developer's .env does not leak in.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "pinecone", cfg.VectorStore)
	assert.Equal(t, "medical-catboot", cfg.PineconeIndexName)
	assert.Equal(t, "huggingface", cfg.EmbeddingProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLMModel)
	assert.InDelta(t, 0.3, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 3, cfg.RetrieverK)
	assert.Equal(t, 0, cfg.LLMMaxTokens)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t)
	t.Setenv("PINECONE_API_KEY", "pc-key")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("PORT", "9090")
	t.Setenv("VECTOR_STORE", "memory")
	t.Setenv("LLM_TEMPERATURE", "0.1")
	t.Setenv("LLM_MAX_TOKENS", "256")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "pc-key", cfg.PineconeAPIKey)
	assert.Equal(t, "g-key", cfg.GoogleAPIKey)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "memory", cfg.VectorStore)
	assert.InDelta(t, 0.1, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 256, cfg.LLMMaxTokens)
}

func TestLoad_Files(t *testing.T) {
	dir := chdir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile),
		[]byte("PINECONE_API_KEY=from-dotenv\nGOOGLE_API_KEY=g-dotenv\nLOG_LEVEL=debug\n"), 0600))

	yamlFile := filepath.Join(dir, "medichat.yaml")
	require.NoError(t, os.WriteFile(yamlFile,
		[]byte("log_level: warn\npinecone_namespace: medical\n"), 0600))

	cfg, err := Load(New(), yamlFile)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.PineconeAPIKey)
	assert.Equal(t, "g-dotenv", cfg.GoogleAPIKey)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "medical", cfg.PineconeNamespace)

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("PINECONE_API_KEY", "from-env")
		cfg, err := Load(New(), yamlFile)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.PineconeAPIKey)
	})
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdir(t)
	_, err := Load(New(), "does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Port: 8080, RetrieverK: 3, VectorStore: "pinecone", EmbeddingProvider: "mock", LogLevel: "info"}
	}

	c := valid()
	assert.NoError(t, c.Validate())

	c = valid()
	c.Port = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidPort)

	c = valid()
	c.RetrieverK = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidK)

	c = valid()
	c.VectorStore = "chroma"
	assert.ErrorIs(t, c.Validate(), ErrInvalidBackend)

	c = valid()
	c.EmbeddingProvider = "openai"
	assert.ErrorIs(t, c.Validate(), ErrInvalidProvider)

	c = valid()
	c.LLMMaxTokens = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalidMaxTokens)

	c = valid()
	c.LogLevel = "loud"
	assert.Error(t, c.Validate())
}

func TestResolveSystemPrompt(t *testing.T) {
	c := Config{SystemPrompt: "inline {context}"}
	p, err := c.ResolveSystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, "inline {context}", p)

	file := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(file, []byte("from file {context}"), 0600))
	c.SystemPromptFile = file
	p, err = c.ResolveSystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, "from file {context}", p)

	c.SystemPromptFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = c.ResolveSystemPrompt()
	assert.Error(t, err)
}
