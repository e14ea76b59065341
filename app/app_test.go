package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms/fake"

	"github.com/smallnest/medichat/config"
	"github.com/smallnest/medichat/llms/gemini"
	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/rag/embedding"
	"github.com/smallnest/medichat/rag/store"
)

const seed = `{"content": "Diabetes is a chronic disease that occurs when the pancreas does not produce enough insulin.", "metadata": {"source": "Medical_book.pdf", "page": 12}}
{"content": "Hypertension is persistently elevated blood pressure in the arteries.", "metadata": {"source": "Medical_book.pdf", "page": 40}}
{"content": "Asthma is a condition in which the airways narrow and swell.", "metadata": {"source": "Respiratory.pdf"}}
{"content": "Type 1 diabetes is an autoimmune condition."}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	file := filepath.Join(t.TempDir(), "seed.jsonl")
	require.NoError(t, os.WriteFile(file, []byte(seed), 0600))
	return &config.Config{
		Port:              8080,
		LogLevel:          "info",
		VectorStore:       store.BackendMemory,
		MemorySeedFile:    file,
		EmbeddingProvider: embedding.ProviderMock,
		RetrieverK:        3,
	}
}

func newTestApp(t *testing.T, answers ...string) *App {
	t.Helper()
	cfg := testConfig(t)
	vs, err := NewStore(context.Background(), cfg, nil)
	require.NoError(t, err)

	a, err := NewWithComponents(cfg, Components{
		Store:  vs,
		LLM:    fake.NewFakeLLM(answers),
		Logger: &log.NoOpLogger{},
	})
	require.NoError(t, err)
	return a
}

func TestApp_Retrieve(t *testing.T) {
	a := newTestApp(t, "unused")

	docs, err := a.Retrieve(context.Background(), "What is diabetes?")
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	again, err := a.Retrieve(context.Background(), "What is diabetes?")
	require.NoError(t, err)
	require.Len(t, again, len(docs))
	for i := range docs {
		assert.Equal(t, docs[i].Content, again[i].Content)
	}
}

func TestApp_Ask(t *testing.T) {
	a := newTestApp(t, "Diabetes is a chronic disease affecting insulin production.")
	defer a.Close()

	resp, err := a.Ask(context.Background(), "What is diabetes?")
	require.NoError(t, err)
	assert.Equal(t, "Diabetes is a chronic disease affecting insulin production.", resp.Answer)
	assert.Len(t, resp.Context, 3)

	count := testutil.CollectAndCount(a.Metrics.Registry(), "medichat_chain_node_duration_seconds")
	assert.Equal(t, 2, count)
}

func TestApp_SystemPromptFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SystemPromptFile = filepath.Join(t.TempDir(), "missing.txt")
	vs, err := NewStore(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = NewWithComponents(cfg, Components{Store: vs, LLM: fake.NewFakeLLM([]string{"x"})})
	assert.Error(t, err)
}

func TestNewEmbedder(t *testing.T) {
	cfg := &config.Config{EmbeddingProvider: embedding.ProviderMock, EmbeddingDimension: 16}
	e, err := NewEmbedder(cfg, nil)
	require.NoError(t, err)
	v, err := e.EmbedQuery(context.Background(), "fever")
	require.NoError(t, err)
	assert.Len(t, v, 16)

	cfg.EmbeddingProvider = embedding.ProviderGoogleAI
	_, err = NewEmbedder(cfg, nil)
	assert.Error(t, err)

	cfg.EmbeddingProvider = "word2vec"
	_, err = NewEmbedder(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalidProvider)
}

func TestNewWithComponents_Required(t *testing.T) {
	cfg := testConfig(t)
	_, err := NewWithComponents(cfg, Components{LLM: fake.NewFakeLLM(nil)})
	assert.Error(t, err)

	vs := store.NewInMemoryVectorStore(embedding.NewMockEmbedder(0))
	_, err = NewWithComponents(cfg, Components{Store: vs})
	assert.Error(t, err)
}

func TestGeminiOptions(t *testing.T) {
	cfg := &config.Config{GoogleAPIKey: "test-key", LLMModel: "gemini-2.0-flash", LLMTemperature: 0.3}
	llm, err := gemini.New(context.Background(), GeminiOptions(cfg)...)
	require.NoError(t, err)
	defer llm.Close()

	assert.Equal(t, "gemini-2.0-flash", llm.Model())
	assert.InDelta(t, 0.3, llm.Temperature(), 1e-9)
}

func TestNewWithComponents_InvalidSystemPrompt(t *testing.T) {
	for name, instruction := range map[string]string{
		"no context slot":  "You are a medical assistant. Answer briefly.",
		"unknown variable": `Reply as {"answer": ...} using {context}`,
	} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.SystemPrompt = instruction
			vs, err := NewStore(context.Background(), cfg, nil)
			require.NoError(t, err)

			_, err = NewWithComponents(cfg, Components{Store: vs, LLM: fake.NewFakeLLM([]string{"x"})})
			assert.Error(t, err)
		})
	}
}
