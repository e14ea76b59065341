// Package config loads medichat settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/rag/embedding"
	"github.com/smallnest/medichat/rag/store"
)

// Keys double as lower-cased environment variable names.
const (
	KeyHost             = "host"
	KeyPort             = "port"
	KeyLogLevel         = "log_level"
	KeySystemPrompt     = "system_prompt"
	KeySystemPromptFile = "system_prompt_file"

	KeyVectorStore    = "vector_store"
	KeyMemorySeedFile = "memory_seed_file"

	KeyPineconeAPIKey    = "pinecone_api_key"
	KeyPineconeIndexName = "pinecone_index_name"
	KeyPineconeIndexHost = "pinecone_index_host"
	KeyPineconeNamespace = "pinecone_namespace"

	KeyEmbeddingProvider  = "embedding_provider"
	KeyEmbeddingModel     = "embedding_model"
	KeyEmbeddingDimension = "embedding_dimension"
	KeyHFToken            = "hf_token"

	KeyGoogleAPIKey   = "google_api_key"
	KeyLLMModel       = "llm_model"
	KeyLLMTemperature = "llm_temperature"
	KeyLLMMaxTokens   = "llm_max_tokens"

	KeyRetrieverK = "retriever_k"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

var (
	// ErrInvalidPort is returned for ports outside 1-65535.
	ErrInvalidPort = errors.New("invalid port")
	// ErrInvalidK is returned for a non-positive retriever K.
	ErrInvalidK = errors.New("retriever k must be positive")
	// ErrInvalidBackend is returned for an unknown vector store.
	ErrInvalidBackend = errors.New("unknown vector store")
	// ErrInvalidProvider is returned for an unknown embedding provider.
	ErrInvalidProvider = errors.New("unknown embedding provider")
	// ErrInvalidMaxTokens is returned for a negative token limit.
	ErrInvalidMaxTokens = errors.New("llm max tokens must not be negative")
)

// Config holds the application configuration.
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	SystemPrompt     string `mapstructure:"system_prompt"`
	SystemPromptFile string `mapstructure:"system_prompt_file"`

	VectorStore    string `mapstructure:"vector_store"`
	MemorySeedFile string `mapstructure:"memory_seed_file"`

	PineconeAPIKey    string `mapstructure:"pinecone_api_key"`
	PineconeIndexName string `mapstructure:"pinecone_index_name"`
	PineconeIndexHost string `mapstructure:"pinecone_index_host"`
	PineconeNamespace string `mapstructure:"pinecone_namespace"`

	EmbeddingProvider  string `mapstructure:"embedding_provider"`
	EmbeddingModel     string `mapstructure:"embedding_model"`
	EmbeddingDimension int    `mapstructure:"embedding_dimension"`
	HFToken            string `mapstructure:"hf_token"`

	GoogleAPIKey   string  `mapstructure:"google_api_key"`
	LLMModel       string  `mapstructure:"llm_model"`
	LLMTemperature float64 `mapstructure:"llm_temperature"`
	// LLMMaxTokens caps answer length; 0 keeps the model default.
	LLMMaxTokens int `mapstructure:"llm_max_tokens"`

	RetrieverK int `mapstructure:"retriever_k"`
}

// New returns a viper instance with defaults set and environment lookup enabled.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyHost, "0.0.0.0")
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeySystemPrompt, "")
	v.SetDefault(KeySystemPromptFile, "")

	v.SetDefault(KeyVectorStore, store.BackendPinecone)
	v.SetDefault(KeyMemorySeedFile, "")

	// Unmarshal only sees keys viper already knows, so every key gets a default.
	v.SetDefault(KeyPineconeAPIKey, "")
	v.SetDefault(KeyPineconeIndexName, "medical-catboot")
	v.SetDefault(KeyPineconeIndexHost, "")
	v.SetDefault(KeyPineconeNamespace, "")

	v.SetDefault(KeyEmbeddingProvider, embedding.ProviderHuggingFace)
	v.SetDefault(KeyEmbeddingModel, "")
	v.SetDefault(KeyEmbeddingDimension, embedding.DefaultDimension)
	v.SetDefault(KeyHFToken, "")

	v.SetDefault(KeyGoogleAPIKey, "")
	v.SetDefault(KeyLLMModel, "gemini-2.0-flash")
	v.SetDefault(KeyLLMTemperature, 0.3)
	v.SetDefault(KeyLLMMaxTokens, 0)

	v.SetDefault(KeyRetrieverK, 3)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads DotEnvFile (if present) and configFile (if set) into v and
// decodes the result. Environment variables take precedence over both files.
// API keys are not checked here; they fail when their client is built.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if _, err := os.Stat(DotEnvFile); err == nil {
		dv := viper.New()
		dv.SetConfigFile(DotEnvFile)
		dv.SetConfigType("dotenv")
		if err := dv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", DotEnvFile, err)
		}
		if err := v.MergeConfigMap(dv.AllSettings()); err != nil {
			return nil, fmt.Errorf("merge %s: %w", DotEnvFile, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects malformed values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.RetrieverK <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidK, c.RetrieverK)
	}
	if c.LLMMaxTokens < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxTokens, c.LLMMaxTokens)
	}
	switch c.VectorStore {
	case store.BackendPinecone, store.BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.VectorStore)
	}
	if !embedding.ValidProvider(c.EmbeddingProvider) {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.EmbeddingProvider)
	}
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ResolveSystemPrompt returns the configured instruction. A prompt file wins
// over the inline value; an empty result selects the built-in prompt.
func (c *Config) ResolveSystemPrompt() (string, error) {
	if c.SystemPromptFile == "" {
		return c.SystemPrompt, nil
	}
	b, err := os.ReadFile(c.SystemPromptFile)
	if err != nil {
		return "", fmt.Errorf("read system prompt file: %w", err)
	}
	return string(b), nil
}
