package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	EmbedderHash = "hash"

	IndexMemory   = "memory"
	IndexChromem  = "chromem"
	IndexPostgres = "postgres"
)

type Config struct {
	RAG          RAGConfig      `yaml:"rag"`
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	Vector       VectorConfig   `yaml:"vector"`
	Database     DatabaseConfig `yaml:"database"`
}

type RAGConfig struct {
	// MaxWordsPerChunk bounds chunk size at ingestion time.
	MaxWordsPerChunk int `yaml:"max_words_per_chunk"`
	// TopK is the default number of chunks returned by retrieval.
	TopK int `yaml:"top_k"`
	// Embedder selects the embedding backend: hash, openai or ollama.
	Embedder string `yaml:"embedder"`
	// Dimension is the embedding size for model-based backends.
	Dimension int `yaml:"dimension"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type VectorConfig struct {
	// Backend selects the vector index: memory, chromem or postgres.
	Backend string `yaml:"backend"`
	// Path is the chromem database directory; empty means in-memory.
	Path string `yaml:"path"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration that works with no external services.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.RAG.MaxWordsPerChunk <= 0 {
		c.RAG.MaxWordsPerChunk = 500
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.Embedder == "" {
		c.RAG.Embedder = EmbedderHash
	}
	if c.RAG.Dimension <= 0 {
		c.RAG.Dimension = 768
	}
	if c.Vector.Backend == "" {
		c.Vector.Backend = IndexMemory
	}
}
