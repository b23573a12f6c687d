package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rag:
  max_words_per_chunk: 200
  top_k: 3
  embedder: ollama
  dimension: 768
embed_llm:
  provider: ollama
  base_url: http://localhost:11434
  model: nomic-embed-text
vector:
  backend: chromem
  path: ./vectors
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.RAG.MaxWordsPerChunk)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, "ollama", cfg.RAG.Embedder)
	assert.Equal(t, "nomic-embed-text", cfg.EmbedLLM.Model)
	assert.Equal(t, IndexChromem, cfg.Vector.Backend)
	assert.Equal(t, "./vectors", cfg.Vector.Path)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag: [not a map"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 500, cfg.RAG.MaxWordsPerChunk)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, EmbedderHash, cfg.RAG.Embedder)
	assert.Equal(t, 768, cfg.RAG.Dimension)
	assert.Equal(t, IndexMemory, cfg.Vector.Backend)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.RAG.MaxWordsPerChunk = 100
	cfg.RAG.Embedder = ProviderOpenAI
	cfg.ApplyDefaults()

	assert.Equal(t, 100, cfg.RAG.MaxWordsPerChunk)
	assert.Equal(t, ProviderOpenAI, cfg.RAG.Embedder)
	assert.Equal(t, 5, cfg.RAG.TopK)
}
