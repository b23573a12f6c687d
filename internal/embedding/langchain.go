package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-chat/internal/config"
	"document-chat/internal/models"
)

// LangchainEmbedder wraps a langchaingo embeddings client. The client
// is built lazily on first use; sync.Once serializes concurrent first
// callers so exactly one initialization runs.
type LangchainEmbedder struct {
	cfg       config.LLMConfig
	dimension int

	initOnce sync.Once
	initErr  error
	embedder *embeddings.EmbedderImpl
}

// NewOpenAIEmbedder embeds via an OpenAI-compatible endpoint.
func NewOpenAIEmbedder(cfg config.LLMConfig, dimension int) *LangchainEmbedder {
	return &LangchainEmbedder{cfg: cfg, dimension: dimension}
}

// NewOllamaEmbedder embeds via a local Ollama server.
func NewOllamaEmbedder(cfg config.LLMConfig, dimension int) *LangchainEmbedder {
	cfg.Provider = config.ProviderOllama
	return &LangchainEmbedder{cfg: cfg, dimension: dimension}
}

func (e *LangchainEmbedder) Dimension() int { return e.dimension }

func (e *LangchainEmbedder) init() error {
	e.initOnce.Do(func() {
		log.Debug().
			Str("provider", e.cfg.Provider).
			Str("base_url", e.cfg.BaseURL).
			Str("model", e.cfg.Model).
			Msg("Initializing embedder")

		var client embeddings.EmbedderClient
		var err error
		switch e.cfg.Provider {
		case config.ProviderOllama:
			client, err = ollama.New(
				ollama.WithServerURL(e.cfg.BaseURL),
				ollama.WithModel(e.cfg.Model),
			)
		default:
			client, err = openai.New(
				openai.WithBaseURL(e.cfg.BaseURL),
				openai.WithToken(strings.TrimPrefix(e.cfg.Key, "Bearer ")),
				openai.WithModel(e.cfg.Model),
				openai.WithEmbeddingModel(e.cfg.Model),
			)
		}
		if err != nil {
			e.initErr = fmt.Errorf("%w: init: %v", models.ErrEmbeddingFailed, err)
			return
		}
		e.embedder, e.initErr = embeddings.NewEmbedder(client)
		if e.initErr != nil {
			e.initErr = fmt.Errorf("%w: init: %v", models.ErrEmbeddingFailed, e.initErr)
		}
	})
	return e.initErr
}

func (e *LangchainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.init(); err != nil {
		return nil, err
	}
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingFailed, err)
	}
	if len(vector) != e.dimension {
		return nil, fmt.Errorf("%w: got dimension %d, want %d", models.ErrEmbeddingFailed, len(vector), e.dimension)
	}
	return vector, nil
}

func (e *LangchainEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.init(); err != nil {
		return nil, err
	}
	return embedGroups(ctx, texts, func(ctx context.Context, group []string) ([][]float32, error) {
		vectors, err := e.embedder.EmbedDocuments(ctx, group)
		if err != nil {
			return nil, err
		}
		for _, vector := range vectors {
			if len(vector) != e.dimension {
				return nil, fmt.Errorf("got dimension %d, want %d", len(vector), e.dimension)
			}
		}
		return vectors, nil
	})
}
