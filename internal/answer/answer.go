// Package answer is the boundary to the language model that phrases
// responses from retrieved context. The core never depends on a
// concrete model; callers inject a Generator.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"document-chat/internal/config"
	"document-chat/internal/models"
)

// Generator phrases natural-language output from document content.
type Generator interface {
	// Answer responds to question using promptContext, the
	// similarity-ranked chunk texts joined by blank lines.
	Answer(ctx context.Context, promptContext, question string) (string, error)
	// Summarize condenses content (a page-range chunk concatenation).
	Summarize(ctx context.Context, content string) (string, error)
	// Themes lists the main themes found in content.
	Themes(ctx context.Context, content string) (string, error)
}

// LLMGenerator is a langchaingo-backed Generator.
type LLMGenerator struct {
	cfg config.LLMConfig
}

var _ Generator = (*LLMGenerator)(nil)

func NewLLMGenerator(cfg config.LLMConfig) *LLMGenerator {
	return &LLMGenerator{cfg: cfg}
}

func (g *LLMGenerator) Answer(ctx context.Context, promptContext, question string) (string, error) {
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, promptContext, question)
	return g.generate(ctx, prompt)
}

func (g *LLMGenerator) Summarize(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf(models.SummaryPromptTemplate, content)
	return g.generate(ctx, prompt)
}

func (g *LLMGenerator) Themes(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf(models.ThemesPromptTemplate, content)
	return g.generate(ctx, prompt)
}

func (g *LLMGenerator) generate(ctx context.Context, prompt string) (string, error) {
	log.Debug().Str("model", g.cfg.Model).Msg("Generating content")

	var llm llms.Model
	var err error
	switch g.cfg.Provider {
	case config.ProviderOllama:
		llm, err = ollama.New(
			ollama.WithServerURL(g.cfg.BaseURL),
			ollama.WithModel(g.cfg.Model),
		)
	default:
		llm, err = openai.New(
			openai.WithBaseURL(g.cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(g.cfg.Key, "Bearer ")),
			openai.WithModel(g.cfg.Model),
		)
	}
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("empty model response")
	}
	return res.Choices[0].Content, nil
}
