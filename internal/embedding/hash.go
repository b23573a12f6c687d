package embedding

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const hashDimension = 384

// HashEmbedder produces deterministic embeddings from character and
// word features of the text. It needs no model or network and is the
// default backend; relevance is weaker than a model-based embedder but
// identical inputs always map to identical vectors.
type HashEmbedder struct {
	initOnce sync.Once
}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

func (e *HashEmbedder) Dimension() int { return hashDimension }

func (e *HashEmbedder) init() {
	e.initOnce.Do(func() {
		log.Debug().Int("dimension", hashDimension).Msg("Initialized hash embedder")
	})
}

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.init()

	clean := strings.ToLower(strings.Join(strings.Fields(text), " "))
	vector := make([]float32, hashDimension)

	for _, r := range clean {
		idx := int(r) % hashDimension
		vector[idx] += float32(math.Sin(float64(r)*0.1) * 0.1)
	}

	for i, word := range strings.Split(clean, " ") {
		for j, r := range word {
			idx := (int(r) + i*j) % hashDimension
			vector[idx] += float32(math.Cos(float64(r)*0.1) * 0.05)
		}
	}

	normalize(vector)
	return vector, nil
}

func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedGroups(ctx, texts, func(ctx context.Context, group []string) ([][]float32, error) {
		vectors := make([][]float32, len(group))
		for i, text := range group {
			vector, err := e.Embed(ctx, text)
			if err != nil {
				return nil, err
			}
			vectors[i] = vector
		}
		return vectors, nil
	})
}

func normalize(vector []float32) {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return
	}
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / magnitude)
	}
}
