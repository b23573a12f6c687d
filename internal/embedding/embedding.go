package embedding

import (
	"context"
	"fmt"

	"document-chat/internal/models"
)

// batchSize bounds how many texts are embedded per group so batch
// calls keep peak memory and upstream concurrency flat.
const batchSize = 10

// Embedder maps text to a fixed-dimension unit-normalized vector.
// Implementations must keep the dimension constant for their lifetime;
// vectors from different dimensions must never be compared.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds texts in fixed-size groups and returns vectors
	// in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// embedGroups runs embed over texts in groups of batchSize, failing the
// whole batch on the first group error.
func embedGroups(ctx context.Context, texts []string, embed func(context.Context, []string) ([][]float32, error)) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		group, err := embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %v", models.ErrEmbeddingFailed, start, end, err)
		}
		if len(group) != end-start {
			return nil, fmt.Errorf("%w: batch %d-%d: got %d vectors for %d texts", models.ErrEmbeddingFailed, start, end, len(group), end-start)
		}
		vectors = append(vectors, group...)
	}
	return vectors, nil
}
