package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(vector []float32) float64 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestHashEmbedder_Dimension(t *testing.T) {
	e := NewHashEmbedder()
	assert.Equal(t, 384, e.Dimension())
}

func TestHashEmbedder_UnitNorm(t *testing.T) {
	e := NewHashEmbedder()

	vector, err := e.Embed(context.Background(), "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	require.Len(t, vector, e.Dimension())
	assert.InDelta(t, 1.0, magnitude(vector), 1e-5)
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	first, err := e.Embed(ctx, "some document text")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "some document text")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a fresh embedder produces the same vectors
	third, err := NewHashEmbedder().Embed(ctx, "some document text")
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestHashEmbedder_WhitespaceNormalized(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "Hello   world")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashEmbedder_DistinctTexts(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "first text")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "completely different content")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	e := NewHashEmbedder()

	vector, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vector, e.Dimension())
	assert.Zero(t, magnitude(vector))
}

func TestHashEmbedder_BatchPreservesOrder(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	// more texts than one batch group
	texts := make([]string, 27)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk number %d with some content", i)
	}

	vectors, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i], "vector %d out of order", i)
	}
}

func TestHashEmbedder_BatchEmpty(t *testing.T) {
	e := NewHashEmbedder()

	vectors, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestHashEmbedder_ConcurrentFirstCalls(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vector, err := e.Embed(ctx, "concurrent init")
			assert.NoError(t, err)
			assert.Len(t, vector, e.Dimension())
		}()
	}
	wg.Wait()
}
