package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-chat/internal/models"
)

func newTestDocument(t *testing.T, s *MemStore) *models.Document {
	t.Helper()
	doc := &models.Document{Title: "Test Document", Content: "some text", TotalPages: 3}
	require.NoError(t, s.CreateDocument(context.Background(), doc))
	return doc
}

func TestMemStore_CreateDocument_AssignsSequentialIDs(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	first := &models.Document{Title: "first"}
	second := &models.Document{Title: "second"}
	require.NoError(t, s.CreateDocument(ctx, first))
	require.NoError(t, s.CreateDocument(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestMemStore_GetDocument_NotFound(t *testing.T) {
	s := NewMemStore()

	_, err := s.GetDocument(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestMemStore_ListDocuments(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateDocument(ctx, &models.Document{Title: fmt.Sprintf("doc %d", i)}))
	}

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, int64(1), docs[0].ID)
	assert.Equal(t, int64(3), docs[2].ID)
}

func TestMemStore_SetDocumentReady(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	require.NoError(t, s.SetDocumentReady(ctx, doc.ID, true))
	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, got.Ready)

	require.NoError(t, s.SetDocumentReady(ctx, doc.ID, false))
	got, err = s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, got.Ready)

	assert.ErrorIs(t, s.SetDocumentReady(ctx, 99, true), models.ErrDocumentNotFound)
}

func TestMemStore_Messages(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	user := &models.ChatMessage{DocumentID: doc.ID, Role: models.RoleUser, Content: "question"}
	assistant := &models.ChatMessage{DocumentID: doc.ID, Role: models.RoleAssistant, Content: "answer"}
	require.NoError(t, s.CreateMessage(ctx, user))
	require.NoError(t, s.CreateMessage(ctx, assistant))

	msgs, err := s.MessagesByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)

	err = s.CreateMessage(ctx, &models.ChatMessage{DocumentID: 99, Content: "orphan"})
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestMemStore_Put_PreservesInsertionOrder(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	for i := 0; i < 4; i++ {
		chunk := &models.Chunk{DocumentID: doc.ID, Text: fmt.Sprintf("chunk %d", i)}
		require.NoError(t, s.Put(ctx, chunk))
		assert.Equal(t, int64(i+1), chunk.ID)
	}

	chunks, err := s.ChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	for i, chunk := range chunks {
		assert.Equal(t, fmt.Sprintf("chunk %d", i), chunk.Text)
	}
}

func TestMemStore_Query_RanksByDescendingSimilarity(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	vectors := [][]float32{
		{0, 1, 0},
		{0.6, 0.8, 0},
		{1, 0, 0}, // chunk 3, identical direction to the query
		{0.8, 0.6, 0},
	}
	for i, vector := range vectors {
		chunk := &models.Chunk{DocumentID: doc.ID, Text: fmt.Sprintf("chunk %d", i+1), Embedding: vector}
		require.NoError(t, s.Put(ctx, chunk))
	}

	results, err := s.Query(ctx, doc.ID, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "chunk 3", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Equal(t, "chunk 4", results[1].Text)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestMemStore_Query_TiesKeepInsertionOrder(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	for i := 0; i < 3; i++ {
		chunk := &models.Chunk{DocumentID: doc.ID, Text: fmt.Sprintf("chunk %d", i), Embedding: []float32{1, 0}}
		require.NoError(t, s.Put(ctx, chunk))
	}

	results, err := s.Query(ctx, doc.ID, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, fmt.Sprintf("chunk %d", i), result.Text)
	}
}

func TestMemStore_Query_SkipsChunksWithoutVectors(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	require.NoError(t, s.Put(ctx, &models.Chunk{DocumentID: doc.ID, Text: "no vector"}))
	require.NoError(t, s.Put(ctx, &models.Chunk{DocumentID: doc.ID, Text: "embedded", Embedding: []float32{1, 0}}))

	results, err := s.Query(ctx, doc.ID, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "embedded", results[0].Text)
}

func TestMemStore_Query_DocumentIsolation(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	first := newTestDocument(t, s)
	second := newTestDocument(t, s)

	require.NoError(t, s.Put(ctx, &models.Chunk{DocumentID: first.ID, Text: "a", Embedding: []float32{1, 0}}))
	require.NoError(t, s.Put(ctx, &models.Chunk{DocumentID: second.ID, Text: "b", Embedding: []float32{1, 0}}))

	results, err := s.Query(ctx, first.ID, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Text)
}

func TestMemStore_DropDocument(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	require.NoError(t, s.Put(ctx, &models.Chunk{DocumentID: doc.ID, Text: "chunk", Embedding: []float32{1}}))
	require.NoError(t, s.DropDocument(ctx, doc.ID))

	chunks, err := s.ChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMemStore_QueryDuringConcurrentPuts(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	doc := newTestDocument(t, s)

	const total = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			_ = s.Put(ctx, &models.Chunk{DocumentID: doc.ID, Text: fmt.Sprintf("chunk %d", i), Embedding: []float32{1, 0}})
		}
	}()

	// queries racing the put sequence see a partial set, never an error
	for {
		results, err := s.Query(ctx, doc.ID, []float32{1, 0}, total)
		require.NoError(t, err)
		require.LessOrEqual(t, len(results), total)
		select {
		case <-done:
			results, err := s.Query(ctx, doc.ID, []float32{1, 0}, total)
			require.NoError(t, err)
			assert.Len(t, results, total)
			return
		default:
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{0.6, 0.8}, []float32{0.6, 0.8}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	// zero magnitude is defined as 0, not NaN
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, CosineSimilarity(nil, []float32{1, 0}))
}
