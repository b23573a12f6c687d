package store

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"document-chat/internal/models"
)

// ChromemIndex is a VectorIndex backed by chromem-go, one collection
// per document. chromem answers the similarity queries; a side chunk
// table keeps insertion order, because chromem collections have no
// ordered listing.
type ChromemIndex struct {
	db *chromem.DB

	mu          sync.RWMutex
	chunks      map[int64][]models.Chunk
	nextChunkID int64
}

var _ VectorIndex = (*ChromemIndex)(nil)

// NewChromemIndex creates an index at path, or fully in memory when
// path is empty.
func NewChromemIndex(path string) (*ChromemIndex, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create chromem database: %w", err)
		}
	}
	return &ChromemIndex{
		db:          db,
		chunks:      make(map[int64][]models.Chunk),
		nextChunkID: 1,
	}, nil
}

func collectionName(documentID int64) string {
	return "doc-" + strconv.FormatInt(documentID, 10)
}

func (x *ChromemIndex) Put(ctx context.Context, chunk *models.Chunk) error {
	x.mu.Lock()
	chunk.ID = x.nextChunkID
	x.nextChunkID++
	x.mu.Unlock()

	// Vectorless chunks stay out of the collection so similarity search
	// never sees them; ChunksByDocument still lists them for range scans.
	if len(chunk.Embedding) > 0 {
		collection, err := x.db.GetOrCreateCollection(collectionName(chunk.DocumentID), nil, nil)
		if err != nil {
			return fmt.Errorf("failed to create/get collection: %w", err)
		}
		doc := chromem.Document{
			ID:        strconv.FormatInt(chunk.ID, 10),
			Content:   chunk.Text,
			Embedding: chunk.Embedding,
			Metadata: map[string]string{
				"page":  strconv.Itoa(chunk.PageNumber),
				"start": strconv.Itoa(chunk.StartOffset),
				"end":   strconv.Itoa(chunk.EndOffset),
			},
		}
		if err := collection.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
			return fmt.Errorf("failed to add document: %w", err)
		}
	}

	// Record in the side table only once the collection accepted the
	// chunk, so a failed add leaves no phantom entry.
	x.mu.Lock()
	x.chunks[chunk.DocumentID] = append(x.chunks[chunk.DocumentID], *chunk)
	x.mu.Unlock()
	return nil
}

func (x *ChromemIndex) Query(ctx context.Context, documentID int64, vector []float32, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		k = 5
	}
	collection := x.db.GetCollection(collectionName(documentID), nil)
	if collection == nil {
		return nil, nil
	}
	// The collection holds only embedded chunks, so its count is the
	// true result ceiling; chromem rejects oversized NResults.
	stored := collection.Count()
	if stored == 0 {
		return nil, nil
	}
	if k > stored {
		k = stored
	}
	results, err := collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	retrieved := make([]models.RetrievedChunk, 0, len(results))
	for _, result := range results {
		id, err := strconv.ParseInt(result.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected chunk id %q: %w", result.ID, err)
		}
		page, _ := strconv.Atoi(result.Metadata["page"])
		retrieved = append(retrieved, models.RetrievedChunk{
			ChunkID:    id,
			PageNumber: page,
			Text:       result.Content,
			Similarity: float64(result.Similarity),
		})
	}
	return retrieved, nil
}

func (x *ChromemIndex) ChunksByDocument(_ context.Context, documentID int64) ([]models.Chunk, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	chunks := x.chunks[documentID]
	out := make([]models.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

func (x *ChromemIndex) DropDocument(_ context.Context, documentID int64) error {
	x.mu.Lock()
	delete(x.chunks, documentID)
	x.mu.Unlock()

	// Deleting a collection that never existed is a no-op in chromem.
	if err := x.db.DeleteCollection(collectionName(documentID)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}
