package store

import (
	"context"

	"document-chat/internal/models"
)

// DocumentStore owns document rows and chat history.
type DocumentStore interface {
	// CreateDocument stores doc and assigns its ID.
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	SetDocumentReady(ctx context.Context, id int64, ready bool) error

	// CreateMessage stores msg and assigns its ID.
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	// MessagesByDocument returns a document's chat history in
	// creation order.
	MessagesByDocument(ctx context.Context, documentID int64) ([]models.ChatMessage, error)
}

// VectorIndex holds each document's chunks and answers nearest-neighbour
// queries over their vectors. Implementations must tolerate Query calls
// racing a Put sequence for the same document: such a query sees a
// partial chunk set, never a partial chunk.
type VectorIndex interface {
	// Put attaches chunk to its document's chunk set and assigns the
	// chunk ID. Insertion order is preserved.
	Put(ctx context.Context, chunk *models.Chunk) error
	// Query returns up to k chunks of the document ranked by descending
	// cosine similarity to vector. Ties keep insertion order; chunks
	// without an embedding are not candidates.
	Query(ctx context.Context, documentID int64, vector []float32, k int) ([]models.RetrievedChunk, error)
	// ChunksByDocument returns the document's chunks in insertion order.
	ChunksByDocument(ctx context.Context, documentID int64) ([]models.Chunk, error)
	// DropDocument discards the document's entire chunk set.
	DropDocument(ctx context.Context, documentID int64) error
}
