package models

import "time"

// Document is a single ingested source.
type Document struct {
	ID         int64
	Title      string
	Content    string
	TotalPages int
	// Ready is false from creation until every chunk has an embedding
	// and is stored. A processing failure flips it back to false.
	Ready     bool
	CreatedAt time.Time
}

// Chunk is a bounded span of a document's text, the unit of retrieval.
// Chunks are immutable after creation except for attaching Embedding.
type Chunk struct {
	ID         int64
	DocumentID int64
	Text       string
	// StartOffset/EndOffset are byte offsets into the parent document's
	// Content. EndOffset = StartOffset + len(Text).
	StartOffset int
	EndOffset   int
	// PageNumber is estimated from character progress through the text,
	// not from real pagination.
	PageNumber int
	// Embedding is nil until the embedder has processed the chunk.
	Embedding []float32
}

// RetrievedChunk is a chunk annotated with its similarity to a query.
type RetrievedChunk struct {
	ChunkID    int64   `json:"chunkId"`
	PageNumber int     `json:"pageNumber"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// DocumentStatus is the readiness view exposed to callers.
type DocumentStatus struct {
	Ready      bool `json:"ready"`
	TotalPages int  `json:"totalPages"`
}

// ChatMessage is one turn of a document conversation. Assistant
// messages carry the retrieved chunks used to ground the answer.
type ChatMessage struct {
	ID         int64
	DocumentID int64
	Role       string
	Content    string
	Context    []RetrievedChunk
	CreatedAt  time.Time
}
