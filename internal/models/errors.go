package models

import "errors"

var (
	// ErrExtractionFailed indicates the source bytes could not be read.
	// Ingestion aborts before any document record is created.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingFailed indicates one or more vectors could not be
	// produced. The document's ingestion run moves to the failed state.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrDocumentNotFound indicates the document id is unknown.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentNotReady indicates the document exists but its chunks
	// are not fully embedded and stored yet.
	ErrDocumentNotReady = errors.New("document not ready")

	// ErrChunkNotFound indicates the chunk id is unknown.
	ErrChunkNotFound = errors.New("chunk not found")
)
