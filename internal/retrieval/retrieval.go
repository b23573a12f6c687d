// Package retrieval answers queries over ready documents: top-k
// similarity search and page-range scans.
package retrieval

import (
	"context"

	"document-chat/internal/embedding"
	"document-chat/internal/models"
	"document-chat/internal/store"
)

const DefaultTopK = 5

type Service struct {
	docs     store.DocumentStore
	index    store.VectorIndex
	embedder embedding.Embedder
}

func NewService(docs store.DocumentStore, index store.VectorIndex, embedder embedding.Embedder) *Service {
	return &Service{docs: docs, index: index, embedder: embedder}
}

// requireReady loads the document and rejects anything not fully
// embedded and stored, including failed and mid-ingestion documents.
func (s *Service) requireReady(ctx context.Context, documentID int64) (*models.Document, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Ready {
		return nil, models.ErrDocumentNotReady
	}
	return doc, nil
}

// Retrieve embeds query and returns the document's top-k chunks by
// cosine similarity, annotated for provenance rendering.
func (s *Service) Retrieve(ctx context.Context, documentID int64, query string, k int) ([]models.RetrievedChunk, error) {
	if _, err := s.requireReady(ctx, documentID); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = DefaultTopK
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.index.Query(ctx, documentID, vector, k)
}

// RangeChunks returns the document's chunks whose estimated page falls
// within [pageStart, pageEnd], in chunk order. Either bound may be nil
// to leave that side open. No similarity ranking is involved.
func (s *Service) RangeChunks(ctx context.Context, documentID int64, pageStart, pageEnd *int) ([]models.Chunk, error) {
	if _, err := s.requireReady(ctx, documentID); err != nil {
		return nil, err
	}
	chunks, err := s.index.ChunksByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	selected := make([]models.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if pageStart != nil && chunk.PageNumber < *pageStart {
			continue
		}
		if pageEnd != nil && chunk.PageNumber > *pageEnd {
			continue
		}
		selected = append(selected, chunk)
	}
	return selected, nil
}

// Status reports readiness and page count for any known document,
// including failed ones.
func (s *Service) Status(ctx context.Context, documentID int64) (models.DocumentStatus, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return models.DocumentStatus{}, err
	}
	return models.DocumentStatus{Ready: doc.Ready, TotalPages: doc.TotalPages}, nil
}
