package store

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"document-chat/internal/models"
)

// MemStore is the in-memory implementation of both DocumentStore and
// VectorIndex: maps keyed by monotonically assigned ids, one lock for
// document/message rows and one for chunk sets. Nothing survives a
// process restart.
type MemStore struct {
	mu         sync.RWMutex
	documents  map[int64]models.Document
	messages   map[int64][]models.ChatMessage
	nextDocID  int64
	nextMsgID  int64

	chunkMu     sync.RWMutex
	chunks      map[int64][]models.Chunk
	nextChunkID int64
}

var _ DocumentStore = (*MemStore)(nil)
var _ VectorIndex = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		documents:   make(map[int64]models.Document),
		messages:    make(map[int64][]models.ChatMessage),
		chunks:      make(map[int64][]models.Chunk),
		nextDocID:   1,
		nextMsgID:   1,
		nextChunkID: 1,
	}
}

func (s *MemStore) CreateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = s.nextDocID
	s.nextDocID++
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	s.documents[doc.ID] = *doc
	return nil
}

func (s *MemStore) GetDocument(_ context.Context, id int64) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	return &doc, nil
}

func (s *MemStore) ListDocuments(_ context.Context) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemStore) SetDocumentReady(_ context.Context, id int64, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return models.ErrDocumentNotFound
	}
	doc.Ready = ready
	s.documents[id] = doc
	return nil
}

func (s *MemStore) CreateMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[msg.DocumentID]; !ok {
		return models.ErrDocumentNotFound
	}
	msg.ID = s.nextMsgID
	s.nextMsgID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages[msg.DocumentID] = append(s.messages[msg.DocumentID], *msg)
	return nil
}

func (s *MemStore) MessagesByDocument(_ context.Context, documentID int64) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[documentID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemStore) Put(_ context.Context, chunk *models.Chunk) error {
	s.chunkMu.Lock()
	defer s.chunkMu.Unlock()
	chunk.ID = s.nextChunkID
	s.nextChunkID++
	s.chunks[chunk.DocumentID] = append(s.chunks[chunk.DocumentID], *chunk)
	return nil
}

func (s *MemStore) Query(_ context.Context, documentID int64, vector []float32, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		k = 5
	}
	s.chunkMu.RLock()
	defer s.chunkMu.RUnlock()

	candidates := make([]models.RetrievedChunk, 0, len(s.chunks[documentID]))
	for _, chunk := range s.chunks[documentID] {
		if chunk.Embedding == nil {
			continue
		}
		candidates = append(candidates, models.RetrievedChunk{
			ChunkID:    chunk.ID,
			PageNumber: chunk.PageNumber,
			Text:       chunk.Text,
			Similarity: CosineSimilarity(vector, chunk.Embedding),
		})
	}
	// stable: equal similarities keep insertion order
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (s *MemStore) ChunksByDocument(_ context.Context, documentID int64) ([]models.Chunk, error) {
	s.chunkMu.RLock()
	defer s.chunkMu.RUnlock()
	chunks := s.chunks[documentID]
	out := make([]models.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

func (s *MemStore) DropDocument(_ context.Context, documentID int64) error {
	s.chunkMu.Lock()
	defer s.chunkMu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// CosineSimilarity is the dot product of a and b over the product of
// their magnitudes, and 0 when either magnitude is 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		magA += float64(v) * float64(v)
	}
	for _, v := range b {
		magB += float64(v) * float64(v)
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
