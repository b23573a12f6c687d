// Package ingest drives a document through its processing lifecycle:
// received, chunking, embedding, then ready, with failed reachable from
// the two working states. One background goroutine handles one
// document's run; nothing is retried automatically.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"document-chat/internal/chunker"
	"document-chat/internal/embedding"
	"document-chat/internal/helper"
	"document-chat/internal/models"
	"document-chat/internal/store"
)

type State int

const (
	StateReceived State = iota
	StateChunking
	StateEmbedding
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateChunking:
		return "chunking"
	case StateEmbedding:
		return "embedding"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Manager owns document processing runs.
type Manager struct {
	docs     store.DocumentStore
	index    store.VectorIndex
	embedder embedding.Embedder
	maxWords int

	mu     sync.Mutex
	states map[int64]State
	done   map[int64]chan struct{}
}

func NewManager(docs store.DocumentStore, index store.VectorIndex, embedder embedding.Embedder, maxWords int) *Manager {
	if maxWords <= 0 {
		maxWords = chunker.DefaultMaxWords
	}
	return &Manager{
		docs:     docs,
		index:    index,
		embedder: embedder,
		maxWords: maxWords,
		states:   make(map[int64]State),
		done:     make(map[int64]chan struct{}),
	}
}

// Ingest creates the document record and kicks off processing in the
// background, returning the new document id immediately. The returned
// document is not ready until the run completes; observe readiness via
// the document store or Done.
func (m *Manager) Ingest(ctx context.Context, title, text string, totalPages int) (int64, error) {
	doc := &models.Document{
		Title:      title,
		Content:    text,
		TotalPages: totalPages,
		Ready:      false,
		CreatedAt:  time.Now(),
	}
	if err := m.docs.CreateDocument(ctx, doc); err != nil {
		return 0, err
	}

	done := make(chan struct{})
	m.mu.Lock()
	m.states[doc.ID] = StateReceived
	m.done[doc.ID] = done
	m.mu.Unlock()

	// The run outlives the triggering request.
	go m.process(context.Background(), doc.ID, text, totalPages, done)
	return doc.ID, nil
}

// Reprocess recomputes a document's chunks and vectors from scratch,
// replacing the previous set. It is the explicit re-trigger for failed
// runs and is idempotent for successful ones.
func (m *Manager) Reprocess(ctx context.Context, documentID int64) error {
	doc, err := m.docs.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	// Wait out any in-flight run first, so a stale run cannot keep
	// writing chunks into the set being rebuilt.
	if err := m.waitIdle(ctx, documentID); err != nil {
		return err
	}

	if err := m.docs.SetDocumentReady(ctx, documentID, false); err != nil {
		return err
	}
	if err := m.index.DropDocument(ctx, documentID); err != nil {
		return err
	}

	done := make(chan struct{})
	m.mu.Lock()
	m.states[documentID] = StateReceived
	m.done[documentID] = done
	m.mu.Unlock()

	go m.process(context.Background(), documentID, doc.Content, doc.TotalPages, done)
	return nil
}

// waitIdle blocks until no run for the document is active. Concurrent
// Reprocess calls can start a new run between waits, so it re-checks
// until the channel it waited on is still the latest.
func (m *Manager) waitIdle(ctx context.Context, documentID int64) error {
	for {
		m.mu.Lock()
		ch := m.done[documentID]
		m.mu.Unlock()
		if ch == nil {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		m.mu.Lock()
		latest := m.done[documentID]
		m.mu.Unlock()
		if latest == ch {
			return nil
		}
	}
}

// State reports the lifecycle state of a document's latest run.
func (m *Manager) State(documentID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[documentID]
}

// Done returns a channel closed when the document's current run
// finishes, whether it ended ready or failed. Unknown ids get a closed
// channel.
func (m *Manager) Done(documentID int64) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.done[documentID]
	if !ok {
		ch = make(chan struct{})
		close(ch)
	}
	return ch
}

func (m *Manager) setState(documentID int64, state State) {
	m.mu.Lock()
	m.states[documentID] = state
	m.mu.Unlock()
}

// process runs one ingestion pass. Each run owns its done channel and
// closes it on exit, so an overlapping run can never close a channel a
// later run handed out.
func (m *Manager) process(ctx context.Context, documentID int64, text string, totalPages int, done chan struct{}) {
	defer close(done)

	runID, _ := helper.GenerateUUID()
	logger := log.With().Int64("document_id", documentID).Str("run_id", runID).Logger()
	logger.Info().Msg("Processing document")

	m.setState(documentID, StateChunking)
	chunks := chunker.Split(text, totalPages, m.maxWords)

	m.setState(documentID, StateEmbedding)
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		m.fail(ctx, documentID, logger, err)
		return
	}
	if len(vectors) != len(chunks) {
		m.fail(ctx, documentID, logger, fmt.Errorf("%w: got %d vectors for %d chunks", models.ErrEmbeddingFailed, len(vectors), len(chunks)))
		return
	}

	for i := range chunks {
		if len(vectors[i]) != m.embedder.Dimension() {
			m.fail(ctx, documentID, logger, fmt.Errorf("%w: chunk %d has dimension %d, want %d", models.ErrEmbeddingFailed, i, len(vectors[i]), m.embedder.Dimension()))
			return
		}
		chunks[i].DocumentID = documentID
		chunks[i].Embedding = vectors[i]
		if err := m.index.Put(ctx, &chunks[i]); err != nil {
			m.fail(ctx, documentID, logger, err)
			return
		}
	}

	if err := m.docs.SetDocumentReady(ctx, documentID, true); err != nil {
		m.fail(ctx, documentID, logger, err)
		return
	}
	m.setState(documentID, StateReady)
	logger.Info().Int("chunks", len(chunks)).Msg("Document processing completed")
}

func (m *Manager) fail(ctx context.Context, documentID int64, logger zerolog.Logger, err error) {
	logger.Error().Err(err).Msg("Document processing failed")
	m.setState(documentID, StateFailed)
	if err := m.docs.SetDocumentReady(ctx, documentID, false); err != nil {
		logger.Error().Err(err).Msg("Failed to mark document not ready")
	}
}
