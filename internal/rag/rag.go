// Package rag ties retrieval and answer generation into the
// question-answering flow and keeps the per-document chat history.
package rag

import (
	"context"
	"strings"

	"document-chat/internal/answer"
	"document-chat/internal/models"
	"document-chat/internal/retrieval"
	"document-chat/internal/store"
)

type RAG struct {
	retrieval *retrieval.Service
	generator answer.Generator
	docs      store.DocumentStore
	topK      int
}

func NewRAG(retrievalSvc *retrieval.Service, generator answer.Generator, docs store.DocumentStore, topK int) *RAG {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	return &RAG{retrieval: retrievalSvc, generator: generator, docs: docs, topK: topK}
}

// Ask retrieves the most relevant chunks, records the question, then
// has the generator phrase an answer over the chunks and records the
// assistant turn with its provenance.
func (r *RAG) Ask(ctx context.Context, documentID int64, question string) (*models.ChatMessage, error) {
	// Retrieval also gates on document readiness; record nothing until
	// it succeeds, so a rejected question leaves no orphaned turn.
	retrieved, err := r.retrieval.Retrieve(ctx, documentID, question, r.topK)
	if err != nil {
		return nil, err
	}

	userMsg := &models.ChatMessage{
		DocumentID: documentID,
		Role:       models.RoleUser,
		Content:    question,
	}
	if err := r.docs.CreateMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	response, err := r.generator.Answer(ctx, joinRetrieved(retrieved), question)
	if err != nil {
		return nil, err
	}

	assistantMsg := &models.ChatMessage{
		DocumentID: documentID,
		Role:       models.RoleAssistant,
		Content:    response,
		Context:    retrieved,
	}
	if err := r.docs.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}
	return assistantMsg, nil
}

// Summarize condenses the chunks whose estimated page is in range.
func (r *RAG) Summarize(ctx context.Context, documentID int64, pageStart, pageEnd *int) (string, error) {
	content, err := r.rangeContent(ctx, documentID, pageStart, pageEnd)
	if err != nil {
		return "", err
	}
	return r.generator.Summarize(ctx, content)
}

// Themes lists the themes found in the chunks of the page range.
func (r *RAG) Themes(ctx context.Context, documentID int64, pageStart, pageEnd *int) (string, error) {
	content, err := r.rangeContent(ctx, documentID, pageStart, pageEnd)
	if err != nil {
		return "", err
	}
	return r.generator.Themes(ctx, content)
}

// Messages returns the document's chat history in creation order.
func (r *RAG) Messages(ctx context.Context, documentID int64) ([]models.ChatMessage, error) {
	if _, err := r.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return r.docs.MessagesByDocument(ctx, documentID)
}

func (r *RAG) rangeContent(ctx context.Context, documentID int64, pageStart, pageEnd *int) (string, error) {
	chunks, err := r.retrieval.RangeChunks(ctx, documentID, pageStart, pageEnd)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return strings.Join(texts, models.ContextSeparator), nil
}

func joinRetrieved(retrieved []models.RetrievedChunk) string {
	texts := make([]string, len(retrieved))
	for i, chunk := range retrieved {
		texts[i] = chunk.Text
	}
	return strings.Join(texts, models.ContextSeparator)
}
