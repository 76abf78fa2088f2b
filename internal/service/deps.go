package service

import (
	"context"

	"github.com/ashwinbm/docquiz/internal/domain"
)

// Retriever is the session-scoped vector index consumed by the services.
// Implemented by vectorstore.Index; tests supply fakes.
type Retriever interface {
	Index(ctx context.Context, sessionID string, chunks []domain.Chunk) error
	Query(ctx context.Context, sessionID, text string, k int) ([]domain.RetrievedChunk, error)
	Sample(ctx context.Context, sessionID string, n int) ([]domain.Chunk, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Generator is a single-shot completion provider. Implemented by llm.Client.
type Generator interface {
	Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error)
}
