package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ashwinbm/docquiz/internal/config"
	"github.com/ashwinbm/docquiz/internal/domain"
	"github.com/ashwinbm/docquiz/internal/repository"
)

const chatSystemPrompt = `You are a helpful assistant that answers questions about an uploaded document.
Answer strictly from the supplied context. If the context does not contain
the information needed to answer, say so explicitly instead of guessing.`

// ChatService answers questions against a session's document via retrieval
type ChatService struct {
	cfg       *config.Config
	sessions  repository.SessionRepository
	retriever Retriever
	generator Generator
	log       *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	cfg *config.Config,
	sessions repository.SessionRepository,
	retriever Retriever,
	generator Generator,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:       cfg,
		sessions:  sessions,
		retriever: retriever,
		generator: generator,
		log:       log,
	}
}

// Chat retrieves the top-K chunks most similar to the query, prompts the
// model with them as context and returns the answer plus the chunk labels
// that were supplied.
func (s *ChatService) Chat(ctx context.Context, sessionID, query string) (*domain.ChatResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}

	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	retrieved, err := s.retriever.Query(ctx, sessionID, query, s.cfg.Chat.TopK)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(retrieved))
	sources := make([]string, len(retrieved))
	for i, rc := range retrieved {
		contexts[i] = rc.Text
		sources[i] = fmt.Sprintf("Chunk %d", rc.Index)
	}

	user := fmt.Sprintf(`Based on the following context from the document, please answer the question.

Context:
%s

Question: %s

Answer:`, strings.Join(contexts, "\n\n"), query)

	answer, err := s.generator.Complete(ctx, chatSystemPrompt, user, s.cfg.Chat.MaxTokens, s.cfg.Chat.Temperature)
	if err != nil {
		return nil, err
	}

	s.log.Info("chat answered",
		zap.String("session_id", sessionID),
		zap.Int("sources", len(sources)),
	)

	return &domain.ChatResponse{
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
	}, nil
}
