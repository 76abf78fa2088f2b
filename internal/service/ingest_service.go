package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashwinbm/docquiz/internal/config"
	"github.com/ashwinbm/docquiz/internal/domain"
	"github.com/ashwinbm/docquiz/internal/pdf"
	"github.com/ashwinbm/docquiz/internal/repository"
)

// Extractor turns PDF bytes into per-page text. Implemented by pdf.Extract;
// tests supply fakes.
type Extractor func(content []byte) ([]string, error)

// IngestService handles PDF upload, chunking and indexing
type IngestService struct {
	cfg       *config.Config
	sessions  repository.SessionRepository
	retriever Retriever
	extract   Extractor
	splitter  *pdf.Splitter
	log       *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	cfg *config.Config,
	sessions repository.SessionRepository,
	retriever Retriever,
	extract Extractor,
	log *zap.Logger,
) *IngestService {
	if extract == nil {
		extract = pdf.Extract
	}
	return &IngestService{
		cfg:       cfg,
		sessions:  sessions,
		retriever: retriever,
		extract:   extract,
		splitter:  pdf.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		log:       log,
	}
}

// Upload processes an uploaded PDF: extract text, split into overlapping
// chunks, create a fresh session and index the chunks into its collection.
func (s *IngestService) Upload(ctx context.Context, filename string, content []byte) (*domain.UploadResponse, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are allowed", domain.ErrUnsupportedFormat)
	}

	pages, err := s.extract(content)
	if err != nil {
		return nil, err
	}

	chunks := s.chunkPages(pages)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	sessionID := uuid.New().String()
	if err := s.retriever.Index(ctx, sessionID, chunks); err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:         sessionID,
		Collection: s.cfg.Qdrant.CollectionPrefix + sessionID,
		Filename:   filename,
		NumChunks:  len(chunks),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("document ingested",
		zap.String("session_id", sessionID),
		zap.String("filename", filename),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
	)

	return &domain.UploadResponse{
		SessionID: sessionID,
		Message:   "PDF uploaded and processed successfully",
		NumChunks: len(chunks),
	}, nil
}

// chunkPages joins page texts, splits them into overlapping windows and
// tags each chunk with the page its window starts on.
func (s *IngestService) chunkPages(pages []string) []domain.Chunk {
	// Cumulative rune offset of each page start within the joined text
	pageStarts := make([]int, len(pages))
	offset := 0
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n")
			offset++
		}
		pageStarts[i] = offset
		b.WriteString(page)
		offset += len([]rune(page))
	}

	pieces := s.splitter.Split(b.String())
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			Index: i,
			Text:  piece.Text,
			Page:  pageForOffset(pageStarts, piece.Offset),
		}
	}
	return chunks
}

func pageForOffset(pageStarts []int, offset int) int {
	page := 1
	for i, start := range pageStarts {
		if offset >= start {
			page = i + 1
		}
	}
	return page
}

// Delete removes a session: its vector collection, its quizzes and the
// session itself. Unknown sessions fail with ErrNotFound.
func (s *IngestService) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return err
	}

	// A missing collection is not fatal here: the session row is the
	// source of truth and the collection may already be gone.
	if err := s.retriever.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.log.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}
