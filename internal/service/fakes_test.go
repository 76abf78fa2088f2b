package service

import (
	"context"
	"fmt"

	"github.com/ashwinbm/docquiz/internal/config"
	"github.com/ashwinbm/docquiz/internal/domain"
)

type fakeRetriever struct {
	indexed      map[string][]domain.Chunk
	indexErr     error
	queryResults []domain.RetrievedChunk
	queryErr     error
	sampleChunks []domain.Chunk
	sampleErr    error
	deleteErr    error
	deleted      []string
}

func newFakeRetriever() *fakeRetriever {
	return &fakeRetriever{indexed: make(map[string][]domain.Chunk)}
}

func (f *fakeRetriever) Index(_ context.Context, sessionID string, chunks []domain.Chunk) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed[sessionID] = chunks
	return nil
}

func (f *fakeRetriever) Query(_ context.Context, sessionID, _ string, k int) ([]domain.RetrievedChunk, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if k < len(f.queryResults) {
		return f.queryResults[:k], nil
	}
	return f.queryResults, nil
}

func (f *fakeRetriever) Sample(_ context.Context, sessionID string, n int) ([]domain.Chunk, error) {
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	if n < len(f.sampleChunks) {
		return f.sampleChunks[:n], nil
	}
	return f.sampleChunks, nil
}

func (f *fakeRetriever) DeleteSession(_ context.Context, sessionID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
	lastUser string
	lastSys  string
}

func (f *fakeGenerator) Complete(_ context.Context, system, user string, _ int, _ float64) (string, error) {
	f.calls++
	f.lastSys = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Qdrant: config.QdrantConfig{CollectionPrefix: "pdf_collection_"},
		Ingest: config.IngestConfig{ChunkSize: 100, ChunkOverlap: 20},
		Chat:   config.ChatConfig{TopK: 4, MaxTokens: 500, Temperature: 0.7},
		Quiz:   config.QuizConfig{ChunksPerQuestion: 2, MaxContextChars: 3000, MaxTokens: 2000, Temperature: 0.8},
	}
}

// quizJSON builds a well-formed model response with n questions; option
// correctIdx is marked correct in each.
func quizJSON(n, correctIdx int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"question":"Question %d?","options":[`, i)
		for j := 0; j < 4; j++ {
			if j > 0 {
				out += ","
			}
			out += fmt.Sprintf(`{"text":"Option %d-%d","is_correct":%v}`, i, j, j == correctIdx)
		}
		out += fmt.Sprintf(`],"explanation":"Because option %d is right."}`, correctIdx)
	}
	return out + "]"
}
