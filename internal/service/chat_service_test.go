package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ashwinbm/docquiz/internal/domain"
	"github.com/ashwinbm/docquiz/internal/repository"
)

func newChatServiceForTest(t *testing.T, gen *fakeGenerator, ret *fakeRetriever) (*ChatService, repository.SessionRepository) {
	t.Helper()
	sessions := repository.NewMemorySessionRepository(nil)
	return NewChatService(testConfig(), sessions, ret, gen, zap.NewNop()), sessions
}

func TestChatEmptyQuery(t *testing.T) {
	gen := &fakeGenerator{response: "answer"}
	svc, sessions := newChatServiceForTest(t, gen, newFakeRetriever())
	sessionID := seedSession(t, sessions)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := svc.Chat(context.Background(), sessionID, query)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("query=%q: want ErrInvalidArgument, got %v", query, err)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("model was called %d times, want 0", gen.calls)
	}
}

func TestChatUnknownSession(t *testing.T) {
	svc, _ := newChatServiceForTest(t, &fakeGenerator{response: "answer"}, newFakeRetriever())

	_, err := svc.Chat(context.Background(), "no-such-session", "what is this about?")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestChatSuppliesRetrievedContext(t *testing.T) {
	ret := newFakeRetriever()
	ret.queryResults = []domain.RetrievedChunk{
		{Chunk: domain.Chunk{Index: 2, Text: "Gophers live in burrows."}, Score: 0.91},
		{Chunk: domain.Chunk{Index: 7, Text: "They eat roots and tubers."}, Score: 0.84},
	}
	gen := &fakeGenerator{response: "Gophers live in burrows and eat roots."}
	svc, sessions := newChatServiceForTest(t, gen, ret)
	sessionID := seedSession(t, sessions)

	resp, err := svc.Chat(context.Background(), sessionID, "where do gophers live?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	for _, text := range []string{"Gophers live in burrows.", "They eat roots and tubers.", "where do gophers live?"} {
		if !strings.Contains(gen.lastUser, text) {
			t.Fatalf("prompt missing %q", text)
		}
	}

	wantSources := []string{"Chunk 2", "Chunk 7"}
	if len(resp.Sources) != len(wantSources) {
		t.Fatalf("sources=%v, want %v", resp.Sources, wantSources)
	}
	for i, src := range wantSources {
		if resp.Sources[i] != src {
			t.Fatalf("source[%d]=%q, want %q", i, resp.Sources[i], src)
		}
	}
	if resp.Answer != "Gophers live in burrows and eat roots." {
		t.Fatalf("answer=%q", resp.Answer)
	}
}

func TestChatNoRetrievedChunksStillAnswers(t *testing.T) {
	gen := &fakeGenerator{response: "The context does not contain that information."}
	svc, sessions := newChatServiceForTest(t, gen, newFakeRetriever())
	sessionID := seedSession(t, sessions)

	resp, err := svc.Chat(context.Background(), sessionID, "what is the airspeed of an unladen swallow?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(resp.Sources) != 0 {
		t.Fatalf("sources=%v, want empty", resp.Sources)
	}
	if resp.Answer == "" {
		t.Fatal("answer is empty")
	}
}

func TestChatUpstreamError(t *testing.T) {
	gen := &fakeGenerator{err: domain.ErrUpstream}
	svc, sessions := newChatServiceForTest(t, gen, newFakeRetriever())
	sessionID := seedSession(t, sessions)

	_, err := svc.Chat(context.Background(), sessionID, "anything")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("want ErrUpstream, got %v", err)
	}
}

func TestChatIndexGoneSurfacesNotFound(t *testing.T) {
	ret := newFakeRetriever()
	ret.queryErr = domain.ErrNotFound
	svc, sessions := newChatServiceForTest(t, &fakeGenerator{}, ret)
	sessionID := seedSession(t, sessions)

	_, err := svc.Chat(context.Background(), sessionID, "anything")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
