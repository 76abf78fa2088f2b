package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashwinbm/docquiz/internal/domain"
)

// Both implementations of each repository must satisfy the same contract,
// so the tests run against a matrix of backends.

type repoPair struct {
	sessions SessionRepository
	quizzes  QuizRepository
}

func backends(t *testing.T) map[string]repoPair {
	t.Helper()

	memQuizzes := NewMemoryQuizRepository()
	memSessions := NewMemorySessionRepository(memQuizzes)

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]repoPair{
		"memory": {sessions: memSessions, quizzes: memQuizzes},
		"sqlite": {sessions: NewSessionRepository(db), quizzes: NewQuizRepository(db)},
	}
}

func sampleQuiz(sessionID string) *domain.Quiz {
	return &domain.Quiz{
		SessionID: sessionID,
		Questions: []domain.Question{
			{
				Text: "What color is the sky?",
				Options: []domain.Option{
					{Text: "Blue"}, {Text: "Green"}, {Text: "Red"}, {Text: "Plaid"},
				},
				CorrectIndex: 0,
				Explanation:  "Rayleigh scattering.",
			},
		},
	}
}

func TestSessionLifecycle(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session := &domain.Session{
				Collection: "pdf_collection_x",
				Filename:   "doc.pdf",
				NumChunks:  7,
			}
			if err := repos.sessions.Create(ctx, session); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if session.ID == "" {
				t.Fatal("Create did not assign an id")
			}
			if session.CreatedAt.IsZero() {
				t.Fatal("Create did not set created_at")
			}

			got, err := repos.sessions.Get(ctx, session.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.NumChunks != 7 || got.Filename != "doc.pdf" || got.Collection != "pdf_collection_x" {
				t.Fatalf("Get returned %+v", got)
			}

			if err := repos.sessions.Delete(ctx, session.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := repos.sessions.Get(ctx, session.ID); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
			}
			if err := repos.sessions.Delete(ctx, session.ID); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("second Delete: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestSessionGetUnknown(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := repos.sessions.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestQuizRoundTrip(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session := &domain.Session{Collection: "c"}
			if err := repos.sessions.Create(ctx, session); err != nil {
				t.Fatalf("Create session: %v", err)
			}

			quiz := sampleQuiz(session.ID)
			if err := repos.quizzes.Create(ctx, quiz); err != nil {
				t.Fatalf("Create quiz: %v", err)
			}

			got, err := repos.quizzes.Get(ctx, quiz.ID)
			if err != nil {
				t.Fatalf("Get quiz: %v", err)
			}
			if len(got.Questions) != 1 {
				t.Fatalf("got %d questions", len(got.Questions))
			}
			q := got.Questions[0]
			if q.Text != "What color is the sky?" || q.CorrectIndex != 0 || len(q.Options) != 4 {
				t.Fatalf("question round trip lost data: %+v", q)
			}
			if got.Graded() {
				t.Fatal("fresh quiz reports graded")
			}
		})
	}
}

func TestQuizMarkGradedOnce(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session := &domain.Session{Collection: "c"}
			if err := repos.sessions.Create(ctx, session); err != nil {
				t.Fatalf("Create session: %v", err)
			}
			quiz := sampleQuiz(session.ID)
			if err := repos.quizzes.Create(ctx, quiz); err != nil {
				t.Fatalf("Create quiz: %v", err)
			}

			if err := repos.quizzes.MarkGraded(ctx, quiz.ID, time.Now()); err != nil {
				t.Fatalf("first MarkGraded: %v", err)
			}
			if err := repos.quizzes.MarkGraded(ctx, quiz.ID, time.Now()); !errors.Is(err, domain.ErrAlreadyGraded) {
				t.Fatalf("second MarkGraded: want ErrAlreadyGraded, got %v", err)
			}

			got, err := repos.quizzes.Get(ctx, quiz.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !got.Graded() {
				t.Fatal("quiz not marked graded")
			}
		})
	}
}

func TestQuizMarkGradedUnknown(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := repos.quizzes.MarkGraded(context.Background(), "missing", time.Now())
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestDeleteSessionCascadesQuizzes(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session := &domain.Session{Collection: "c"}
			if err := repos.sessions.Create(ctx, session); err != nil {
				t.Fatalf("Create session: %v", err)
			}
			quiz := sampleQuiz(session.ID)
			if err := repos.quizzes.Create(ctx, quiz); err != nil {
				t.Fatalf("Create quiz: %v", err)
			}

			if err := repos.sessions.Delete(ctx, session.ID); err != nil {
				t.Fatalf("Delete session: %v", err)
			}
			if _, err := repos.quizzes.Get(ctx, quiz.ID); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("quiz survived session delete: %v", err)
			}
		})
	}
}
