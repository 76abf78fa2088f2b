package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashwinbm/docquiz/internal/domain"
)

// MemorySessionRepository keeps sessions in a map. Used in tests and when
// no database path is configured.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	quizzes  *MemoryQuizRepository
}

// NewMemorySessionRepository creates an in-memory session repository. When
// quizzes is non-nil, deleting a session also drops its quizzes, mirroring
// the SQLite cascade.
func NewMemorySessionRepository(quizzes *MemoryQuizRepository) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]domain.Session),
		quizzes:  quizzes,
	}
}

func (r *MemorySessionRepository) Create(_ context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.sessions[id]; !ok {
		r.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	if r.quizzes != nil {
		r.quizzes.deleteBySession(id)
	}
	return nil
}

// MemoryQuizRepository keeps quizzes in a map
type MemoryQuizRepository struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

// NewMemoryQuizRepository creates an in-memory quiz repository
func NewMemoryQuizRepository() *MemoryQuizRepository {
	return &MemoryQuizRepository{quizzes: make(map[string]domain.Quiz)}
}

func (r *MemoryQuizRepository) Create(_ context.Context, quiz *domain.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = uuid.New().String()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = cloneQuiz(*quiz)
	return nil
}

func (r *MemoryQuizRepository) Get(_ context.Context, id string) (*domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := cloneQuiz(quiz)
	return &clone, nil
}

func (r *MemoryQuizRepository) MarkGraded(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.ErrNotFound
	}
	if quiz.GradedAt != nil {
		return domain.ErrAlreadyGraded
	}
	quiz.GradedAt = &at
	r.quizzes[id] = quiz
	return nil
}

func (r *MemoryQuizRepository) deleteBySession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, quiz := range r.quizzes {
		if quiz.SessionID == sessionID {
			delete(r.quizzes, id)
		}
	}
}

// cloneQuiz deep-copies the question slice so callers cannot mutate stored
// state through a returned quiz.
func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	copy(questions, q.Questions)
	for i := range questions {
		options := make([]domain.Option, len(questions[i].Options))
		copy(options, questions[i].Options)
		questions[i].Options = options
	}
	q.Questions = questions
	if q.GradedAt != nil {
		t := *q.GradedAt
		q.GradedAt = &t
	}
	return q
}
