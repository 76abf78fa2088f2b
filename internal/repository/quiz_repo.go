package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ashwinbm/docquiz/internal/domain"
)

// QuizRepository persists generated quizzes with their correct-answer
// metadata. MarkGraded must succeed at most once per quiz.
type QuizRepository interface {
	Create(ctx context.Context, quiz *domain.Quiz) error
	Get(ctx context.Context, id string) (*domain.Quiz, error)
	MarkGraded(ctx context.Context, id string, at time.Time) error
}

// SQLiteQuizRepository stores quizzes in SQLite with questions as JSON
type SQLiteQuizRepository struct {
	db *DB
}

// NewQuizRepository creates a SQLite-backed quiz repository
func NewQuizRepository(db *DB) *SQLiteQuizRepository {
	return &SQLiteQuizRepository{db: db}
}

// Create creates a new quiz
func (r *SQLiteQuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = uuid.New().String()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now()
	}

	questionsJSON, err := json.Marshal(quiz.Questions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO quizzes (id, session_id, questions, created_at, graded_at)
		VALUES (?, ?, ?, ?, ?)
	`, quiz.ID, quiz.SessionID, string(questionsJSON), quiz.CreatedAt, quiz.GradedAt)

	return err
}

// Get retrieves a quiz by ID
func (r *SQLiteQuizRepository) Get(ctx context.Context, id string) (*domain.Quiz, error) {
	quiz := &domain.Quiz{}
	var questionsJSON string
	var gradedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, questions, created_at, graded_at
		FROM quizzes WHERE id = ?
	`, id).Scan(&quiz.ID, &quiz.SessionID, &questionsJSON, &quiz.CreatedAt, &gradedAt)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(questionsJSON), &quiz.Questions); err != nil {
		return nil, err
	}
	if gradedAt.Valid {
		t := gradedAt.Time
		quiz.GradedAt = &t
	}

	return quiz, nil
}

// MarkGraded records the first submission time. The conditional update makes
// the first-submission-wins policy atomic under concurrent submits.
func (r *SQLiteQuizRepository) MarkGraded(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quizzes SET graded_at = ? WHERE id = ? AND graded_at IS NULL
	`, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// No row updated: either missing or already graded
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrAlreadyGraded
}
