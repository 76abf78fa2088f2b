package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ashwinbm/docquiz/internal/domain"
)

// SessionRepository persists document sessions. Deleting a session also
// removes its quizzes.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// SQLiteSessionRepository stores sessions in SQLite
type SQLiteSessionRepository struct {
	db *DB
}

// NewSessionRepository creates a SQLite-backed session repository
func NewSessionRepository(db *DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Create creates a new session
func (r *SQLiteSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, collection, filename, num_chunks, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.Collection, session.Filename, session.NumChunks, session.CreatedAt)

	return err
}

// Get retrieves a session by ID
func (r *SQLiteSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	session := &domain.Session{}
	var filename sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, collection, filename, num_chunks, created_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.Collection, &filename, &session.NumChunks, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if filename.Valid {
		session.Filename = filename.String
	}

	return session, nil
}

// Delete removes a session; quizzes cascade via foreign key
func (r *SQLiteSessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
