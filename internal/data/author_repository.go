package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AuthorRepository handles database operations for authors.
type AuthorRepository struct {
	db *sqlx.DB
}

// NewAuthorRepository creates a new AuthorRepository.
func NewAuthorRepository(db *sqlx.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// GetByID finds an author by ID. Returns nil when absent.
func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*Author, error) {
	var a Author
	query := `SELECT id, user_subject, name FROM authors WHERE id = ?`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}
	return &a, nil
}

// GetOrCreate finds the author backing a user account, creating one with the
// given display name when none exists. Used to backfill an article's author
// from its owner on save.
func (r *AuthorRepository) GetOrCreate(ctx context.Context, userSubject, name string) (*Author, error) {
	var a Author
	query := `SELECT id, user_subject, name FROM authors WHERE user_subject = ?`
	err := r.db.GetContext(ctx, &a, query, userSubject)
	if err == nil {
		return &a, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up author: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO authors (user_subject, name) VALUES (?, ?)`, userSubject, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get created author id: %w", err)
	}
	return &Author{ID: id, UserSubject: userSubject, Name: name}, nil
}
