package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SectionRepository handles database operations for sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// GetByNamespace finds a section by its namespace. Returns nil when the
// namespace is unknown.
func (r *SectionRepository) GetByNamespace(ctx context.Context, namespace string) (*Section, error) {
	var s Section
	query := `SELECT id, namespace, app_title, permalink_type, create_authors FROM sections WHERE namespace = ?`
	if err := r.db.GetContext(ctx, &s, query, namespace); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get section by namespace: %w", err)
	}
	return &s, nil
}

// GetByID finds a section by its ID. Returns nil when absent.
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*Section, error) {
	var s Section
	query := `SELECT id, namespace, app_title, permalink_type, create_authors FROM sections WHERE id = ?`
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get section by id: %w", err)
	}
	return &s, nil
}

// GetAll retrieves all sections.
func (r *SectionRepository) GetAll(ctx context.Context) ([]*Section, error) {
	var sections []*Section
	query := `SELECT id, namespace, app_title, permalink_type, create_authors FROM sections ORDER BY namespace`
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("failed to get all sections: %w", err)
	}
	return sections, nil
}

// Save creates a new section and returns its ID.
func (r *SectionRepository) Save(ctx context.Context, s *Section) (int64, error) {
	query := `INSERT INTO sections (namespace, app_title, permalink_type, create_authors)
		VALUES (:namespace, :app_title, :permalink_type, :create_authors)`
	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return 0, fmt.Errorf("failed to create section: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get created section id: %w", err)
	}
	s.ID = id
	return id, nil
}
