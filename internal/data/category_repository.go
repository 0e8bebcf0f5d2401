package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories and their
// translated names.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindBySlug finds a category by its slug. Returns nil when absent.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	err := r.db.GetContext(ctx, &category, `SELECT id, slug FROM categories WHERE slug = ?`, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}
	return &category, nil
}

// GetByID finds a category by its ID. Returns nil when absent.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := r.db.GetContext(ctx, &category, `SELECT id, slug FROM categories WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	return &category, nil
}

// GetAll retrieves all categories.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := r.db.SelectContext(ctx, &categories, `SELECT id, slug FROM categories ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

// Save creates a new category and returns its ID.
func (r *CategoryRepository) Save(ctx context.Context, category *Category) (int64, error) {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO categories (slug) VALUES (:slug)`, category)
	if err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get created category id: %w", err)
	}
	category.ID = id
	return id, nil
}

// Translate sets a category's display name in one language.
func (r *CategoryRepository) Translate(ctx context.Context, categoryID int64, language, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE category_translations SET name = ? WHERE category_id = ? AND language_code = ?`,
		name, categoryID, language)
	if err != nil {
		return fmt.Errorf("failed to update category translation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO category_translations (category_id, language_code, name) VALUES (?, ?, ?)`,
			categoryID, language, name); err != nil {
			return fmt.Errorf("failed to create category translation: %w", err)
		}
	}
	return nil
}

// Name retrieves a category's translated name, falling back to the slug.
func (r *CategoryRepository) Name(ctx context.Context, categoryID int64, language string) (string, error) {
	var name string
	query := `SELECT COALESCE(ct.name, c.slug) FROM categories c
		LEFT JOIN category_translations ct ON ct.category_id = c.id AND ct.language_code = ?
		WHERE c.id = ?`
	if err := r.db.GetContext(ctx, &name, query, language, categoryID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get category name: %w", err)
	}
	return name, nil
}
