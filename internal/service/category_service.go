package service

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"

	"go-newsblog-app/internal/data"
)

// CategoryRepository defines the interface for category storage.
type CategoryRepository interface {
	FindBySlug(ctx context.Context, slug string) (*data.Category, error)
	GetByID(ctx context.Context, id int64) (*data.Category, error)
	GetAll(ctx context.Context) ([]*data.Category, error)
	Save(ctx context.Context, category *data.Category) (int64, error)
	Translate(ctx context.Context, categoryID int64, language, name string) error
	Name(ctx context.Context, categoryID int64, language string) (string, error)
}

// CategoryService manages the category vocabulary articles are filed under.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns every category with its name resolved in the given language.
func (s *CategoryService) List(ctx context.Context, language string) ([]data.CategoryName, error) {
	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]data.CategoryName, 0, len(categories))
	for _, c := range categories {
		name, err := s.repo.Name(ctx, c.ID, language)
		if err != nil {
			return nil, err
		}
		out = append(out, data.CategoryName{Category: *c, Name: name})
	}
	return out, nil
}

// Create adds a category with translated names, keyed by language code. The
// slug is derived from the first name when not given explicitly.
func (s *CategoryService) Create(ctx context.Context, slugStr string, names map[string]string) (*data.Category, error) {
	if slugStr == "" {
		for _, name := range names {
			slugStr = slug.Make(name)
			break
		}
	}
	if slugStr == "" {
		return nil, fmt.Errorf("a category needs a slug or at least one name")
	}

	existing, err := s.repo.FindBySlug(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q already exists", slugStr)
	}

	category := &data.Category{Slug: slugStr}
	id, err := s.repo.Save(ctx, category)
	if err != nil {
		return nil, err
	}
	category.ID = id

	for language, name := range names {
		if err := s.repo.Translate(ctx, id, language, name); err != nil {
			return nil, err
		}
	}
	return category, nil
}

// Rename sets a category's name in one language, creating or updating the
// translation.
func (s *CategoryService) Rename(ctx context.Context, categoryID int64, language, name string) error {
	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category %d not found", categoryID)
	}
	return s.repo.Translate(ctx, categoryID, language, name)
}
