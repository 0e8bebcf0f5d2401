//go:build unit

package service

import (
	"context"
	"testing"

	"go-newsblog-app/internal/data"
)

type mockCategoryRepo struct {
	categories   map[int64]*data.Category
	translations map[int64]map[string]string
	nextID       int64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		categories:   make(map[int64]*data.Category),
		translations: make(map[int64]map[string]string),
		nextID:       1,
	}
}

func (m *mockCategoryRepo) FindBySlug(_ context.Context, slug string) (*data.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id int64) (*data.Category, error) {
	return m.categories[id], nil
}

func (m *mockCategoryRepo) GetAll(_ context.Context) ([]*data.Category, error) {
	out := make([]*data.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepo) Save(_ context.Context, category *data.Category) (int64, error) {
	id := m.nextID
	m.nextID++
	category.ID = id
	m.categories[id] = category
	return id, nil
}

func (m *mockCategoryRepo) Translate(_ context.Context, categoryID int64, language, name string) error {
	if m.translations[categoryID] == nil {
		m.translations[categoryID] = make(map[string]string)
	}
	m.translations[categoryID][language] = name
	return nil
}

func (m *mockCategoryRepo) Name(_ context.Context, categoryID int64, language string) (string, error) {
	if name, ok := m.translations[categoryID][language]; ok {
		return name, nil
	}
	if c, ok := m.categories[categoryID]; ok {
		return c.Slug, nil
	}
	return "", nil
}

func TestCategoryCreate_SlugFromName(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)

	category, err := svc.Create(context.Background(), "", map[string]string{"en": "Local News"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if category.Slug != "local-news" {
		t.Errorf("expected slug 'local-news', got %q", category.Slug)
	}
	if repo.translations[category.ID]["en"] != "Local News" {
		t.Errorf("translation was not stored: %v", repo.translations)
	}
}

func TestCategoryCreate_DuplicateSlugRejected(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)

	if _, err := svc.Create(context.Background(), "tech", map[string]string{"en": "Technology"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), "tech", nil); err == nil {
		t.Error("expected an error for a duplicate slug")
	}
}

func TestCategoryCreate_RequiresSlugOrName(t *testing.T) {
	svc := NewCategoryService(newMockCategoryRepo())
	if _, err := svc.Create(context.Background(), "", nil); err == nil {
		t.Error("expected an error when neither slug nor name is given")
	}
}

func TestCategoryRename_UnknownCategory(t *testing.T) {
	svc := NewCategoryService(newMockCategoryRepo())
	if err := svc.Rename(context.Background(), 42, "en", "Whatever"); err == nil {
		t.Error("expected an error for an unknown category")
	}
}

func TestCategoryList_FallsBackToSlug(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "sports", map[string]string{"de": "Sport"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	names, err := svc.List(ctx, "en")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0].Name != "sports" {
		t.Errorf("expected the slug as fallback name, got %+v", names)
	}

	names, err = svc.List(ctx, "de")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0].Name != "Sport" {
		t.Errorf("expected the German name, got %+v", names)
	}
}
