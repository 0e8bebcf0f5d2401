//go:build integration

package data

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupRepo builds a seeded repository: one section with five articles, four
// of them published, written by two authors across two months.
func setupRepo(t *testing.T) (*SQLArticleRepository, func()) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := NewDB("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	schema, err := os.ReadFile("testdata/sqlite_schema.sql")
	if err != nil {
		t.Fatalf("Failed to read test schema: %v", err)
	}
	db.MustExec(string(schema))

	db.MustExec(`INSERT INTO sections (namespace, app_title, permalink_type, create_authors)
		VALUES ('news', 'News', 's', 1), ('quiet', 'Quiet Corner', 's', 1)`)
	db.MustExec(`INSERT INTO authors (user_subject, name) VALUES ('sub-alice', 'Alice'), ('sub-bob', 'Bob')`)

	repo := NewSQLArticleRepository(db)
	ctx := context.Background()

	date := func(month, day int) time.Time {
		return time.Date(2026, time.Month(month), day, 10, 0, 0, 0, time.UTC)
	}
	authorID := func(id int64) *int64 { return &id }
	img := func(s string) *string { return &s }

	articles := []*Article{
		{SectionID: 1, AuthorID: authorID(1), OwnerSubject: "sub-alice", PublishingDate: date(6, 10), IsPublished: true},
		{SectionID: 1, AuthorID: authorID(2), OwnerSubject: "sub-bob", PublishingDate: date(6, 20), IsPublished: true, IsFeatured: true, FeaturedImage: img("a2.jpg")},
		{SectionID: 1, AuthorID: authorID(2), OwnerSubject: "sub-bob", PublishingDate: date(7, 5), IsPublished: true},
		{SectionID: 1, AuthorID: authorID(1), OwnerSubject: "sub-alice", PublishingDate: date(7, 15), IsPublished: true, IsFeatured: true, FeaturedImage: img("a4.jpg")},
		{SectionID: 1, AuthorID: authorID(2), OwnerSubject: "sub-bob", PublishingDate: date(7, 20), IsPublished: false},
	}
	for i, a := range articles {
		a.CreatedAt = a.PublishingDate
		a.UpdatedAt = a.PublishingDate
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Failed to create article %d: %v", i+1, err)
		}
	}

	for i := int64(1); i <= 5; i++ {
		if err := repo.UpsertTranslation(ctx, &ArticleTranslation{
			ArticleID:    i,
			LanguageCode: "en",
			Title:        fmt.Sprintf("Article %d", i),
			Slug:         fmt.Sprintf("article-%d", i),
			Lead:         fmt.Sprintf("Lead of article %d", i),
		}); err != nil {
			t.Fatalf("Failed to create translation: %v", err)
		}
	}
	if err := repo.UpsertTranslation(ctx, &ArticleTranslation{
		ArticleID: 3, LanguageCode: "de", Title: "Artikel 3", Slug: "artikel-3",
	}); err != nil {
		t.Fatalf("Failed to create de translation: %v", err)
	}

	// buzz on every article, bar on 2, 3 and the unpublished 5, solo only on 5.
	for _, id := range []int64{1, 2, 3, 4, 5} {
		mustTag(t, repo, id, "buzz")
	}
	for _, id := range []int64{2, 3, 5} {
		mustTag(t, repo, id, "bar")
	}
	mustTag(t, repo, 5, "solo")

	db.MustExec(`INSERT INTO categories (slug) VALUES ('tech'), ('life')`)
	db.MustExec(`INSERT INTO category_translations (category_id, language_code, name) VALUES (1, 'en', 'Technology')`)
	for _, id := range []int64{1, 2, 3} {
		if err := repo.Categorize(ctx, id, []int64{1}); err != nil {
			t.Fatalf("Failed to categorize: %v", err)
		}
	}
	if err := repo.Categorize(ctx, 4, []int64{2}); err != nil {
		t.Fatalf("Failed to categorize: %v", err)
	}

	if err := repo.SetRelated(ctx, 1, []int64{2, 4, 5}); err != nil {
		t.Fatalf("Failed to set related articles: %v", err)
	}

	teardown := func() { db.Close() }
	return repo, teardown
}

// mustTag appends one tag, preserving the ones already attached.
func mustTag(t *testing.T, repo *SQLArticleRepository, articleID int64, name string) {
	t.Helper()
	ctx := context.Background()
	existing, err := repo.TagsOf(ctx, articleID)
	if err != nil {
		t.Fatalf("Failed to read tags: %v", err)
	}
	names := make([]string, 0, len(existing)+1)
	for _, tag := range existing {
		names = append(names, tag.Name)
	}
	names = append(names, name)
	if err := repo.TagArticle(ctx, articleID, names); err != nil {
		t.Fatalf("Failed to tag article: %v", err)
	}
}

func ids(articles []*Article) []int64 {
	out := make([]int64, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func equalIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestArticlesIn_VisibilityAndOrder(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	public, err := repo.ArticlesIn(ctx, "news", []string{"en"}, false)
	if err != nil {
		t.Fatalf("ArticlesIn failed: %v", err)
	}
	if !equalIDs(ids(public), 4, 3, 2, 1) {
		t.Errorf("public listing = %v, want [4 3 2 1]", ids(public))
	}

	editor, err := repo.ArticlesIn(ctx, "news", []string{"en"}, true)
	if err != nil {
		t.Fatalf("editor ArticlesIn failed: %v", err)
	}
	if !equalIDs(ids(editor), 5, 4, 3, 2, 1) {
		t.Errorf("editor listing = %v, want [5 4 3 2 1]", ids(editor))
	}
}

func TestArticlesIn_LanguageFilter(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()

	german, err := repo.ArticlesIn(context.Background(), "news", []string{"de"}, false)
	if err != nil {
		t.Fatalf("ArticlesIn failed: %v", err)
	}
	if !equalIDs(ids(german), 3) {
		t.Errorf("only article 3 has a German translation, got %v", ids(german))
	}

	none, err := repo.ArticlesIn(context.Background(), "news", nil, false)
	if err != nil {
		t.Fatalf("ArticlesIn with no languages failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("no permitted languages must return nothing, got %v", ids(none))
	}
}

func TestFeaturedIn_Limit(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()

	featured, err := repo.FeaturedIn(context.Background(), "news", []string{"en"}, false, 1)
	if err != nil {
		t.Fatalf("FeaturedIn failed: %v", err)
	}
	if !equalIDs(ids(featured), 4) {
		t.Errorf("expected the newest featured article [4], got %v", ids(featured))
	}
}

func TestMonthsIn_Histogram(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	months, err := repo.MonthsIn(ctx, "news", false)
	if err != nil {
		t.Fatalf("MonthsIn failed: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("expected 2 month buckets, got %d: %v", len(months), months)
	}
	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if !months[0].Month.Equal(july) || months[0].Articles != 2 {
		t.Errorf("newest bucket = %+v, want July with 2", months[0])
	}
	if !months[1].Month.Equal(june) || months[1].Articles != 2 {
		t.Errorf("oldest bucket = %+v, want June with 2", months[1])
	}

	// The unpublished July article only counts for editors.
	editorMonths, err := repo.MonthsIn(ctx, "news", true)
	if err != nil {
		t.Fatalf("editor MonthsIn failed: %v", err)
	}
	if editorMonths[0].Articles != 3 {
		t.Errorf("editors see 3 July articles, got %d", editorMonths[0].Articles)
	}
}

func TestAuthorsWithCounts_Tiebreak(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	// Publicly Alice and Bob both have two articles; the tie breaks on name.
	authors, err := repo.AuthorsWithCounts(ctx, "news", []string{"en"}, false)
	if err != nil {
		t.Fatalf("AuthorsWithCounts failed: %v", err)
	}
	if len(authors) != 2 || authors[0].Name != "Alice" || authors[0].Articles != 2 || authors[1].Name != "Bob" {
		t.Errorf("unexpected public author counts: %+v", authors)
	}

	// In edit mode Bob's unpublished article counts, putting him first.
	editorAuthors, err := repo.AuthorsWithCounts(ctx, "news", []string{"en"}, true)
	if err != nil {
		t.Fatalf("editor AuthorsWithCounts failed: %v", err)
	}
	if editorAuthors[0].Name != "Bob" || editorAuthors[0].Articles != 3 {
		t.Errorf("unexpected editor author counts: %+v", editorAuthors)
	}
}

func TestTagsWithCounts(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()

	tags, err := repo.TagsWithCounts(context.Background(), "news", []string{"en"}, false)
	if err != nil {
		t.Fatalf("TagsWithCounts failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 visible tags, got %+v", tags)
	}
	if tags[0].Name != "buzz" || tags[0].Articles != 4 {
		t.Errorf("expected buzz with 4 uses first, got %+v", tags[0])
	}
	if tags[1].Name != "bar" || tags[1].Articles != 2 {
		t.Errorf("expected bar with 2 uses, got %+v", tags[1])
	}
	// solo is only on the unpublished article and must not appear at all.
}

func TestTagsWithCounts_EmptySectionShortCircuits(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()

	tags, err := repo.TagsWithCounts(context.Background(), "quiet", []string{"en"}, false)
	if err != nil {
		t.Fatalf("TagsWithCounts failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("a section without articles has no tags, got %+v", tags)
	}
}

func TestCategoriesWithCounts_NameFallback(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()

	categories, err := repo.CategoriesWithCounts(context.Background(), "news", "en", []string{"en"}, false)
	if err != nil {
		t.Fatalf("CategoriesWithCounts failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %+v", categories)
	}
	if categories[0].Name != "Technology" || categories[0].Articles != 3 {
		t.Errorf("expected translated 'Technology' with 3 articles, got %+v", categories[0])
	}
	if categories[1].Name != "life" || categories[1].Articles != 1 {
		t.Errorf("expected slug fallback 'life' with 1 article, got %+v", categories[1])
	}
}

func TestRelatedTo_OrderAndVisibility(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	public, err := repo.RelatedTo(ctx, 1, []string{"en"}, false)
	if err != nil {
		t.Fatalf("RelatedTo failed: %v", err)
	}
	if !equalIDs(ids(public), 2, 4) {
		t.Errorf("public related list = %v, want [2 4]", ids(public))
	}

	editor, err := repo.RelatedTo(ctx, 1, []string{"en"}, true)
	if err != nil {
		t.Fatalf("editor RelatedTo failed: %v", err)
	}
	if !equalIDs(ids(editor), 2, 4, 5) {
		t.Errorf("editor related list = %v, want [2 4 5]", ids(editor))
	}
}

func TestFindBySlug(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	article, tr, err := repo.FindBySlug(ctx, "news", "en", "article-2")
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}
	if article == nil || article.ID != 2 || tr.Title != "Article 2" {
		t.Errorf("unexpected result: %+v, %+v", article, tr)
	}

	article, tr, err = repo.FindBySlug(ctx, "news", "en", "no-such-slug")
	if err != nil {
		t.Fatalf("missing slug lookup failed: %v", err)
	}
	if article != nil || tr != nil {
		t.Error("a missing slug must return nil, nil")
	}

	// A slug only existing in German is not found under English.
	article, _, err = repo.FindBySlug(ctx, "news", "en", "artikel-3")
	if err != nil {
		t.Fatalf("cross-language lookup failed: %v", err)
	}
	if article != nil {
		t.Error("slugs are scoped per language")
	}
}

func TestSlugExists_ExcludesOwnArticle(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	taken, err := repo.SlugExists(ctx, 1, "en", "article-1", 0)
	if err != nil {
		t.Fatalf("SlugExists failed: %v", err)
	}
	if !taken {
		t.Error("article-1 is taken")
	}

	taken, err = repo.SlugExists(ctx, 1, "en", "article-1", 1)
	if err != nil {
		t.Fatalf("SlugExists with exclusion failed: %v", err)
	}
	if taken {
		t.Error("an article does not collide with its own slug")
	}
}

func TestSetSearchData_RoundTrip(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	if err := repo.SetSearchData(ctx, 1, "en", "lead tech buzz"); err != nil {
		t.Fatalf("SetSearchData failed: %v", err)
	}
	tr, err := repo.GetTranslation(ctx, 1, "en")
	if err != nil {
		t.Fatalf("GetTranslation failed: %v", err)
	}
	if tr.SearchData != "lead tech buzz" {
		t.Errorf("search data not stored, got %q", tr.SearchData)
	}
}

func TestPublishedWithImages(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()

	articles, err := repo.PublishedWithImages(context.Background())
	if err != nil {
		t.Fatalf("PublishedWithImages failed: %v", err)
	}
	if !equalIDs(ids(articles), 4, 2) {
		t.Errorf("expected the two published featured-image articles [4 2], got %v", ids(articles))
	}
}

func TestBlocks_SaveAndOrder(t *testing.T) {
	repo, teardown := setupRepo(t)
	defer teardown()
	ctx := context.Background()

	second := &ContentBlock{ArticleID: 1, LanguageCode: "en", Position: 1, Kind: "html", Body: "<p>World</p>"}
	first := &ContentBlock{ArticleID: 1, LanguageCode: "en", Position: 0, Kind: "markdown", Body: "# Hello"}
	for _, b := range []*ContentBlock{second, first} {
		if err := repo.SaveBlock(ctx, b); err != nil {
			t.Fatalf("SaveBlock failed: %v", err)
		}
	}

	blocks, err := repo.BlocksOf(ctx, 1, "en")
	if err != nil {
		t.Fatalf("BlocksOf failed: %v", err)
	}
	if len(blocks) != 2 || blocks[0].Kind != "markdown" || blocks[1].Kind != "html" {
		t.Errorf("blocks must come back in position order, got %+v", blocks)
	}

	first.Body = "# Hello again"
	if err := repo.SaveBlock(ctx, first); err != nil {
		t.Fatalf("block update failed: %v", err)
	}
	updated, err := repo.GetBlock(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	if updated.Body != "# Hello again" {
		t.Errorf("block body not updated: %q", updated.Body)
	}
}
