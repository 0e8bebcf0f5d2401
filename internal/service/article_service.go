package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"

	"go-newsblog-app/internal/data"
)

// defaultSlug is used when an article is saved without a title.
const defaultSlug = "untitled-article"

// ArticleRepository defines the interface for database operations on articles.
type ArticleRepository interface {
	Create(ctx context.Context, a *data.Article) error
	Update(ctx context.Context, a *data.Article) error
	GetByID(ctx context.Context, id int64) (*data.Article, error)
	FindBySlug(ctx context.Context, namespace, language, slug string) (*data.Article, *data.ArticleTranslation, error)
	SlugExists(ctx context.Context, sectionID int64, language, slug string, excludeID int64) (bool, error)
	UpsertTranslation(ctx context.Context, tr *data.ArticleTranslation) error
	GetTranslation(ctx context.Context, articleID int64, language string) (*data.ArticleTranslation, error)
	Translations(ctx context.Context, articleID int64) ([]data.ArticleTranslation, error)
	ArticlesIn(ctx context.Context, namespace string, languages []string, editor bool) ([]*data.Article, error)
	TagArticle(ctx context.Context, articleID int64, names []string) error
	Categorize(ctx context.Context, articleID int64, categoryIDs []int64) error
	SetRelated(ctx context.Context, articleID int64, relatedIDs []int64) error
	SaveBlock(ctx context.Context, b *data.ContentBlock) error
	GetBlock(ctx context.Context, id int64) (*data.ContentBlock, error)
	BlocksOf(ctx context.Context, articleID int64, language string) ([]data.ContentBlock, error)
	TagsOf(ctx context.Context, articleID int64) ([]data.Tag, error)
	CategoryNamesOf(ctx context.Context, articleID int64, language string) ([]string, error)
	SetSearchData(ctx context.Context, articleID int64, language, text string) error
}

// SectionRepository defines the interface for looking up sections.
type SectionRepository interface {
	GetByNamespace(ctx context.Context, namespace string) (*data.Section, error)
	GetByID(ctx context.Context, id int64) (*data.Section, error)
	GetAll(ctx context.Context) ([]*data.Section, error)
}

// AuthorRepository defines the interface for author backfill on save.
type AuthorRepository interface {
	GetOrCreate(ctx context.Context, userSubject, name string) (*data.Author, error)
}

// SaveHook is invoked synchronously after an article (or one of its content
// blocks) has been saved, carrying the saved article's identity and language.
type SaveHook func(ctx context.Context, articleID int64, language string) error

// SaveArticleInput carries everything an editor submits when saving an
// article in one language.
type SaveArticleInput struct {
	ID              int64
	Namespace       string
	Language        string
	Title           string
	Slug            string
	Lead            string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	PublishingDate  time.Time
	IsPublished     bool
	IsFeatured      bool
	FeaturedImage   *string
	Tags            []string
	CategoryIDs     []int64
	RelatedIDs      []int64
	OwnerSubject    string
	OwnerName       string
}

// ArticleService provides the publishing workflow for articles: slug
// auto-generation, author backfill, sanitization and post-save hooks.
type ArticleService struct {
	repo      ArticleRepository
	sections  SectionRepository
	authors   AuthorRepository
	sanitizer *bluemonday.Policy
	hooks     []SaveHook
}

// NewArticleService creates a new ArticleService.
func NewArticleService(repo ArticleRepository, sections SectionRepository, authors AuthorRepository) *ArticleService {
	// UGCPolicy keeps basic formatting in the lead text while stripping
	// anything dangerous.
	return &ArticleService{
		repo:      repo,
		sections:  sections,
		authors:   authors,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// RegisterSaveHook adds a hook to run after every successful article or
// content-block save. Hooks run synchronously, in registration order.
func (s *ArticleService) RegisterSaveHook(h SaveHook) {
	s.hooks = append(s.hooks, h)
}

// EnableSearchUpdates registers the post-save hook that recomputes and
// persists the search index string for the saved language.
func (s *ArticleService) EnableSearchUpdates(builder *SearchIndexBuilder) {
	s.RegisterSaveHook(func(ctx context.Context, articleID int64, language string) error {
		article, err := s.repo.GetByID(ctx, articleID)
		if err != nil {
			return err
		}
		if article == nil {
			return nil
		}
		text, err := builder.Build(ctx, article, language)
		if err != nil {
			return err
		}
		return s.repo.SetSearchData(ctx, articleID, language, text)
	})
}

func (s *ArticleService) runSaveHooks(ctx context.Context, articleID int64, language string) error {
	for _, h := range s.hooks {
		if err := h(ctx, articleID, language); err != nil {
			return err
		}
	}
	return nil
}

// SaveArticle creates or updates an article together with its translation in
// one language, then runs the registered post-save hooks.
func (s *ArticleService) SaveArticle(ctx context.Context, in SaveArticleInput) (*data.Article, error) {
	section, err := s.sections.GetByNamespace(ctx, in.Namespace)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, fmt.Errorf("unknown section namespace %q", in.Namespace)
	}

	now := time.Now().UTC()
	var article *data.Article
	if in.ID == 0 {
		publishingDate := in.PublishingDate
		if publishingDate.IsZero() {
			publishingDate = now
		}
		article = &data.Article{
			SectionID:      section.ID,
			OwnerSubject:   in.OwnerSubject,
			PublishingDate: publishingDate,
			IsPublished:    in.IsPublished,
			IsFeatured:     in.IsFeatured,
			FeaturedImage:  in.FeaturedImage,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	} else {
		article, err = s.repo.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if article == nil {
			return nil, fmt.Errorf("article %d not found", in.ID)
		}
		if !in.PublishingDate.IsZero() {
			article.PublishingDate = in.PublishingDate
		}
		article.IsPublished = in.IsPublished
		article.IsFeatured = in.IsFeatured
		if in.FeaturedImage != nil {
			article.FeaturedImage = in.FeaturedImage
		}
		article.UpdatedAt = now
	}

	// Ensure there is an author when the section asks for one. The display
	// person is derived from the owning user account.
	if section.CreateAuthors && article.AuthorID == nil {
		name := in.OwnerName
		if name == "" {
			name = in.OwnerSubject
		}
		author, err := s.authors.GetOrCreate(ctx, in.OwnerSubject, name)
		if err != nil {
			return nil, err
		}
		article.AuthorID = &author.ID
	}

	if in.ID == 0 {
		if err := s.repo.Create(ctx, article); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Update(ctx, article); err != nil {
			return nil, err
		}
	}

	slugStr, err := s.ensureSlug(ctx, section.ID, article.ID, in.Language, in.Slug, in.Title)
	if err != nil {
		return nil, err
	}

	tr := &data.ArticleTranslation{
		ArticleID:       article.ID,
		LanguageCode:    in.Language,
		Title:           in.Title,
		Slug:            slugStr,
		Lead:            s.sanitizer.Sanitize(in.Lead),
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		MetaKeywords:    in.MetaKeywords,
	}
	if existing, err := s.repo.GetTranslation(ctx, article.ID, in.Language); err != nil {
		return nil, err
	} else if existing != nil {
		tr.SearchData = existing.SearchData
	}
	if err := s.repo.UpsertTranslation(ctx, tr); err != nil {
		return nil, err
	}

	if in.Tags != nil {
		if err := s.repo.TagArticle(ctx, article.ID, in.Tags); err != nil {
			return nil, err
		}
	}
	if in.CategoryIDs != nil {
		if err := s.repo.Categorize(ctx, article.ID, in.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if in.RelatedIDs != nil {
		if err := s.repo.SetRelated(ctx, article.ID, in.RelatedIDs); err != nil {
			return nil, err
		}
	}

	if err := s.runSaveHooks(ctx, article.ID, in.Language); err != nil {
		return nil, err
	}
	return article, nil
}

// ensureSlug resolves the slug to store for a translation: an explicit slug
// wins, otherwise one is generated from the title, and either way a numeric
// suffix is appended until the slug is unique within the section+language.
func (s *ArticleService) ensureSlug(ctx context.Context, sectionID, articleID int64, language, explicit, title string) (string, error) {
	base := explicit
	if base == "" {
		base = slug.Make(title)
	}
	if base == "" {
		base = defaultSlug
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := s.repo.SlugExists(ctx, sectionID, language, candidate, articleID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// SaveBlock persists a content block and triggers the post-save hooks for the
// owning article. A block whose article cannot be located is saved but
// triggers nothing; the placeholder is not attached to an article we manage.
func (s *ArticleService) SaveBlock(ctx context.Context, block *data.ContentBlock) error {
	if err := s.repo.SaveBlock(ctx, block); err != nil {
		return err
	}
	article, err := s.repo.GetByID(ctx, block.ArticleID)
	if err != nil {
		return err
	}
	if article == nil {
		return nil
	}
	return s.runSaveHooks(ctx, article.ID, block.LanguageCode)
}

// DetailBySlug resolves an article for its public detail view. Articles that
// do not exist or are not visible to the viewer both come back as nil; the
// caller cannot tell the two apart.
func (s *ArticleService) DetailBySlug(ctx context.Context, namespace, language, slugStr string, editor bool) (*data.Article, *data.ArticleTranslation, error) {
	article, tr, err := s.repo.FindBySlug(ctx, namespace, language, slugStr)
	if err != nil {
		return nil, nil, err
	}
	if article == nil {
		return nil, nil, nil
	}
	if !Visible(article, editor, time.Now().UTC()) {
		return nil, nil, nil
	}
	return article, tr, nil
}

// PublishedIn lists the externally visible articles of a namespace.
func (s *ArticleService) PublishedIn(ctx context.Context, namespace string, languages []string) ([]*data.Article, error) {
	return s.repo.ArticlesIn(ctx, namespace, languages, false)
}

// AllIn lists a namespace's articles including unpublished and future-dated
// ones, for editors previewing in edit mode.
func (s *ArticleService) AllIn(ctx context.Context, namespace string, languages []string) ([]*data.Article, error) {
	return s.repo.ArticlesIn(ctx, namespace, languages, true)
}

// SectionByNamespace exposes section lookup to handlers.
func (s *ArticleService) SectionByNamespace(ctx context.Context, namespace string) (*data.Section, error) {
	return s.sections.GetByNamespace(ctx, namespace)
}

// Sections lists every configured section.
func (s *ArticleService) Sections(ctx context.Context) ([]*data.Section, error) {
	return s.sections.GetAll(ctx)
}

// Translations exposes an article's translations, for sitemap generation.
func (s *ArticleService) Translations(ctx context.Context, articleID int64) ([]data.ArticleTranslation, error) {
	return s.repo.Translations(ctx, articleID)
}

// Translation returns one translation of an article, or nil if the article
// has none in that language.
func (s *ArticleService) Translation(ctx context.Context, articleID int64, language string) (*data.ArticleTranslation, error) {
	return s.repo.GetTranslation(ctx, articleID, language)
}

// Blocks returns an article's content blocks in one language, in display
// order.
func (s *ArticleService) Blocks(ctx context.Context, articleID int64, language string) ([]data.ContentBlock, error) {
	return s.repo.BlocksOf(ctx, articleID, language)
}

// Tags returns an article's tags.
func (s *ArticleService) Tags(ctx context.Context, articleID int64) ([]data.Tag, error) {
	return s.repo.TagsOf(ctx, articleID)
}

// CategoryNames returns an article's category names in one language.
func (s *ArticleService) CategoryNames(ctx context.Context, articleID int64, language string) ([]string, error) {
	return s.repo.CategoryNamesOf(ctx, articleID, language)
}

// Permalink composes an article's URL path from the section's permalink
// format flags: y, m and d add date components, i the numeric id and s the
// translated slug.
func Permalink(section *data.Section, a *data.Article, tr *data.ArticleTranslation) string {
	parts := []string{section.Namespace}
	pt := section.PermalinkType
	if strings.ContainsRune(pt, 'y') {
		parts = append(parts, a.PublishingDate.Format("2006"))
	}
	if strings.ContainsRune(pt, 'm') {
		parts = append(parts, a.PublishingDate.Format("01"))
	}
	if strings.ContainsRune(pt, 'd') {
		parts = append(parts, a.PublishingDate.Format("02"))
	}
	if strings.ContainsRune(pt, 'i') {
		parts = append(parts, strconv.FormatInt(a.ID, 10))
	}
	if strings.ContainsRune(pt, 's') && tr != nil && tr.Slug != "" {
		parts = append(parts, tr.Slug)
	}
	return "/" + strings.Join(parts, "/")
}
