package data

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
)

const articleColumns = `a.id, a.section_id, a.author_id, a.owner_subject, a.publishing_date,
	a.is_published, a.is_featured, a.featured_image, a.created_at, a.updated_at`

// SQLArticleRepository is a concrete implementation of the article query layer
// using sqlx. All aggregate reads are parameterized by a section namespace and
// a viewer mode: editors see every article, readers only see articles that are
// published with a publishing date in the past.
type SQLArticleRepository struct {
	db *sqlx.DB
}

// NewSQLArticleRepository creates a new SQLArticleRepository.
func NewSQLArticleRepository(db *sqlx.DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// visibilityClause returns the SQL fragment and arguments restricting a query
// to externally visible articles. Editors bypass the filter entirely.
func visibilityClause(editor bool) (string, []interface{}) {
	if editor {
		return "", nil
	}
	return " AND a.is_published = 1 AND a.publishing_date <= ?", []interface{}{time.Now().UTC()}
}

// translatedClause restricts a query to articles having a translation in one
// of the permitted languages.
func translatedClause(languages []string) (string, []interface{}, error) {
	clause := " AND a.id IN (SELECT t.article_id FROM article_translations t WHERE t.language_code IN (?))"
	q, args, err := sqlx.In(clause, languages)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand language filter: %w", err)
	}
	return q, args, nil
}

// Create inserts a new article and sets its generated ID.
func (r *SQLArticleRepository) Create(ctx context.Context, a *Article) error {
	query := `INSERT INTO articles (section_id, author_id, owner_subject, publishing_date,
		is_published, is_featured, featured_image, created_at, updated_at)
		VALUES (:section_id, :author_id, :owner_subject, :publishing_date,
		:is_published, :is_featured, :featured_image, :created_at, :updated_at)`
	res, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get created article id: %w", err)
	}
	a.ID = id
	return nil
}

// Update updates an existing article.
func (r *SQLArticleRepository) Update(ctx context.Context, a *Article) error {
	query := `UPDATE articles SET section_id = :section_id, author_id = :author_id,
		publishing_date = :publishing_date, is_published = :is_published,
		is_featured = :is_featured, featured_image = :featured_image,
		updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no article found to update with id %d", a.ID)
	}
	return nil
}

// GetByID retrieves a single article. It returns nil if no article exists;
// callers reacting to save events treat a missing article as not applicable.
func (r *SQLArticleRepository) GetByID(ctx context.Context, id int64) (*Article, error) {
	var a Article
	query := `SELECT ` + articleColumns + ` FROM articles a WHERE a.id = ?`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article by id: %w", err)
	}
	return &a, nil
}

// FindBySlug looks an article up by its translated slug within a namespace.
// Returns (nil, nil, nil) when no such article exists.
func (r *SQLArticleRepository) FindBySlug(ctx context.Context, namespace, language, slugStr string) (*Article, *ArticleTranslation, error) {
	var tr ArticleTranslation
	query := `SELECT t.id, t.article_id, t.language_code, t.title, t.slug, t.lead,
		t.meta_title, t.meta_description, t.meta_keywords, t.search_data
		FROM article_translations t
		JOIN articles a ON a.id = t.article_id
		JOIN sections s ON s.id = a.section_id
		WHERE s.namespace = ? AND t.language_code = ? AND t.slug = ?`
	if err := r.db.GetContext(ctx, &tr, query, namespace, language, slugStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to find article by slug: %w", err)
	}
	article, err := r.GetByID(ctx, tr.ArticleID)
	if err != nil {
		return nil, nil, err
	}
	return article, &tr, nil
}

// SlugExists reports whether a slug is already taken within a section and
// language, ignoring the given article (zero to ignore none).
func (r *SQLArticleRepository) SlugExists(ctx context.Context, sectionID int64, language, slugStr string, excludeID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM article_translations t
		JOIN articles a ON a.id = t.article_id
		WHERE a.section_id = ? AND t.language_code = ? AND t.slug = ? AND t.article_id != ?`
	if err := r.db.GetContext(ctx, &count, query, sectionID, language, slugStr, excludeID); err != nil {
		return false, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	return count > 0, nil
}

// UpsertTranslation creates or replaces the per-language fields of an article.
func (r *SQLArticleRepository) UpsertTranslation(ctx context.Context, tr *ArticleTranslation) error {
	existing, err := r.GetTranslation(ctx, tr.ArticleID, tr.LanguageCode)
	if err != nil {
		return err
	}
	if existing == nil {
		query := `INSERT INTO article_translations (article_id, language_code, title, slug, lead,
			meta_title, meta_description, meta_keywords, search_data)
			VALUES (:article_id, :language_code, :title, :slug, :lead,
			:meta_title, :meta_description, :meta_keywords, :search_data)`
		res, err := r.db.NamedExecContext(ctx, query, tr)
		if err != nil {
			return fmt.Errorf("failed to create article translation: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get created translation id: %w", err)
		}
		tr.ID = id
		return nil
	}
	tr.ID = existing.ID
	query := `UPDATE article_translations SET title = :title, slug = :slug, lead = :lead,
		meta_title = :meta_title, meta_description = :meta_description,
		meta_keywords = :meta_keywords, search_data = :search_data WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, tr); err != nil {
		return fmt.Errorf("failed to update article translation: %w", err)
	}
	return nil
}

// GetTranslation retrieves an article's fields in one language, or nil if the
// article has no translation in that language.
func (r *SQLArticleRepository) GetTranslation(ctx context.Context, articleID int64, language string) (*ArticleTranslation, error) {
	var tr ArticleTranslation
	query := `SELECT id, article_id, language_code, title, slug, lead, meta_title,
		meta_description, meta_keywords, search_data
		FROM article_translations WHERE article_id = ? AND language_code = ?`
	if err := r.db.GetContext(ctx, &tr, query, articleID, language); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article translation: %w", err)
	}
	return &tr, nil
}

// Translations retrieves all translations of an article.
func (r *SQLArticleRepository) Translations(ctx context.Context, articleID int64) ([]ArticleTranslation, error) {
	var trs []ArticleTranslation
	query := `SELECT id, article_id, language_code, title, slug, lead, meta_title,
		meta_description, meta_keywords, search_data
		FROM article_translations WHERE article_id = ? ORDER BY language_code`
	if err := r.db.SelectContext(ctx, &trs, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to get article translations: %w", err)
	}
	return trs, nil
}

// ArticlesIn retrieves the articles of a namespace visible in the given mode,
// restricted to the permitted languages, ordered by publishing date descending.
func (r *SQLArticleRepository) ArticlesIn(ctx context.Context, namespace string, languages []string, editor bool) ([]*Article, error) {
	if len(languages) == 0 {
		return []*Article{}, nil
	}
	query := `SELECT ` + articleColumns + ` FROM articles a
		JOIN sections s ON s.id = a.section_id WHERE s.namespace = ?`
	args := []interface{}{namespace}

	vis, visArgs := visibilityClause(editor)
	query += vis
	args = append(args, visArgs...)

	lang, langArgs, err := translatedClause(languages)
	if err != nil {
		return nil, err
	}
	query += lang
	args = append(args, langArgs...)

	query += ` ORDER BY a.publishing_date DESC`

	var articles []*Article
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get articles in namespace: %w", err)
	}
	return articles, nil
}

// FeaturedIn retrieves up to limit featured articles of a namespace, most
// recent first. A limit of zero or less returns everything matching.
func (r *SQLArticleRepository) FeaturedIn(ctx context.Context, namespace string, languages []string, editor bool, limit int) ([]*Article, error) {
	if len(languages) == 0 {
		return []*Article{}, nil
	}
	query := `SELECT ` + articleColumns + ` FROM articles a
		JOIN sections s ON s.id = a.section_id
		WHERE s.namespace = ? AND a.is_featured = 1`
	args := []interface{}{namespace}

	vis, visArgs := visibilityClause(editor)
	query += vis
	args = append(args, visArgs...)

	lang, langArgs, err := translatedClause(languages)
	if err != nil {
		return nil, err
	}
	query += lang
	args = append(args, langArgs...)

	query += ` ORDER BY a.publishing_date DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var articles []*Article
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get featured articles: %w", err)
	}
	return articles, nil
}

// MonthsIn groups the namespace's visible articles by the calendar month of
// their publishing date. The truncation runs in Go so the same query works on
// MySQL and the SQLite test database; the result is sorted by month
// descending.
func (r *SQLArticleRepository) MonthsIn(ctx context.Context, namespace string, editor bool) ([]MonthCount, error) {
	query := `SELECT a.publishing_date FROM articles a
		JOIN sections s ON s.id = a.section_id WHERE s.namespace = ?`
	args := []interface{}{namespace}

	vis, visArgs := visibilityClause(editor)
	query += vis
	args = append(args, visArgs...)

	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get publishing dates: %w", err)
	}

	buckets := make(map[time.Time]int)
	for _, d := range dates {
		d = d.UTC()
		month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		buckets[month]++
	}

	months := make([]MonthCount, 0, len(buckets))
	for month, n := range buckets {
		months = append(months, MonthCount{Month: month, Articles: n})
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month.After(months[j].Month)
	})
	return months, nil
}

// AuthorsWithCounts retrieves the distinct authors with at least one matching
// article in the namespace, paired with their article counts, ordered by
// count descending with name ascending as the tiebreak.
func (r *SQLArticleRepository) AuthorsWithCounts(ctx context.Context, namespace string, languages []string, editor bool) ([]AuthorCount, error) {
	if len(languages) == 0 {
		return []AuthorCount{}, nil
	}
	query := `SELECT au.id, au.user_subject, au.name, COUNT(DISTINCT a.id) AS articles
		FROM authors au
		JOIN articles a ON a.author_id = au.id
		JOIN sections s ON s.id = a.section_id
		WHERE s.namespace = ?`
	args := []interface{}{namespace}

	vis, visArgs := visibilityClause(editor)
	query += vis
	args = append(args, visArgs...)

	lang, langArgs, err := translatedClause(languages)
	if err != nil {
		return nil, err
	}
	query += lang
	args = append(args, langArgs...)

	query += ` GROUP BY au.id, au.user_subject, au.name ORDER BY articles DESC, au.name ASC`

	var authors []AuthorCount
	if err := r.db.SelectContext(ctx, &authors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get authors with counts: %w", err)
	}
	return authors, nil
}

// candidateIDs returns the ids of the namespace's articles matching the
// current visibility mode and language set.
func (r *SQLArticleRepository) candidateIDs(ctx context.Context, namespace string, languages []string, editor bool) ([]int64, error) {
	if len(languages) == 0 {
		return nil, nil
	}
	query := `SELECT a.id FROM articles a
		JOIN sections s ON s.id = a.section_id WHERE s.namespace = ?`
	args := []interface{}{namespace}

	vis, visArgs := visibilityClause(editor)
	query += vis
	args = append(args, visArgs...)

	lang, langArgs, err := translatedClause(languages)
	if err != nil {
		return nil, err
	}
	query += lang
	args = append(args, langArgs...)

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get candidate article ids: %w", err)
	}
	return ids, nil
}

// TagsWithCounts retrieves the tags attached to the namespace's matching
// articles with their usage counts, ordered by count descending then name.
// When no articles match, the aggregate query is skipped entirely.
func (r *SQLArticleRepository) TagsWithCounts(ctx context.Context, namespace string, languages []string, editor bool) ([]TagCount, error) {
	ids, err := r.candidateIDs(ctx, namespace, languages, editor)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []TagCount{}, nil
	}

	query, args, err := sqlx.In(`SELECT t.id, t.name, t.slug, COUNT(at.article_id) AS articles
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id IN (?)
		GROUP BY t.id, t.name, t.slug
		ORDER BY articles DESC, t.name ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to expand tag count query: %w", err)
	}

	var tags []TagCount
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get tags with counts: %w", err)
	}
	return tags, nil
}

// CategoriesWithCounts retrieves the categories of the namespace's matching
// articles with their counts. The display name is resolved in the given
// language, falling back to the category slug.
func (r *SQLArticleRepository) CategoriesWithCounts(ctx context.Context, namespace, language string, languages []string, editor bool) ([]CategoryCount, error) {
	ids, err := r.candidateIDs(ctx, namespace, languages, editor)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []CategoryCount{}, nil
	}

	query, args, err := sqlx.In(`SELECT c.id, c.slug, COALESCE(ct.name, c.slug) AS name,
		COUNT(DISTINCT ac.article_id) AS articles
		FROM categories c
		JOIN article_categories ac ON ac.category_id = c.id
		LEFT JOIN category_translations ct ON ct.category_id = c.id AND ct.language_code = ?
		WHERE ac.article_id IN (?)
		GROUP BY c.id, c.slug, ct.name
		ORDER BY articles DESC, name ASC`, language, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to expand category count query: %w", err)
	}

	var categories []CategoryCount
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get categories with counts: %w", err)
	}
	return categories, nil
}

// RelatedTo retrieves the ordered related-article list of an article. The
// relation is asymmetric; only the forward direction is read.
func (r *SQLArticleRepository) RelatedTo(ctx context.Context, articleID int64, languages []string, editor bool) ([]*Article, error) {
	if len(languages) == 0 {
		return []*Article{}, nil
	}
	query := `SELECT ` + articleColumns + ` FROM articles a
		JOIN article_related rel ON rel.related_id = a.id
		WHERE rel.article_id = ?`
	args := []interface{}{articleID}

	vis, visArgs := visibilityClause(editor)
	query += vis
	args = append(args, visArgs...)

	lang, langArgs, err := translatedClause(languages)
	if err != nil {
		return nil, err
	}
	query += lang
	args = append(args, langArgs...)

	query += ` ORDER BY rel.position ASC`

	var articles []*Article
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get related articles: %w", err)
	}
	return articles, nil
}

// SetRelated replaces an article's ordered related-article list.
func (r *SQLArticleRepository) SetRelated(ctx context.Context, articleID int64, relatedIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM article_related WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to clear related articles: %w", err)
	}
	for i, id := range relatedIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO article_related (article_id, related_id, position) VALUES (?, ?, ?)`,
			articleID, id, i); err != nil {
			return fmt.Errorf("failed to add related article: %w", err)
		}
	}
	return nil
}

// TagArticle replaces an article's tag set, creating unknown tags on the fly.
func (r *SQLArticleRepository) TagArticle(ctx context.Context, articleID int64, names []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to clear article tags: %w", err)
	}
	for _, name := range names {
		tag, err := r.getOrCreateTag(ctx, name)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?)`,
			articleID, tag.ID); err != nil {
			return fmt.Errorf("failed to tag article: %w", err)
		}
	}
	return nil
}

func (r *SQLArticleRepository) getOrCreateTag(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	err := r.db.GetContext(ctx, &tag, `SELECT id, name, slug FROM tags WHERE name = ?`, name)
	if err == nil {
		return &tag, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up tag: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO tags (name, slug) VALUES (?, ?)`, name, slug.Make(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get created tag id: %w", err)
	}
	return &Tag{ID: id, Name: name, Slug: slug.Make(name)}, nil
}

// TagsOf retrieves an article's tags.
func (r *SQLArticleRepository) TagsOf(ctx context.Context, articleID int64) ([]Tag, error) {
	var tags []Tag
	query := `SELECT t.id, t.name, t.slug FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = ? ORDER BY t.name`
	if err := r.db.SelectContext(ctx, &tags, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to get article tags: %w", err)
	}
	return tags, nil
}

// Categorize replaces an article's category set.
func (r *SQLArticleRepository) Categorize(ctx context.Context, articleID int64, categoryIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM article_categories WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to clear article categories: %w", err)
	}
	for _, id := range categoryIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO article_categories (article_id, category_id) VALUES (?, ?)`,
			articleID, id); err != nil {
			return fmt.Errorf("failed to categorize article: %w", err)
		}
	}
	return nil
}

// CategoryNamesOf retrieves the translated names of an article's categories,
// falling back to the category slug where no translation exists.
func (r *SQLArticleRepository) CategoryNamesOf(ctx context.Context, articleID int64, language string) ([]string, error) {
	var names []string
	query := `SELECT COALESCE(ct.name, c.slug) FROM categories c
		JOIN article_categories ac ON ac.category_id = c.id
		LEFT JOIN category_translations ct ON ct.category_id = c.id AND ct.language_code = ?
		WHERE ac.article_id = ? ORDER BY c.slug`
	if err := r.db.SelectContext(ctx, &names, query, language, articleID); err != nil {
		return nil, fmt.Errorf("failed to get article category names: %w", err)
	}
	return names, nil
}

// SaveBlock creates or updates a content block.
func (r *SQLArticleRepository) SaveBlock(ctx context.Context, b *ContentBlock) error {
	if b.ID == 0 {
		query := `INSERT INTO content_blocks (article_id, language_code, position, kind, body)
			VALUES (:article_id, :language_code, :position, :kind, :body)`
		res, err := r.db.NamedExecContext(ctx, query, b)
		if err != nil {
			return fmt.Errorf("failed to create content block: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get created block id: %w", err)
		}
		b.ID = id
		return nil
	}
	query := `UPDATE content_blocks SET position = :position, kind = :kind, body = :body WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, b)
	if err != nil {
		return fmt.Errorf("failed to update content block: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no content block found to update with id %d", b.ID)
	}
	return nil
}

// GetBlock retrieves a content block, or nil if it does not exist.
func (r *SQLArticleRepository) GetBlock(ctx context.Context, id int64) (*ContentBlock, error) {
	var b ContentBlock
	query := `SELECT id, article_id, language_code, position, kind, body FROM content_blocks WHERE id = ?`
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get content block: %w", err)
	}
	return &b, nil
}

// BlocksOf retrieves an article's content blocks in one language, in order.
func (r *SQLArticleRepository) BlocksOf(ctx context.Context, articleID int64, language string) ([]ContentBlock, error) {
	var blocks []ContentBlock
	query := `SELECT id, article_id, language_code, position, kind, body FROM content_blocks
		WHERE article_id = ? AND language_code = ? ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &blocks, query, articleID, language); err != nil {
		return nil, fmt.Errorf("failed to get content blocks: %w", err)
	}
	return blocks, nil
}

// SetSearchData persists the recomputed search index string for one
// translation of an article.
func (r *SQLArticleRepository) SetSearchData(ctx context.Context, articleID int64, language, text string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE article_translations SET search_data = ? WHERE article_id = ? AND language_code = ?`,
		text, articleID, language)
	if err != nil {
		return fmt.Errorf("failed to set search data: %w", err)
	}
	return nil
}

// PublishedWithImages retrieves every published article that has a featured
// image, for the thumbnail pregeneration command.
func (r *SQLArticleRepository) PublishedWithImages(ctx context.Context) ([]*Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles a
		WHERE a.is_published = 1 AND a.publishing_date <= ? AND a.featured_image IS NOT NULL
		ORDER BY a.publishing_date DESC`
	var articles []*Article
	if err := r.db.SelectContext(ctx, &articles, query, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to get articles with featured images: %w", err)
	}
	return articles, nil
}
