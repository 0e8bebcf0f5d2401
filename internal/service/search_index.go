package service

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"go-newsblog-app/internal/data"
)

// SearchRepository is the slice of the article store the index builder reads.
type SearchRepository interface {
	GetTranslation(ctx context.Context, articleID int64, language string) (*data.ArticleTranslation, error)
	CategoryNamesOf(ctx context.Context, articleID int64, language string) ([]string, error)
	TagsOf(ctx context.Context, articleID int64) ([]data.Tag, error)
	BlocksOf(ctx context.Context, articleID int64, language string) ([]data.ContentBlock, error)
}

// SearchIndexBuilder assembles the denormalized search string stored in an
// article translation's search_data column: the stripped lead text, the
// translated category names, the tag names and the plain text of every
// content block in the language, space-joined.
type SearchIndexBuilder struct {
	repo     SearchRepository
	renderer BlockRenderer
	strip    *bluemonday.Policy
}

// NewSearchIndexBuilder creates a new SearchIndexBuilder.
func NewSearchIndexBuilder(repo SearchRepository, renderer BlockRenderer) *SearchIndexBuilder {
	return &SearchIndexBuilder{
		repo:     repo,
		renderer: renderer,
		strip:    bluemonday.StripTagsPolicy(),
	}
}

// Build returns the search index string for one translation of an article.
// An article without a stored identity yields an empty string.
func (b *SearchIndexBuilder) Build(ctx context.Context, article *data.Article, language string) (string, error) {
	if article == nil || article.ID == 0 {
		return "", nil
	}

	var bits []string
	appendBit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			bits = append(bits, s)
		}
	}

	tr, err := b.repo.GetTranslation(ctx, article.ID, language)
	if err != nil {
		return "", err
	}
	if tr != nil {
		appendBit(b.strip.Sanitize(tr.Lead))
	}

	names, err := b.repo.CategoryNamesOf(ctx, article.ID, language)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		appendBit(name)
	}

	tags, err := b.repo.TagsOf(ctx, article.ID)
	if err != nil {
		return "", err
	}
	for _, tag := range tags {
		appendBit(tag.Name)
	}

	blocks, err := b.repo.BlocksOf(ctx, article.ID, language)
	if err != nil {
		return "", err
	}
	for _, block := range blocks {
		text, err := b.renderer.PlainText(block)
		if err != nil {
			return "", err
		}
		appendBit(text)
	}

	return strings.Join(bits, " "), nil
}
