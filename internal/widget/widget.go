// Package widget holds the read models rendered inside the page composition:
// archive counts, author/category/tag lists, featured, latest and related
// article lists. Widgets never error on an unpermitted language; they return
// an empty result instead.
package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-newsblog-app/internal/cache"
	"go-newsblog-app/internal/data"
	"go-newsblog-app/internal/i18n"
	"go-newsblog-app/internal/logger"
)

// Repository is the slice of the article store widgets read from.
type Repository interface {
	ArticlesIn(ctx context.Context, namespace string, languages []string, editor bool) ([]*data.Article, error)
	FeaturedIn(ctx context.Context, namespace string, languages []string, editor bool, limit int) ([]*data.Article, error)
	MonthsIn(ctx context.Context, namespace string, editor bool) ([]data.MonthCount, error)
	AuthorsWithCounts(ctx context.Context, namespace string, languages []string, editor bool) ([]data.AuthorCount, error)
	TagsWithCounts(ctx context.Context, namespace string, languages []string, editor bool) ([]data.TagCount, error)
	CategoriesWithCounts(ctx context.Context, namespace, language string, languages []string, editor bool) ([]data.CategoryCount, error)
	RelatedTo(ctx context.Context, articleID int64, languages []string, editor bool) ([]*data.Article, error)
}

// Store is the cache widgets memoize their aggregates in.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	DefaultTTL() time.Duration
}

// Request carries the per-request inputs every widget needs: the languages
// the viewer may see and whether the viewer is an editor in preview mode.
type Request struct {
	Languages []string
	Editor    bool
}

// Widgets bundles the shared collaborators of all widget read models.
type Widgets struct {
	repo  Repository
	cache Store
	log   logger.Logger
}

// New creates a new Widgets instance.
func New(repo Repository, store Store, log logger.Logger) *Widgets {
	return &Widgets{repo: repo, cache: store, log: log}
}

// getCached loads a cached aggregate into dest, reporting whether it was
// found. Cache failures degrade to a miss.
func (w *Widgets) getCached(key string, dest interface{}) bool {
	raw, err := w.cache.Get(key)
	if err != nil {
		w.log.Warn(fmt.Sprintf("cache read failed for %s: %v", key, err))
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		w.log.Warn(fmt.Sprintf("cache entry %s is unreadable: %v", key, err))
		return false
	}
	return true
}

// putCached stores an aggregate, best effort.
func (w *Widgets) putCached(key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		w.log.Warn(fmt.Sprintf("failed to marshal cache entry %s: %v", key, err))
		return
	}
	if err := w.cache.Set(key, raw, w.cache.DefaultTTL()); err != nil {
		w.log.Warn(fmt.Sprintf("cache write failed for %s: %v", key, err))
	}
}

// Archive returns the month histogram of the namespace's visible articles,
// newest month first. Cached per (namespace, language, mode).
func (w *Widgets) Archive(ctx context.Context, req Request, namespace, language string) ([]data.MonthCount, error) {
	if !i18n.Valid(req.Languages, language) {
		return []data.MonthCount{}, nil
	}
	key := cache.Key(cache.KindArchive, namespace, language, req.Editor)
	var months []data.MonthCount
	if w.getCached(key, &months) {
		return months, nil
	}
	months, err := w.repo.MonthsIn(ctx, namespace, req.Editor)
	if err != nil {
		return nil, err
	}
	w.putCached(key, months)
	return months, nil
}

// Authors returns the authors who have at least one matching article in the
// namespace, with their article counts, most prolific first.
func (w *Widgets) Authors(ctx context.Context, req Request, namespace, language string) ([]data.AuthorCount, error) {
	if !i18n.Valid(req.Languages, language) {
		return []data.AuthorCount{}, nil
	}
	key := cache.Key(cache.KindAuthors, namespace, language, req.Editor)
	var authors []data.AuthorCount
	if w.getCached(key, &authors) {
		return authors, nil
	}
	authors, err := w.repo.AuthorsWithCounts(ctx, namespace, req.Languages, req.Editor)
	if err != nil {
		return nil, err
	}
	w.putCached(key, authors)
	return authors, nil
}

// Categories returns the categories of the namespace's matching articles with
// counts, names resolved in the widget language.
func (w *Widgets) Categories(ctx context.Context, req Request, namespace, language string) ([]data.CategoryCount, error) {
	if !i18n.Valid(req.Languages, language) {
		return []data.CategoryCount{}, nil
	}
	key := cache.Key(cache.KindCategories, namespace, language, req.Editor)
	var categories []data.CategoryCount
	if w.getCached(key, &categories) {
		return categories, nil
	}
	categories, err := w.repo.CategoriesWithCounts(ctx, namespace, language, req.Languages, req.Editor)
	if err != nil {
		return nil, err
	}
	w.putCached(key, categories)
	return categories, nil
}

// Tags returns the tags of the namespace's matching articles with usage
// counts, most used first.
func (w *Widgets) Tags(ctx context.Context, req Request, namespace, language string) ([]data.TagCount, error) {
	if !i18n.Valid(req.Languages, language) {
		return []data.TagCount{}, nil
	}
	key := cache.Key(cache.KindTags, namespace, language, req.Editor)
	var tags []data.TagCount
	if w.getCached(key, &tags) {
		return tags, nil
	}
	tags, err := w.repo.TagsWithCounts(ctx, namespace, req.Languages, req.Editor)
	if err != nil {
		return nil, err
	}
	w.putCached(key, tags)
	return tags, nil
}

// Featured returns up to count featured articles of the namespace. A zero
// count or an unpermitted language yields an empty result.
func (w *Widgets) Featured(ctx context.Context, req Request, namespace, language string, count int) ([]*data.Article, error) {
	if count <= 0 || !i18n.Valid(req.Languages, language) {
		return []*data.Article{}, nil
	}
	return w.repo.FeaturedIn(ctx, namespace, req.Languages, req.Editor, count)
}

// Latest returns the namespace's latest articles, excluding the most recent
// excludeFeatured featured articles so they are not shown twice next to a
// featured-articles widget.
func (w *Widgets) Latest(ctx context.Context, req Request, namespace, language string, latest, excludeFeatured int) ([]*data.Article, error) {
	if latest <= 0 || !i18n.Valid(req.Languages, language) {
		return []*data.Article{}, nil
	}
	articles, err := w.repo.ArticlesIn(ctx, namespace, req.Languages, req.Editor)
	if err != nil {
		return nil, err
	}

	excluded := map[int64]bool{}
	if excludeFeatured > 0 {
		featured, err := w.repo.FeaturedIn(ctx, namespace, req.Languages, req.Editor, excludeFeatured)
		if err != nil {
			return nil, err
		}
		for _, f := range featured {
			excluded[f.ID] = true
		}
	}

	out := make([]*data.Article, 0, latest)
	for _, a := range articles {
		if excluded[a.ID] {
			continue
		}
		out = append(out, a)
		if len(out) == latest {
			break
		}
	}
	return out, nil
}

// Related returns the ordered related-article list of the given article. The
// relation is read off the article itself, not the namespace.
func (w *Widgets) Related(ctx context.Context, req Request, articleID int64, language string) ([]*data.Article, error) {
	if !i18n.Valid(req.Languages, language) {
		return []*data.Article{}, nil
	}
	return w.repo.RelatedTo(ctx, articleID, req.Languages, req.Editor)
}
