package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-newsblog-app/internal/data"
	"go-newsblog-app/internal/i18n"
	"go-newsblog-app/internal/logger"
	"go-newsblog-app/internal/middleware"
	"go-newsblog-app/internal/service"
)

// ArticleHandler holds the dependencies for the article handlers.
type ArticleHandler struct {
	articles  *service.ArticleService
	languages []string
	fallback  string
	log       logger.Logger
}

// NewArticleHandler creates a new ArticleHandler with the given dependencies.
func NewArticleHandler(as *service.ArticleService, languages []string, defaultLanguage string, log logger.Logger) *ArticleHandler {
	return &ArticleHandler{
		articles:  as,
		languages: languages,
		fallback:  defaultLanguage,
		log:       log,
	}
}

// language resolves the request language: the lang query parameter when it is
// a configured language, the configured default otherwise.
func (h *ArticleHandler) language(r *http.Request) string {
	lang := i18n.Normalize(r.URL.Query().Get("lang"))
	if i18n.Valid(h.languages, lang) {
		return lang
	}
	return h.fallback
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) *middleware.AppError {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to encode response", Code: http.StatusInternalServerError}
	}
	return nil
}

// articleItem is the listing representation of an article.
type articleItem struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Lead           string    `json:"lead"`
	PublishingDate time.Time `json:"publishing_date"`
	IsFeatured     bool      `json:"is_featured"`
	FeaturedImage  *string   `json:"featured_image,omitempty"`
	Permalink      string    `json:"permalink"`
}

func (h *ArticleHandler) item(r *http.Request, section *data.Section, a *data.Article, lang string) (articleItem, error) {
	item := articleItem{
		ID:             a.ID,
		PublishingDate: a.PublishingDate,
		IsFeatured:     a.IsFeatured,
		FeaturedImage:  a.FeaturedImage,
	}
	tr, err := h.articles.Translation(r.Context(), a.ID, lang)
	if err != nil {
		return item, err
	}
	if tr != nil {
		item.Title = tr.Title
		item.Slug = tr.Slug
		item.Lead = tr.Lead
	}
	item.Permalink = service.Permalink(section, a, tr)
	return item, nil
}

// listHandler lists the articles of a section that are visible to the viewer,
// newest first.
func (h *ArticleHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	namespace := chi.URLParam(r, "namespace")
	lang := h.language(r)

	section, err := h.articles.SectionByNamespace(r.Context(), namespace)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load section", Code: http.StatusInternalServerError}
	}
	if section == nil {
		return &middleware.AppError{Error: errors.New("unknown namespace " + namespace), Message: "Section not found", Code: http.StatusNotFound}
	}

	var articles []*data.Article
	if middleware.IsEditMode(r.Context()) {
		articles, err = h.articles.AllIn(r.Context(), namespace, []string{lang})
	} else {
		articles, err = h.articles.PublishedIn(r.Context(), namespace, []string{lang})
	}
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to list articles", Code: http.StatusInternalServerError}
	}

	items := make([]articleItem, 0, len(articles))
	for _, a := range articles {
		item, err := h.item(r, section, a, lang)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to load article translation", Code: http.StatusInternalServerError}
		}
		items = append(items, item)
	}
	return writeJSON(w, http.StatusOK, items)
}

// articleDetail is the detail representation of an article.
type articleDetail struct {
	articleItem
	MetaTitle       string              `json:"meta_title,omitempty"`
	MetaDescription string              `json:"meta_description,omitempty"`
	MetaKeywords    string              `json:"meta_keywords,omitempty"`
	Tags            []data.Tag          `json:"tags"`
	Categories      []string            `json:"categories"`
	Blocks          []data.ContentBlock `json:"blocks"`
}

// detailHandler serves one article by its translated slug. Articles that do
// not exist and articles the viewer may not see are both a 404.
func (h *ArticleHandler) detailHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	namespace := chi.URLParam(r, "namespace")
	slug := chi.URLParam(r, "slug")
	lang := h.language(r)
	editor := middleware.IsEditMode(r.Context())

	section, err := h.articles.SectionByNamespace(r.Context(), namespace)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load section", Code: http.StatusInternalServerError}
	}
	if section == nil {
		return &middleware.AppError{Error: errors.New("unknown namespace " + namespace), Message: "Section not found", Code: http.StatusNotFound}
	}

	article, tr, err := h.articles.DetailBySlug(r.Context(), namespace, lang, slug, editor)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load article", Code: http.StatusInternalServerError}
	}
	if article == nil {
		return &middleware.AppError{Error: errors.New("article not found: " + slug), Message: "Article not found", Code: http.StatusNotFound}
	}

	detail := articleDetail{
		articleItem: articleItem{
			ID:             article.ID,
			Title:          tr.Title,
			Slug:           tr.Slug,
			Lead:           tr.Lead,
			PublishingDate: article.PublishingDate,
			IsFeatured:     article.IsFeatured,
			FeaturedImage:  article.FeaturedImage,
			Permalink:      service.Permalink(section, article, tr),
		},
		MetaTitle:       tr.MetaTitle,
		MetaDescription: tr.MetaDescription,
		MetaKeywords:    tr.MetaKeywords,
	}
	if detail.Tags, err = h.articles.Tags(r.Context(), article.ID); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load tags", Code: http.StatusInternalServerError}
	}
	if detail.Categories, err = h.articles.CategoryNames(r.Context(), article.ID, lang); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	if detail.Blocks, err = h.articles.Blocks(r.Context(), article.ID, lang); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load content blocks", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, detail)
}

// saveRequest is the payload for creating or updating an article.
type saveRequest struct {
	ID              int64     `json:"id"`
	Language        string    `json:"language"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Lead            string    `json:"lead"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
	MetaKeywords    string    `json:"meta_keywords"`
	PublishingDate  time.Time `json:"publishing_date"`
	IsPublished     bool      `json:"is_published"`
	IsFeatured      bool      `json:"is_featured"`
	FeaturedImage   *string   `json:"featured_image"`
	Tags            []string  `json:"tags"`
	CategoryIDs     []int64   `json:"category_ids"`
	RelatedIDs      []int64   `json:"related_ids"`
}

// saveHandler creates or updates an article in one language.
func (h *ArticleHandler) saveHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	namespace := chi.URLParam(r, "namespace")
	userInfo := middleware.GetUserInfo(r.Context())

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid request body", Code: http.StatusBadRequest}
	}
	lang := i18n.Normalize(req.Language)
	if !i18n.Valid(h.languages, lang) {
		return &middleware.AppError{Error: errors.New("unsupported language " + req.Language), Message: "Unsupported language", Code: http.StatusBadRequest}
	}

	article, err := h.articles.SaveArticle(r.Context(), service.SaveArticleInput{
		ID:              req.ID,
		Namespace:       namespace,
		Language:        lang,
		Title:           req.Title,
		Slug:            req.Slug,
		Lead:            req.Lead,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		PublishingDate:  req.PublishingDate,
		IsPublished:     req.IsPublished,
		IsFeatured:      req.IsFeatured,
		FeaturedImage:   req.FeaturedImage,
		Tags:            req.Tags,
		CategoryIDs:     req.CategoryIDs,
		RelatedIDs:      req.RelatedIDs,
		OwnerSubject:    userInfo.Subject,
		OwnerName:       userInfo.Name,
	})
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to save article", Code: http.StatusInternalServerError}
	}

	section, err := h.articles.SectionByNamespace(r.Context(), namespace)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load section", Code: http.StatusInternalServerError}
	}
	item, err := h.item(r, section, article, lang)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load saved article", Code: http.StatusInternalServerError}
	}
	code := http.StatusOK
	if req.ID == 0 {
		code = http.StatusCreated
	}
	return writeJSON(w, code, item)
}

// saveBlockRequest is the payload for saving a content block.
type saveBlockRequest struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"article_id"`
	Language  string `json:"language"`
	Position  int    `json:"position"`
	Kind      string `json:"kind"`
	Body      string `json:"body"`
}

// saveBlockHandler creates or updates one content block of an article.
func (h *ArticleHandler) saveBlockHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req saveBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid request body", Code: http.StatusBadRequest}
	}
	lang := i18n.Normalize(req.Language)
	if !i18n.Valid(h.languages, lang) {
		return &middleware.AppError{Error: errors.New("unsupported language " + req.Language), Message: "Unsupported language", Code: http.StatusBadRequest}
	}

	block := &data.ContentBlock{
		ID:           req.ID,
		ArticleID:    req.ArticleID,
		LanguageCode: lang,
		Position:     req.Position,
		Kind:         req.Kind,
		Body:         req.Body,
	}
	if err := h.articles.SaveBlock(r.Context(), block); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to save content block", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, block)
}
