package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-newsblog-app/internal/i18n"
	"go-newsblog-app/internal/logger"
	"go-newsblog-app/internal/middleware"
	"go-newsblog-app/internal/widget"
)

// Default widget sizes, used when the request does not override them.
const (
	defaultFeaturedCount = 3
	defaultLatestCount   = 5
)

// WidgetHandler holds the dependencies for the widget endpoints.
type WidgetHandler struct {
	widgets   *widget.Widgets
	languages []string
	fallback  string
	log       logger.Logger
}

// NewWidgetHandler creates a new WidgetHandler.
func NewWidgetHandler(w *widget.Widgets, languages []string, defaultLanguage string, log logger.Logger) *WidgetHandler {
	return &WidgetHandler{
		widgets:   w,
		languages: languages,
		fallback:  defaultLanguage,
		log:       log,
	}
}

// request builds the widget request for the current viewer: the full set of
// configured languages and the edit-mode flag. The widget itself decides
// whether the asked-for language is permitted.
func (h *WidgetHandler) request(r *http.Request) (widget.Request, string) {
	lang := i18n.Normalize(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = h.fallback
	}
	return widget.Request{
		Languages: h.languages,
		Editor:    middleware.IsEditMode(r.Context()),
	}, lang
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// archiveHandler serves the month histogram of a section.
func (h *WidgetHandler) archiveHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	req, lang := h.request(r)
	months, err := h.widgets.Archive(r.Context(), req, chi.URLParam(r, "namespace"), lang)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load archive", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, months)
}

// authorsHandler serves the author list of a section with article counts.
func (h *WidgetHandler) authorsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	req, lang := h.request(r)
	authors, err := h.widgets.Authors(r.Context(), req, chi.URLParam(r, "namespace"), lang)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load authors", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, authors)
}

// categoriesHandler serves the category list of a section with article counts.
func (h *WidgetHandler) categoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	req, lang := h.request(r)
	categories, err := h.widgets.Categories(r.Context(), req, chi.URLParam(r, "namespace"), lang)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, categories)
}

// tagsHandler serves the tag list of a section with usage counts.
func (h *WidgetHandler) tagsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	req, lang := h.request(r)
	tags, err := h.widgets.Tags(r.Context(), req, chi.URLParam(r, "namespace"), lang)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load tags", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, tags)
}

// featuredHandler serves a section's featured articles.
func (h *WidgetHandler) featuredHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	req, lang := h.request(r)
	count := intParam(r, "count", defaultFeaturedCount)
	articles, err := h.widgets.Featured(r.Context(), req, chi.URLParam(r, "namespace"), lang, count)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load featured articles", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, articles)
}

// latestHandler serves a section's latest articles, optionally skipping the
// ones a featured widget on the same page already shows.
func (h *WidgetHandler) latestHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	req, lang := h.request(r)
	count := intParam(r, "count", defaultLatestCount)
	excludeFeatured := intParam(r, "exclude_featured", 0)
	articles, err := h.widgets.Latest(r.Context(), req, chi.URLParam(r, "namespace"), lang, count, excludeFeatured)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load latest articles", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, articles)
}

// relatedHandler serves the related-article list of one article.
func (h *WidgetHandler) relatedHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	req, lang := h.request(r)
	articleID, err := strconv.ParseInt(chi.URLParam(r, "articleID"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid article id", Code: http.StatusBadRequest}
	}
	articles, err := h.widgets.Related(r.Context(), req, articleID, lang)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load related articles", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, articles)
}
