package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-newsblog-app/internal/i18n"
	"go-newsblog-app/internal/middleware"
	"go-newsblog-app/internal/service"
)

// CategoryHandler holds the dependencies for the category endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
	languages  []string
	fallback   string
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(cs *service.CategoryService, languages []string, defaultLanguage string) *CategoryHandler {
	return &CategoryHandler{categories: cs, languages: languages, fallback: defaultLanguage}
}

func (h *CategoryHandler) language(r *http.Request) string {
	lang := i18n.Normalize(r.URL.Query().Get("lang"))
	if i18n.Valid(h.languages, lang) {
		return lang
	}
	return h.fallback
}

// listHandler lists every category with names in the requested language.
func (h *CategoryHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categories, err := h.categories.List(r.Context(), h.language(r))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to list categories", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, categories)
}

// createCategoryRequest is the payload for creating a category.
type createCategoryRequest struct {
	Slug  string            `json:"slug"`
	Names map[string]string `json:"names"`
}

// createHandler creates a category with its translated names.
func (h *CategoryHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid request body", Code: http.StatusBadRequest}
	}
	category, err := h.categories.Create(r.Context(), req.Slug, req.Names)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to create category", Code: http.StatusBadRequest}
	}
	return writeJSON(w, http.StatusCreated, category)
}

// renameCategoryRequest is the payload for renaming a category in one language.
type renameCategoryRequest struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

// renameHandler sets a category's name in one language.
func (h *CategoryHandler) renameHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid category id", Code: http.StatusBadRequest}
	}
	var req renameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid request body", Code: http.StatusBadRequest}
	}
	if err := h.categories.Rename(r.Context(), id, i18n.Normalize(req.Language), req.Name); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to rename category", Code: http.StatusBadRequest}
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
