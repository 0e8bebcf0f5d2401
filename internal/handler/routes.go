package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	appmiddleware "go-newsblog-app/internal/middleware"
	"go-newsblog-app/internal/session"
)

// NewRouter creates and configures a new chi router.
func NewRouter(
	articleHandler *ArticleHandler,
	widgetHandler *WidgetHandler,
	categoryHandler *CategoryHandler,
	seoHandler *SeoHandler,
	authHandler *AuthHandler,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(appmiddleware.AppHandler) http.Handler,
	sm session.Manager,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sm.LoadAndSave)

	// SEO routes
	r.Get("/robots.txt", seoHandler.robotsHandler)
	r.Get("/sitemap.xml", seoHandler.sitemapHandler)

	// Authentication routes
	if authHandler != nil {
		r.Get("/auth/login", authHandler.handleLogin)
		r.Get("/auth/callback", authHandler.handleCallback)
		r.Post("/auth/logout", authHandler.handleLogout)
	}

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authzMiddleware)
		r.Use(appmiddleware.EditMode(sm))

		if authHandler != nil {
			r.Post("/auth/editmode", http.HandlerFunc(authHandler.handleEditMode))
		}

		r.Method(http.MethodGet, "/api/articles/{articleID}/related", errorMiddleware(widgetHandler.relatedHandler))
		r.Method(http.MethodPost, "/api/blocks", errorMiddleware(articleHandler.saveBlockHandler))

		r.Method(http.MethodGet, "/api/categories", errorMiddleware(categoryHandler.listHandler))
		r.Method(http.MethodPost, "/api/categories", errorMiddleware(categoryHandler.createHandler))
		r.Method(http.MethodPost, "/api/categories/{categoryID}", errorMiddleware(categoryHandler.renameHandler))

		r.Route("/api/{namespace}", func(r chi.Router) {
			r.Method(http.MethodGet, "/articles", errorMiddleware(articleHandler.listHandler))
			r.Method(http.MethodPost, "/articles", errorMiddleware(articleHandler.saveHandler))
			r.Method(http.MethodGet, "/articles/{slug}", errorMiddleware(articleHandler.detailHandler))

			r.Method(http.MethodGet, "/widgets/archive", errorMiddleware(widgetHandler.archiveHandler))
			r.Method(http.MethodGet, "/widgets/authors", errorMiddleware(widgetHandler.authorsHandler))
			r.Method(http.MethodGet, "/widgets/categories", errorMiddleware(widgetHandler.categoriesHandler))
			r.Method(http.MethodGet, "/widgets/tags", errorMiddleware(widgetHandler.tagsHandler))
			r.Method(http.MethodGet, "/widgets/featured", errorMiddleware(widgetHandler.featuredHandler))
			r.Method(http.MethodGet, "/widgets/latest", errorMiddleware(widgetHandler.latestHandler))
		})
	})

	return r
}
