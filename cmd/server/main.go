package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"

	"go-newsblog-app/internal/auth"
	"go-newsblog-app/internal/cache"
	"go-newsblog-app/internal/config"
	"go-newsblog-app/internal/data"
	"go-newsblog-app/internal/handler"
	"go-newsblog-app/internal/logger"
	"go-newsblog-app/internal/middleware"
	"go-newsblog-app/internal/service"
	"go-newsblog-app/internal/widget"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, nil)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" || cfg.Session.SecretKey == "CHANGE_ME_IN_PRODUCTION_SECRET!!" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure NEWSBLOG_SESSION_SECRETKEY environment variable.")
	}
	if len(cfg.Newsblog.Languages) == 0 {
		log.Fatal(errors.New("no languages configured"), "Set newsblog.languages to at least one language code.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB("mysql", cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewAuthenticator(&cfg.OIDC)
	if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	enforcer, err := auth.NewEnforcer("mysql", cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	widgetCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer widgetCache.Close()
	log.Info("Cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	articleRepository := data.NewSQLArticleRepository(db)
	sectionRepository := data.NewSectionRepository(db)
	authorRepository := data.NewAuthorRepository(db)
	categoryRepository := data.NewCategoryRepository(db)

	articleService := service.NewArticleService(articleRepository, sectionRepository, authorRepository)
	if cfg.Newsblog.UpdateSearchOnSave {
		builder := service.NewSearchIndexBuilder(articleRepository, service.NewGoldmarkRenderer())
		articleService.EnableSearchUpdates(builder)
		log.Info("Search index updates on save are enabled.")
	}

	categoryService := service.NewCategoryService(categoryRepository)

	widgets := widget.New(articleRepository, widgetCache, log)

	articleHandler := handler.NewArticleHandler(articleService, cfg.Newsblog.Languages, cfg.Newsblog.DefaultLanguage, log)
	widgetHandler := handler.NewWidgetHandler(widgets, cfg.Newsblog.Languages, cfg.Newsblog.DefaultLanguage, log)
	categoryHandler := handler.NewCategoryHandler(categoryService, cfg.Newsblog.Languages, cfg.Newsblog.DefaultLanguage)
	authHandler := handler.NewAuthHandler(authenticator, sessionManager)
	seoHandler := handler.NewSeoHandler(articleService, cfg.Newsblog.Languages, cfg.Newsblog.BaseURL)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager)
	errorMiddleware := middleware.Error(log)

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(articleHandler, widgetHandler, categoryHandler, seoHandler, authHandler, authzMiddleware, errorMiddleware, sessionManager)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
