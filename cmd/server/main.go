package main

import (
	"context"
	"errors"
	"fmt"
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/cache"
	"go-portfolio-blog/internal/config"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/feed"
	"go-portfolio-blog/internal/handler"
	"go-portfolio-blog/internal/logger"
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/internal/service"
	"go-portfolio-blog/internal/storage"
	"go-portfolio-blog/internal/view"
	"go-portfolio-blog/web"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"
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
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Initialization and Migration ---
	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(db); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	// --- Session Management Setup ---
	sessionManager := newSessionManager(cfg, db)

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	var authenticator handler.Authenticator
	if cfg.OIDC.IssuerURL != "" {
		a, err := auth.NewAuthenticator(ctx, &cfg.OIDC)
		if err != nil {
			log.Fatal(err, "Failed to initialize authenticator")
		}
		authenticator = a
	} else {
		log.Warn("No OIDC issuer configured; sign-in is disabled.")
	}
	if cfg.Blog.AdminEmail == "" {
		log.Warn("No admin email configured; nobody can author posts.")
	}
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, cfg.Blog.AdminEmail, log)
	policy := auth.EmailPolicy{AdminEmail: cfg.Blog.AdminEmail}
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	taxonomyCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer taxonomyCache.Close()

	// --- Object Storage ---
	store, storageHandler := newObjectStore(ctx, cfg, log)

	// --- Change Feed ---
	hub := feed.NewHub()
	defer hub.Close()
	var publisher feed.Publisher = hub
	if cfg.DB.Driver == "postgres" {
		// Database triggers report every change; the services stay quiet.
		source, err := feed.NewPostgresSource(cfg.DB.DSN, hub, log)
		if err != nil {
			log.Fatal(err, "Failed to listen for database changes")
		}
		go func() {
			if err := source.Run(ctx); err != nil {
				log.Error(err, "Change listener stopped")
			}
		}()
		publisher = feed.Discard
	}

	// --- Dependency Injection and Handler Initialization ---
	postRepository := data.NewSQLPostRepository(db)
	commentRepository := data.NewSQLCommentRepository(db)
	categoryRepository := data.NewCategoryRepository(db)

	categoryService := service.NewCategoryService(categoryRepository, taxonomyCache, log)
	thumbnails := service.NewThumbnails(store, cfg.Storage.ThumbnailBucket, cfg.Storage.CacheControl, cfg.Blog.ThumbnailPresets, cfg.Blog.DefaultThumbnail)
	postService := service.NewPostService(postRepository, categoryService, thumbnails, policy, service.NewRenderer(), publisher, log)
	blogList := service.NewBlogList(postRepository, hub, log, cfg.Blog.LifestyleCategory, cfg.Blog.ListMode, cfg.Blog.PageSize)
	commentService := service.NewCommentService(commentRepository, policy, publisher, hub)
	fileService := service.NewFileService(store, cfg.Storage.FilesBucket, cfg.Storage.CacheControl)

	handlers := handler.Handlers{
		Blog:     handler.NewBlogHandler(postService, blogList, commentService, categoryService, viewService, sessionManager, log),
		Files:    handler.NewFileHandler(fileService, viewService, sessionManager, log),
		API:      handler.NewAPIHandler(postService, blogList, commentService, categoryService, log),
		Auth:     handler.NewAuthHandler(authenticator, sessionManager, enforcer, log),
		SEO:      handler.NewSeoHandler(postService, cfg.Server.BaseURL, "Portfolio Blog"),
		Realtime: feed.NewHandler(hub, cfg.Realtime.AllowedOrigins, log),
		Static:   web.StaticFS,
		Storage:  storageHandler,
	}
	authzMiddleware := middleware.Authorizer(enforcer, sessionManager, policy)
	errorMiddleware := middleware.Error(log, viewService)

	// --- Router Setup ---
	router := handler.NewRouter(handlers, authzMiddleware, errorMiddleware, sessionManager, cfg.Realtime.AllowedOrigins)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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

	<-ctx.Done()
	log.Warn("Shutting down server...")
	// Open streams end with their requests; close the hub first so they return.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// newSessionManager keeps sessions in the application database where scs has
// a store for the driver, and in memory otherwise.
func newSessionManager(cfg *config.Config, db *sqlx.DB) *scs.SessionManager {
	sessionManager := scs.New()
	switch cfg.DB.Driver {
	case "mysql":
		sessionManager.Store = mysqlstore.New(db.DB)
	case "sqlite3":
		sessionManager.Store = sqlite3store.New(db.DB)
	default:
		sessionManager.Store = memstore.New()
	}
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled
	return sessionManager
}

// newObjectStore connects to the configured S3 compatible store. Without an
// endpoint the objects are kept in memory and served by the application.
func newObjectStore(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.ObjectStore, http.Handler) {
	if cfg.Storage.Endpoint == "" {
		log.Warn("No storage endpoint configured; uploads are kept in memory.")
		mem := storage.NewMemory("/storage")
		return mem, mem
	}

	store, err := storage.NewMinio(cfg.Storage)
	if err != nil {
		log.Fatal(err, "Failed to initialize object storage")
	}
	for _, bucket := range []string{cfg.Storage.ThumbnailBucket, cfg.Storage.FilesBucket} {
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			log.Fatal(err, fmt.Sprintf("Failed to prepare bucket %s", bucket))
		}
	}
	return store, nil
}
