package handler

import (
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/internal/session"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Blog     *BlogHandler
	Files    *FileHandler
	API      *APIHandler
	Auth     *AuthHandler
	SEO      *SeoHandler
	Realtime http.Handler
	// Static serves /static. Storage, when set, serves the in-memory object store under /storage.
	Static  fs.FS
	Storage http.Handler
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, authzMiddleware func(http.Handler) http.Handler, errorMiddleware func(middleware.AppHandler) http.Handler, sm session.Manager, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	if h.Static != nil {
		r.Handle("/static/*", http.FileServer(http.FS(h.Static)))
	}
	if h.Storage != nil {
		r.Handle("/storage/*", h.Storage)
	}

	apiCORS := cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	// Long-lived public streams stay outside the session middleware, which
	// buffers the response.
	r.Group(func(r chi.Router) {
		r.Use(apiCORS)
		r.Get("/api/posts/stream", h.API.postsStreamHandler)
		r.Get("/api/posts/{id}/comments/stream", h.API.commentsStreamHandler)
		if h.Realtime != nil {
			r.Handle("/realtime", h.Realtime)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SettingsMiddleware)
		r.Use(sm.LoadAndSave)
		r.Use(authzMiddleware)

		r.Get("/robots.txt", h.SEO.robotsHandler)
		r.Method(http.MethodGet, "/sitemap.xml", errorMiddleware(h.SEO.sitemapHandler))
		r.Method(http.MethodGet, "/rss.xml", errorMiddleware(h.SEO.rssHandler))

		r.Method(http.MethodGet, "/auth/login", errorMiddleware(h.Auth.handleLogin))
		r.Method(http.MethodGet, "/auth/callback", errorMiddleware(h.Auth.handleCallback))
		r.Method(http.MethodGet, "/auth/logout", errorMiddleware(h.Auth.handleLogout))

		r.Method(http.MethodGet, "/", errorMiddleware(h.Blog.indexHandler))
		r.Method(http.MethodGet, "/blog", errorMiddleware(h.Blog.listHandler))
		r.Method(http.MethodPost, "/blog", errorMiddleware(h.Blog.createHandler))
		r.Method(http.MethodGet, "/lifestyle", errorMiddleware(h.Blog.lifestyleHandler))
		r.Method(http.MethodGet, "/blog/{id}", errorMiddleware(h.Blog.viewHandler))
		r.Method(http.MethodPost, "/blog/{id}/update", errorMiddleware(h.Blog.updateHandler))
		r.Method(http.MethodPost, "/blog/{id}/delete", errorMiddleware(h.Blog.deleteHandler))
		r.Method(http.MethodPost, "/blog/{id}/comments", errorMiddleware(h.Blog.addCommentHandler))
		r.Method(http.MethodPost, "/comments/{id}/delete", errorMiddleware(h.Blog.deleteCommentHandler))

		r.Method(http.MethodGet, "/files", errorMiddleware(h.Files.listHandler))
		r.Method(http.MethodPost, "/files", errorMiddleware(h.Files.uploadHandler))
		r.Method(http.MethodPost, "/files/delete", errorMiddleware(h.Files.deleteHandler))

		r.Group(func(r chi.Router) {
			r.Use(apiCORS)
			r.Method(http.MethodGet, "/api/posts", errorMiddleware(h.API.postsHandler))
			r.Method(http.MethodGet, "/api/posts/{id}", errorMiddleware(h.API.postHandler))
			r.Method(http.MethodGet, "/api/posts/{id}/comments", errorMiddleware(h.API.commentsHandler))
			r.Method(http.MethodGet, "/api/categories", errorMiddleware(h.API.categoriesHandler))
			r.Method(http.MethodGet, "/api/categories/{id}/subcategories", errorMiddleware(h.API.subcategoriesHandler))
			r.Method(http.MethodGet, "/api/session", errorMiddleware(h.API.sessionHandler))
		})
	})

	return r
}
