package handler

import (
	"context"
	"encoding/json"
	"errors"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/feed"
	"go-portfolio-blog/internal/logger"
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// APIHandler serves the JSON API and the server sent event streams.
type APIHandler struct {
	posts      *service.PostService
	list       *service.BlogList
	comments   *service.CommentService
	categories *service.CategoryService
	log        logger.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(posts *service.PostService, list *service.BlogList, comments *service.CommentService, categories *service.CategoryService, log logger.Logger) *APIHandler {
	return &APIHandler{
		posts:      posts,
		list:       list,
		comments:   comments,
		categories: categories,
		log:        log,
	}
}

// postJSON is a post with its rendered content.
type postJSON struct {
	*data.Post
	HTML string `json:"html"`
}

// sessionJSON describes the signed-in user.
type sessionJSON struct {
	SignedIn  bool   `json:"signed_in"`
	IsAdmin   bool   `json:"is_admin"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// commentsJSON is one state of a comment thread.
type commentsJSON struct {
	Comments []*data.Comment `json:"comments"`
	Error    string          `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) *middleware.AppError {
	body, err := json.Marshal(v)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to encode response", Code: http.StatusInternalServerError}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
	return nil
}

// postsHandler returns the listing view for the q and page parameters.
func (h *APIHandler) postsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	view := h.list.Load(r.Context(), listQuery(r))
	if view.State == service.StateError {
		return &middleware.AppError{Error: errors.New(view.Error), Message: view.Error, Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, view)
}

// postHandler returns one post.
func (h *APIHandler) postHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return appError(err)
	}
	return writeJSON(w, http.StatusOK, postJSON{Post: post, HTML: string(post.HTMLContent)})
}

// commentsHandler returns the comments of a post, oldest first.
func (h *APIHandler) commentsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	comments, err := h.comments.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load comments", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, commentsJSON{Comments: comments})
}

// categoriesHandler returns the category tree.
func (h *APIHandler) categoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	tree, err := h.categories.Tree(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, tree)
}

// subcategoriesHandler returns the children of one category.
func (h *APIHandler) subcategoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	subs, err := h.categories.Subcategories(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load subcategories", Code: http.StatusInternalServerError}
	}
	return writeJSON(w, http.StatusOK, subs)
}

// sessionHandler reports who is signed in.
func (h *APIHandler) sessionHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	out := sessionJSON{SignedIn: userInfo.SignedIn(), IsAdmin: userInfo.IsAdmin}
	if id := userInfo.Identity; id != nil {
		out.Email = id.Email
		out.Name = id.DisplayName
		out.AvatarURL = id.AvatarURL
	}
	return writeJSON(w, http.StatusOK, out)
}

// postsStreamHandler streams a fresh listing view whenever a post changes.
func (h *APIHandler) postsStreamHandler(w http.ResponseWriter, r *http.Request) {
	q := listQuery(r)
	err := feed.ServeEvents(w, r, func(send func(any) error) error {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		var sendErr error
		h.list.Watch(ctx, q, func(view *service.ListView) {
			if sendErr != nil {
				return
			}
			if sendErr = send(view); sendErr != nil {
				cancel()
			}
		})
		return sendErr
	})
	if err != nil {
		h.log.Debug("posts stream closed: " + err.Error())
	}
}

// commentsStreamHandler streams the full comment list of a post whenever it changes.
func (h *APIHandler) commentsStreamHandler(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	err := feed.ServeEvents(w, r, func(send func(any) error) error {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		var sendErr error
		h.comments.Watch(ctx, postID, func(comments []*data.Comment, err error) {
			if sendErr != nil {
				return
			}
			out := commentsJSON{Comments: comments}
			if err != nil {
				out.Error = "Failed to load comments."
			}
			if sendErr = send(out); sendErr != nil {
				cancel()
			}
		})
		return sendErr
	})
	if err != nil {
		h.log.Debug("comments stream closed: " + err.Error())
	}
}
