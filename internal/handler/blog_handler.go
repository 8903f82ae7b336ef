package handler

import (
	"errors"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/logger"
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/internal/service"
	"go-portfolio-blog/internal/session"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// BlogHandler holds the dependencies for the blog pages.
type BlogHandler struct {
	posts      *service.PostService
	list       *service.BlogList
	comments   *service.CommentService
	categories *service.CategoryService
	view       middleware.Renderer
	sessions   session.Manager
	log        logger.Logger
}

// NewBlogHandler creates a new BlogHandler with the given dependencies.
func NewBlogHandler(posts *service.PostService, list *service.BlogList, comments *service.CommentService, categories *service.CategoryService, v middleware.Renderer, sm session.Manager, log logger.Logger) *BlogHandler {
	return &BlogHandler{
		posts:      posts,
		list:       list,
		comments:   comments,
		categories: categories,
		view:       v,
		sessions:   sm,
		log:        log,
	}
}

// postForm is the admin form as entered, kept so a failed submit can be shown again.
type postForm struct {
	Title         string
	Excerpt       string
	Content       string
	Tags          string
	Featured      bool
	CategoryID    string
	SubcategoryID string
	Preset        string
	Thumbnail     string
}

func readPostForm(r *http.Request) postForm {
	return postForm{
		Title:         strings.TrimSpace(r.FormValue("title")),
		Excerpt:       strings.TrimSpace(r.FormValue("excerpt")),
		Content:       r.FormValue("content"),
		Tags:          r.FormValue("tags"),
		Featured:      r.FormValue("featured") == "true",
		CategoryID:    r.FormValue("category_id"),
		SubcategoryID: r.FormValue("subcategory_id"),
		Preset:        r.FormValue("preset"),
		Thumbnail:     r.FormValue("thumbnail"),
	}
}

func (f postForm) input(upload *service.Upload) service.PostInput {
	return service.PostInput{
		Title:     f.Title,
		Excerpt:   f.Excerpt,
		Content:   f.Content,
		Tags:      service.ParseTags(f.Tags),
		Featured:  f.Featured,
		Preset:    f.Preset,
		Thumbnail: f.Thumbnail,
		Upload:    upload,
	}
}

func editForm(p *data.Post) postForm {
	return postForm{
		Title:     p.Title,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		Tags:      service.JoinTags(p.Tags),
		Featured:  p.Featured,
		Thumbnail: p.Thumbnail,
	}
}

func (h *BlogHandler) thumbChoice(selected string) map[string]interface{} {
	thumbs := h.posts.Thumbnails()
	if !thumbs.IsPreset(selected) {
		selected = ""
	}
	return map[string]interface{}{
		"Presets":  thumbs.Presets(),
		"Selected": selected,
	}
}

// indexHandler sends the site root to the listing.
func (h *BlogHandler) indexHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	http.Redirect(w, r, "/blog", http.StatusFound)
	return nil
}

func listQuery(r *http.Request) service.ListQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	refresh, _ := strconv.Atoi(q.Get("refresh"))
	return service.ListQuery{
		Query:   q.Get("q"),
		Page:    page,
		Refresh: refresh,
	}
}

// listHandler renders the public listing of posts.
func (h *BlogHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderList(w, r, http.StatusOK, postForm{}, "")
}

func (h *BlogHandler) renderList(w http.ResponseWriter, r *http.Request, code int, form postForm, formErr string) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	data := map[string]interface{}{
		"View": h.list.Load(r.Context(), listQuery(r)),
		"Live": "posts",
	}
	if userInfo.IsAdmin {
		tree, err := h.categories.Tree(r.Context())
		if err != nil {
			h.log.Error(err, "Failed to load categories")
			if formErr == "" {
				formErr = "Failed to load categories."
			}
		}
		data["Categories"] = tree
		data["Form"] = form
		data["FormError"] = formErr
		data["Thumbs"] = h.thumbChoice(form.Preset)
	}
	return render(w, r, h.view, h.sessions, code, "blog_list.html", data)
}

// createHandler handles the admin form for a new post. On failure the form
// is shown again with everything that was entered.
func (h *BlogHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	if err := parseForm(r); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}
	form := readPostForm(r)

	upload, file, err := formUpload(r, "thumbnail_file")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid thumbnail upload", Code: http.StatusBadRequest}
	}
	if file != nil {
		defer file.Close()
	}

	post, err := h.posts.Create(r.Context(), userInfo.Identity, service.CreateInput{
		PostInput:     form.input(upload),
		CategoryID:    form.CategoryID,
		SubcategoryID: form.SubcategoryID,
	})
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return appError(err)
		}
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error(err, "Failed to create post")
		}
		return h.renderList(w, r, statusFor(err), form, service.Message(err))
	}

	h.log.Info("Post created: " + post.ID)
	h.sessions.Put(r.Context(), session.KeyFlash, "Post created.")
	return redirect(w, r, "/blog")
}

// lifestyleHandler renders the posts of the lifestyle category.
func (h *BlogHandler) lifestyleHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	data := map[string]interface{}{"Live": "posts"}
	posts, err := h.list.Lifestyle(r.Context())
	if err != nil {
		h.log.Error(err, "Failed to load lifestyle posts")
		data["Error"] = "Failed to load posts."
	}
	data["Posts"] = posts
	return render(w, r, h.view, h.sessions, http.StatusOK, "lifestyle.html", data)
}

// postPage is what the detail page shows besides the post itself.
type postPage struct {
	thread        *service.Thread
	edit          *postForm
	editErr       string
	deleteErr     string
	confirmDelete bool
}

func (h *BlogHandler) newThread(r *http.Request, postID string) *service.Thread {
	thread := service.NewThread(h.comments, postID, middleware.GetUserInfo(r.Context()).Identity)
	if err := thread.Refresh(r.Context()); err != nil {
		h.log.Error(err, "Failed to load comments")
	}
	return thread
}

func (h *BlogHandler) renderPost(w http.ResponseWriter, r *http.Request, code int, post *data.Post, page postPage) *middleware.AppError {
	if page.thread == nil {
		page.thread = h.newThread(r, post.ID)
	}
	edit := editForm(post)
	if page.edit != nil {
		edit = *page.edit
	}
	data := map[string]interface{}{
		"Post":          post,
		"Thread":        page.thread.Snapshot(),
		"Edit":          edit,
		"EditError":     page.editErr,
		"DeleteError":   page.deleteErr,
		"ConfirmDelete": page.confirmDelete,
		"Thumbs":        h.thumbChoice(edit.Thumbnail),
		"Live":          "comments",
		"LivePost":      post.ID,
	}
	return render(w, r, h.view, h.sessions, code, "blog_post.html", data)
}

func (h *BlogHandler) loadPost(r *http.Request) (*data.Post, *middleware.AppError) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return nil, &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
		}
		return nil, &middleware.AppError{Error: err, Message: "Failed to load post", Code: http.StatusInternalServerError}
	}
	return post, nil
}

// viewHandler renders a single post with its comments.
func (h *BlogHandler) viewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	post, appErr := h.loadPost(r)
	if appErr != nil {
		return appErr
	}
	return h.renderPost(w, r, http.StatusOK, post, postPage{})
}

// updateHandler saves the admin edit form.
func (h *BlogHandler) updateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	post, appErr := h.loadPost(r)
	if appErr != nil {
		return appErr
	}
	if err := parseForm(r); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}
	form := readPostForm(r)

	upload, file, err := formUpload(r, "thumbnail_file")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid thumbnail upload", Code: http.StatusBadRequest}
	}
	if file != nil {
		defer file.Close()
	}

	if _, err := h.posts.Update(r.Context(), userInfo.Identity, post.ID, form.input(upload)); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrPostNotFound):
			return appError(err)
		case statusFor(err) == http.StatusInternalServerError:
			h.log.Error(err, "Failed to update post")
		}
		return h.renderPost(w, r, statusFor(err), post, postPage{edit: &form, editErr: service.Message(err)})
	}

	h.sessions.Put(r.Context(), session.KeyFlash, "Post updated.")
	return redirect(w, r, "/blog/"+post.ID)
}

// deleteHandler removes a post. A failed delete keeps the confirmation open.
func (h *BlogHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	post, appErr := h.loadPost(r)
	if appErr != nil {
		return appErr
	}

	if err := h.posts.Delete(r.Context(), userInfo.Identity, post.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrPostNotFound):
			return appError(err)
		}
		h.log.Error(err, "Failed to delete post")
		return h.renderPost(w, r, http.StatusInternalServerError, post, postPage{
			deleteErr:     "Failed to delete post.",
			confirmDelete: true,
		})
	}

	h.log.Info("Post deleted: " + post.ID)
	h.sessions.Put(r.Context(), session.KeyFlash, "Post deleted.")
	return redirect(w, r, "/blog")
}

// addCommentHandler posts a comment. A failed submit keeps the draft.
func (h *BlogHandler) addCommentHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	post, appErr := h.loadPost(r)
	if appErr != nil {
		return appErr
	}

	thread := service.NewThread(h.comments, post.ID, middleware.GetUserInfo(r.Context()).Identity)
	thread.SetDraft(r.FormValue("content"))
	if err := thread.Submit(r.Context()); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error(err, "Failed to add comment")
		}
		if refreshErr := thread.Refresh(r.Context()); refreshErr != nil {
			h.log.Error(refreshErr, "Failed to load comments")
		}
		return h.renderPost(w, r, statusFor(err), post, postPage{thread: thread})
	}
	return redirect(w, r, "/blog/"+post.ID+"#comments")
}

// deleteCommentHandler removes a comment. A failed delete keeps the comment
// with the error next to it.
func (h *BlogHandler) deleteCommentHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	commentID := chi.URLParam(r, "id")
	postID, err := h.comments.PostOf(r.Context(), commentID)
	if err != nil {
		return appError(err)
	}
	post, err := h.posts.Get(r.Context(), postID)
	if err != nil {
		return appError(err)
	}

	thread := h.newThread(r, post.ID)
	if err := thread.Delete(r.Context(), commentID); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error(err, "Failed to delete comment")
		}
		if refreshErr := thread.Refresh(r.Context()); refreshErr != nil {
			h.log.Error(refreshErr, "Failed to load comments")
		}
		return h.renderPost(w, r, statusFor(err), post, postPage{thread: thread})
	}
	return redirect(w, r, "/blog/"+post.ID+"#comments")
}
