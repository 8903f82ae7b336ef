package handler

import (
	"go-portfolio-blog/internal/logger"
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/internal/service"
	"go-portfolio-blog/internal/session"
	"net/http"
)

// FileHandler serves the file hoster pages.
type FileHandler struct {
	files    *service.FileService
	view     middleware.Renderer
	sessions session.Manager
	log      logger.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(files *service.FileService, v middleware.Renderer, sm session.Manager, log logger.Logger) *FileHandler {
	return &FileHandler{files: files, view: v, sessions: sm, log: log}
}

func (h *FileHandler) renderFiles(w http.ResponseWriter, r *http.Request, code int, message string) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	files, err := h.files.List(r.Context(), userInfo.Identity)
	if err != nil {
		h.log.Error(err, "Failed to list files")
		if message == "" {
			message = "Failed to load files."
		}
	}
	data := map[string]interface{}{
		"Files": files,
		"Error": message,
	}
	return render(w, r, h.view, h.sessions, code, "files.html", data)
}

// listHandler shows the signed-in user's files.
func (h *FileHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderFiles(w, r, http.StatusOK, "")
}

// uploadHandler stores a file. An existing file of the same name is kept.
func (h *FileHandler) uploadHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	if err := parseForm(r); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}
	upload, file, err := formUpload(r, "file")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid file upload", Code: http.StatusBadRequest}
	}
	if upload == nil {
		return h.renderFiles(w, r, http.StatusUnprocessableEntity, "Choose a file to upload.")
	}
	defer file.Close()

	url, err := h.files.Upload(r.Context(), userInfo.Identity, upload)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error(err, "Failed to upload file")
		}
		return h.renderFiles(w, r, statusFor(err), service.Message(err))
	}

	h.log.Debug("File uploaded: " + url)
	h.sessions.Put(r.Context(), session.KeyFlash, "File uploaded.")
	return redirect(w, r, "/files")
}

// deleteHandler removes one of the user's files.
func (h *FileHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	if err := h.files.Delete(r.Context(), userInfo.Identity, r.FormValue("name")); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error(err, "Failed to delete file")
		}
		return h.renderFiles(w, r, statusFor(err), service.Message(err))
	}
	h.sessions.Put(r.Context(), session.KeyFlash, "File deleted.")
	return redirect(w, r, "/files")
}
