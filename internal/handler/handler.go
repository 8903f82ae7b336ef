package handler

import (
	"errors"
	"fmt"
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/internal/service"
	"go-portfolio-blog/internal/session"
	"go-portfolio-blog/internal/storage"
	"mime/multipart"
	"net/http"
	"strings"
)

// maxUploadSize bounds the multipart forms of the post and file routes.
const maxUploadSize = 32 << 20

// statusFor maps a service error to the status of the page that shows it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, service.ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSignInRequired):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrObjectExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrCategoryRequired),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrSubcategoryMismatch),
		errors.Is(err, service.ErrThumbnailConflict),
		errors.Is(err, service.ErrInvalidThumbnail),
		errors.Is(err, service.ErrInvalidFileName):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// appError wraps a service error for the error middleware.
func appError(err error) *middleware.AppError {
	return &middleware.AppError{Error: err, Message: service.Message(err), Code: statusFor(err)}
}

// render writes a page with the given status. The session flash, if any, is
// shown once.
func render(w http.ResponseWriter, r *http.Request, view middleware.Renderer, sm session.Manager, code int, name string, data map[string]interface{}) *middleware.AppError {
	if data == nil {
		data = map[string]interface{}{}
	}
	if sm != nil {
		data["Flash"] = sm.PopString(r.Context(), session.KeyFlash)
	}

	var buf strings.Builder
	if err := view.Render(&buf, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: fmt.Sprintf("Failed to render %s", name), Code: http.StatusInternalServerError}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(buf.String()))
	return nil
}

// formUpload returns the file posted in field, or nil when none was chosen.
// The caller closes the returned file.
func formUpload(r *http.Request, field string) (*service.Upload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if header.Size == 0 && header.Filename == "" {
		file.Close()
		return nil, nil, nil
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &service.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, file, nil
}

// parseForm reads a multipart body, falling back to a urlencoded one.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxUploadSize)
	}
	return r.ParseForm()
}

func redirect(w http.ResponseWriter, r *http.Request, url string) *middleware.AppError {
	http.Redirect(w, r, url, http.StatusSeeOther)
	return nil
}
