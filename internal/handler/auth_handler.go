package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/logger"
	"go-portfolio-blog/internal/middleware"
	"go-portfolio-blog/internal/session"
	"io"
	"net/http"
	"time"

	"github.com/casbin/casbin/v2"
	"golang.org/x/oauth2"
)

const stateCookie = "oauth_state"

// Authenticator is the OIDC flow used by the sign-in routes. It is satisfied
// by *auth.Authenticator.
type Authenticator interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	VerifyIdentity(ctx context.Context, rawIDToken string) (*auth.Identity, error)
}

var _ Authenticator = (*auth.Authenticator)(nil)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     Authenticator
	sessions session.Manager
	enforcer casbin.IEnforcer
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil authenticator disables sign-in.
func NewAuthHandler(a Authenticator, sm session.Manager, e casbin.IEnforcer, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, sessions: sm, enforcer: e, log: log}
}

var errSignInDisabled = errors.New("no identity provider configured")

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return &middleware.AppError{Error: errSignInDisabled, Message: "Sign-in is not available", Code: http.StatusServiceUnavailable}
	}
	state, err := randString(16)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
	return nil
}

// handleCallback is the redirect URL for the OIDC provider.
// It handles the code exchange and token verification, then signs the user in.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return &middleware.AppError{Error: errSignInDisabled, Message: "Sign-in is not available", Code: http.StatusServiceUnavailable}
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Sign-in state not found", Code: http.StatusBadRequest}
	}
	if r.URL.Query().Get("state") != cookie.Value {
		return &middleware.AppError{Error: errors.New("state mismatch"), Message: "Sign-in state did not match", Code: http.StatusBadRequest}
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	token, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to exchange token", Code: http.StatusUnauthorized}
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return &middleware.AppError{Error: errors.New("missing id_token"), Message: "No ID token in the provider response", Code: http.StatusUnauthorized}
	}
	identity, err := h.auth.VerifyIdentity(r.Context(), rawIDToken)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to verify ID token", Code: http.StatusUnauthorized}
	}
	if identity.Email == "" {
		return &middleware.AppError{Error: errors.New("id token has no verified email"), Message: "Your account has no verified email address", Code: http.StatusForbidden}
	}

	if err := session.PutIdentity(r.Context(), h.sessions, identity); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	if err := auth.GrantUser(h.enforcer, identity.Email); err != nil {
		h.log.Error(err, fmt.Sprintf("Failed to grant the user role to %s", identity.Email))
	}
	h.log.With(map[string]interface{}{"subject": identity.Subject}).Info("User signed in")
	h.sessions.Put(r.Context(), session.KeyFlash, "Signed in as "+identity.DisplayName+".")

	http.Redirect(w, r, "/blog", http.StatusFound)
	return nil
}

// handleLogout ends the session.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := session.SignOut(r.Context(), h.sessions); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to sign out", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/blog", http.StatusFound)
	return nil
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
