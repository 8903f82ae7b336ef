package session

import (
	"context"
	"go-portfolio-blog/internal/auth"
	"net/http"
)

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
	RenewToken(ctx context.Context) error
}

// Session keys for the signed-in identity.
const (
	KeySubject = "user_subject"
	KeyEmail   = "user_email"
	KeyName    = "user_name"
	KeyAvatar  = "user_avatar"
	KeyFlash   = "flash"
)

// PutIdentity stores the identity in the session, renewing the token first
// so the pre-login session id cannot be reused.
func PutIdentity(ctx context.Context, sm Manager, id *auth.Identity) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeySubject, id.Subject)
	sm.Put(ctx, KeyEmail, id.Email)
	sm.Put(ctx, KeyName, id.DisplayName)
	sm.Put(ctx, KeyAvatar, id.AvatarURL)
	return nil
}

// CurrentIdentity returns the signed-in identity, or nil when signed out.
func CurrentIdentity(ctx context.Context, sm Manager) *auth.Identity {
	subject := sm.GetString(ctx, KeySubject)
	if subject == "" {
		return nil
	}
	return &auth.Identity{
		Subject:     subject,
		Email:       sm.GetString(ctx, KeyEmail),
		DisplayName: sm.GetString(ctx, KeyName),
		AvatarURL:   sm.GetString(ctx, KeyAvatar),
	}
}

// SignOut ends the session.
func SignOut(ctx context.Context, sm Manager) error {
	return sm.Destroy(ctx)
}
