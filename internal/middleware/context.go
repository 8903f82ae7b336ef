package middleware

import (
	"context"
	"go-portfolio-blog/internal/auth"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// UserInfo represents the essential user information stored in the session and request context.
type UserInfo struct {
	// Subject is the casbin subject: the user's email, or "anonymous".
	Subject  string
	Identity *auth.Identity
	IsAdmin  bool
}

// SignedIn reports whether the request carries a signed-in identity.
func (u *UserInfo) SignedIn() bool {
	return u.Identity != nil
}

// GetUserInfo retrieves the user information from the request context.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	// Return an anonymous user if no user info is found in the context.
	return &UserInfo{Subject: auth.RoleAnonymous}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}
