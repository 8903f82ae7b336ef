package auth

import "strings"

// Identity is the signed-in user as far as the blog is concerned.
type Identity struct {
	Subject     string `json:"subject"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Claims are the ID token claims the blog reads.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Nickname      string `json:"preferred_username"`
	Picture       string `json:"picture"`
}

// Identity builds the session identity for the given token subject. An email
// the provider has not verified is left out, so it can neither match the admin
// address nor author anything.
func (c Claims) Identity(subject string) *Identity {
	name := c.Name
	if name == "" {
		name = c.Nickname
	}
	if name == "" {
		name, _, _ = strings.Cut(c.Email, "@")
	}
	email := c.Email
	if !c.EmailVerified {
		email = ""
	}
	return &Identity{
		Subject:     subject,
		Email:       email,
		DisplayName: name,
		AvatarURL:   c.Picture,
	}
}
