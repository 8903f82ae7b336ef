package auth

// Policy decides whether an identity may author and curate content.
type Policy interface {
	IsAdmin(id *Identity) bool
}

// EmailPolicy grants admin rights to exactly one email address.
type EmailPolicy struct {
	AdminEmail string
}

// IsAdmin reports whether id is signed in with the admin address. The comparison is exact.
func (p EmailPolicy) IsAdmin(id *Identity) bool {
	if id == nil || p.AdminEmail == "" {
		return false
	}
	return id.Email == p.AdminEmail
}

// PolicyFunc adapts an ordinary function to the Policy interface.
type PolicyFunc func(id *Identity) bool

// IsAdmin calls f(id).
func (f PolicyFunc) IsAdmin(id *Identity) bool {
	return f(id)
}
