package middleware

import (
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/session"
	"net/http"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It loads the signed-in identity from the session, stores it in the request
// context and checks the route against the casbin policies.
func Authorizer(e casbin.IEnforcer, sm session.Manager, policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := session.CurrentIdentity(r.Context(), sm)

			subject := auth.RoleAnonymous
			if identity != nil && identity.Email != "" {
				subject = identity.Email
			}

			userInfo := &UserInfo{
				Subject:  subject,
				Identity: identity,
				IsAdmin:  policy.IsAdmin(identity),
			}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				if identity == nil && r.Method == http.MethodGet {
					http.Redirect(w, r, "/auth/login", http.StatusFound)
					return
				}
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
