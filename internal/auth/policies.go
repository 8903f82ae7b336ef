package auth

import (
	"fmt"
	"go-portfolio-blog/internal/logger"

	"github.com/casbin/casbin/v2"
)

// Casbin roles. Each role inherits everything granted to the one before it.
const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAdmin     = "admin"
)

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start. The admin email, when set, is granted the
// admin role.
func SeedDefaultPolicies(e casbin.IEnforcer, adminEmail string, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	policies := [][]string{
		// Anonymous visitors can read everything and reach the login flow.
		{RoleAnonymous, "/", "GET"},
		{RoleAnonymous, "/blog", "GET"},
		{RoleAnonymous, "/blog/*", "GET"},
		{RoleAnonymous, "/lifestyle", "GET"},
		{RoleAnonymous, "/api/*", "GET"},
		{RoleAnonymous, "/realtime", "GET"},
		{RoleAnonymous, "/auth/*", "GET"},
		{RoleAnonymous, "/robots.txt", "GET"},
		{RoleAnonymous, "/sitemap.xml", "GET"},
		{RoleAnonymous, "/rss.xml", "GET"},

		// Signed-in users can comment and host files.
		{RoleUser, "/blog/:id/comments", "POST"},
		{RoleUser, "/comments/:id/delete", "POST"},
		{RoleUser, "/files", "GET"},
		{RoleUser, "/files", "POST"},
		{RoleUser, "/files/delete", "POST"},

		// The admin authors and curates posts.
		{RoleAdmin, "/blog", "POST"},
		{RoleAdmin, "/blog/:id/update", "POST"},
		{RoleAdmin, "/blog/:id/delete", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	inherit := [][2]string{{RoleUser, RoleAnonymous}, {RoleAdmin, RoleUser}}
	for _, pair := range inherit {
		if has, _ := e.HasRoleForUser(pair[0], pair[1]); !has {
			if _, err := e.AddRoleForUser(pair[0], pair[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", pair[0], pair[1]))
			}
		}
	}

	if adminEmail != "" {
		if has, _ := e.HasRoleForUser(adminEmail, RoleAdmin); !has {
			if _, err := e.AddRoleForUser(adminEmail, RoleAdmin); err != nil {
				log.Error(err, "Failed to grant the admin role")
			}
		}
	}
	log.Info("Policy seeding complete.")
}

// GrantUser gives a signed-in email the user role if it has no role yet.
func GrantUser(e casbin.IEnforcer, email string) error {
	roles, err := e.GetRolesForUser(email)
	if err != nil {
		return err
	}
	if len(roles) > 0 {
		return nil
	}
	_, err = e.AddRoleForUser(email, RoleUser)
	return err
}
