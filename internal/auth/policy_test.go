//go:build unit

package auth

import "testing"

func TestEmailPolicy(t *testing.T) {
	p := EmailPolicy{AdminEmail: "admin@example.com"}

	testCases := []struct {
		name string
		id   *Identity
		want bool
	}{
		{"nil identity", nil, false},
		{"admin", &Identity{Email: "admin@example.com"}, true},
		{"other user", &Identity{Email: "someone@example.com"}, false},
		{"case differs", &Identity{Email: "Admin@example.com"}, false},
		{"empty email", &Identity{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.IsAdmin(tc.id); got != tc.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tc.want)
			}
		})
	}

	if (EmailPolicy{}).IsAdmin(&Identity{}) {
		t.Error("an unset admin email must not match an identity without email")
	}
}

func TestPolicyFunc(t *testing.T) {
	var p Policy = PolicyFunc(func(id *Identity) bool { return id != nil && id.Subject == "s1" })
	if !p.IsAdmin(&Identity{Subject: "s1"}) {
		t.Error("expected s1 to be admin")
	}
	if p.IsAdmin(nil) {
		t.Error("expected nil to be rejected")
	}
}

func TestClaims_Identity(t *testing.T) {
	id := Claims{Email: "jane@example.com", EmailVerified: true, Name: "Jane", Picture: "https://img/j.png"}.Identity("sub-1")
	if id.Subject != "sub-1" || id.Email != "jane@example.com" || id.DisplayName != "Jane" || id.AvatarURL != "https://img/j.png" {
		t.Errorf("unexpected identity %+v", id)
	}

	id = Claims{Email: "bob@example.com", EmailVerified: true, Nickname: "bobby"}.Identity("sub-2")
	if id.DisplayName != "bobby" {
		t.Errorf("expected nickname fallback, got %q", id.DisplayName)
	}

	id = Claims{Email: "carol@example.com", EmailVerified: true}.Identity("sub-3")
	if id.DisplayName != "carol" {
		t.Errorf("expected email local part fallback, got %q", id.DisplayName)
	}
}

func TestClaims_IdentityUnverifiedEmail(t *testing.T) {
	id := Claims{Email: "admin@example.com", EmailVerified: false, Name: "Mallory"}.Identity("sub-4")
	if id.Email != "" {
		t.Errorf("expected an unverified email to be dropped, got %q", id.Email)
	}
	if (EmailPolicy{AdminEmail: "admin@example.com"}).IsAdmin(id) {
		t.Error("expected an unverified copy of the admin address not to be admin")
	}
}
