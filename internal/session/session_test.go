//go:build unit

package session

import (
	"go-portfolio-blog/internal/auth"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

var _ Manager = (*scs.SessionManager)(nil)

func TestIdentityRoundTrip(t *testing.T) {
	sm := scs.New()
	sm.Store = memstore.NewWithCleanupInterval(time.Minute)

	var got *auth.Identity
	var before *auth.Identity
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		before = CurrentIdentity(ctx, sm)
		err := PutIdentity(ctx, sm, &auth.Identity{
			Subject:     "sub-1",
			Email:       "jane@example.com",
			DisplayName: "Jane",
			AvatarURL:   "https://img/j.png",
		})
		if err != nil {
			t.Errorf("PutIdentity failed: %v", err)
		}
		got = CurrentIdentity(ctx, sm)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if before != nil {
		t.Errorf("expected no identity before sign-in, got %+v", before)
	}
	if got == nil {
		t.Fatal("expected identity after sign-in")
	}
	if got.Email != "jane@example.com" || got.DisplayName != "Jane" || got.AvatarURL != "https://img/j.png" {
		t.Errorf("unexpected identity %+v", got)
	}
}

func TestSignOut(t *testing.T) {
	sm := scs.New()
	sm.Store = memstore.NewWithCleanupInterval(time.Minute)

	var after *auth.Identity
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		_ = PutIdentity(ctx, sm, &auth.Identity{Subject: "sub-1", Email: "jane@example.com"})
		if err := SignOut(ctx, sm); err != nil {
			t.Errorf("SignOut failed: %v", err)
		}
		after = CurrentIdentity(ctx, sm)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if after != nil {
		t.Errorf("expected identity to be cleared, got %+v", after)
	}
}
