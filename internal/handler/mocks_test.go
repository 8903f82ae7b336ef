//go:build unit || integration

package handler

import (
	"context"
	"go-portfolio-blog/internal/session"
	"net/http"
)

// mockSessionManager is a mock implementation of the session.Manager interface.
type mockSessionManager struct {
	values        map[string]string
	destroyCalled bool
	renewed       bool
}

// Ensure mockSessionManager implements the session.Manager interface.
var _ session.Manager = (*mockSessionManager)(nil)

func newMockSession() *mockSessionManager {
	return &mockSessionManager{values: map[string]string{}}
}

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }
func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	m.values[key], _ = val.(string)
}
func (m *mockSessionManager) GetString(ctx context.Context, key string) string { return m.values[key] }
func (m *mockSessionManager) PopString(ctx context.Context, key string) string {
	v := m.values[key]
	delete(m.values, key)
	return v
}
func (m *mockSessionManager) Remove(ctx context.Context, key string) { delete(m.values, key) }
func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyCalled = true
	m.values = map[string]string{}
	return nil
}
func (m *mockSessionManager) RenewToken(ctx context.Context) error {
	m.renewed = true
	return nil
}

// signIn stores a signed-in identity the way the auth callback does.
func (m *mockSessionManager) signIn(email string) {
	m.values = map[string]string{
		session.KeySubject: "sub-" + email,
		session.KeyEmail:   email,
		session.KeyName:    email,
	}
}
