package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/pkg/logger"
	"backoffice/internal/pkg/token"
	"backoffice/internal/session"
)

// newAuthServer sobe um provider falso de autenticação que emite pares de
// tokens com a expiração dada e conta os refreshes.
func newAuthServer(t *testing.T, expiry time.Duration, refreshes *atomic.Int32) *httptest.Server {
	t.Helper()

	svc := token.NewService("segredo-de-teste", expiry, 24*time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "correta" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		pair, err := svc.GeneratePair("op-1", "admin")
		assert.NoError(t, err)
		json.NewEncoder(w).Encode(pair)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if _, err := svc.ValidateRefreshToken(req.RefreshToken); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		pair, err := svc.GeneratePair("op-1", "admin")
		assert.NoError(t, err)
		json.NewEncoder(w).Encode(pair)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestLogin_StoresPair faz login e verifica que o token fica disponível.
func TestLogin_StoresPair(t *testing.T) {
	var refreshes atomic.Int32
	srv := newAuthServer(t, time.Hour, &refreshes)

	m := session.NewManager(srv.URL, 5*time.Second, 30*time.Second, logger.NewLogger("error"))

	err := m.Login(context.Background(), "op@empresa.com", "correta")
	assert.NoError(t, err)
	assert.True(t, m.Logged())

	tok, err := m.Token(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Equal(t, int32(0), refreshes.Load())
}

// TestLogin_BadCredentials retorna Unauthorized e não abre sessão.
func TestLogin_BadCredentials(t *testing.T) {
	var refreshes atomic.Int32
	srv := newAuthServer(t, time.Hour, &refreshes)

	m := session.NewManager(srv.URL, 5*time.Second, 30*time.Second, logger.NewLogger("error"))

	err := m.Login(context.Background(), "op@empresa.com", "errada")
	assert.Error(t, err)
	assert.False(t, m.Logged())
}

// TestToken_RefreshesNearExpiry emite um token prestes a expirar e verifica
// que Token dispara o refresh transparente.
func TestToken_RefreshesNearExpiry(t *testing.T) {
	var refreshes atomic.Int32
	// Expira em 1s; com skew de 30s, todo Token() cai na janela de refresh.
	srv := newAuthServer(t, time.Second, &refreshes)

	m := session.NewManager(srv.URL, 5*time.Second, 30*time.Second, logger.NewLogger("error"))
	assert.NoError(t, m.Login(context.Background(), "op@empresa.com", "correta"))

	tok, err := m.Token(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.GreaterOrEqual(t, refreshes.Load(), int32(1))
}

// TestLogout_ClearsSession garante que o logout descarta os tokens.
func TestLogout_ClearsSession(t *testing.T) {
	var refreshes atomic.Int32
	srv := newAuthServer(t, time.Hour, &refreshes)

	m := session.NewManager(srv.URL, 5*time.Second, 30*time.Second, logger.NewLogger("error"))
	assert.NoError(t, m.Login(context.Background(), "op@empresa.com", "correta"))

	m.Logout()

	assert.False(t, m.Logged())
	tok, err := m.Token(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, tok)
}

// TestRefresh_WithoutSession retorna erro de sessão ausente.
func TestRefresh_WithoutSession(t *testing.T) {
	var refreshes atomic.Int32
	srv := newAuthServer(t, time.Hour, &refreshes)

	m := session.NewManager(srv.URL, 5*time.Second, 30*time.Second, logger.NewLogger("error"))

	err := m.Refresh(context.Background())
	assert.Error(t, err)
}
