package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"backoffice/internal/client"
	apperror "backoffice/internal/errors"
	"backoffice/internal/pkg/logger"
	"backoffice/internal/pkg/token"
)

// Manager guarda a sessão do operador: o par de tokens emitido pelo provider
// e a expiração do token de acesso. A renovação acontece de forma
// transparente dentro da janela de antecedência configurada.
type Manager struct {
	endpoints client.Endpoints
	http      *http.Client
	logger    logger.Logger

	// antecedência com que o refresh é disparado antes da expiração
	refreshSkew time.Duration

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresOn    time.Time
}

// credentials é o payload de login enviado ao provider.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest é o payload de renovação: o par corrente.
type refreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewManager cria o gerenciador de sessão apontando para o provider.
func NewManager(baseURL string, timeout, refreshSkew time.Duration, log logger.Logger) *Manager {
	return &Manager{
		endpoints:   client.Endpoints{Base: baseURL},
		http:        &http.Client{Timeout: timeout},
		logger:      log,
		refreshSkew: refreshSkew,
	}
}

// Login autentica o operador e armazena o par de tokens retornado.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	pair, err := m.post(ctx, m.endpoints.AuthLogin(), credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	m.store(pair)
	m.logger.Info("Sessão iniciada.", map[string]interface{}{"email": email})
	return nil
}

// Refresh troca o par corrente por um novo junto ao provider.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	req := refreshRequest{AccessToken: m.accessToken, RefreshToken: m.refreshToken}
	m.mu.Unlock()

	if req.RefreshToken == "" {
		return apperror.NewUnauthorizedError("Nenhuma sessão ativa para renovar.")
	}

	pair, err := m.post(ctx, m.endpoints.AuthRefresh(), req)
	if err != nil {
		return err
	}

	m.store(pair)
	m.logger.Debug("Sessão renovada.", nil)
	return nil
}

// Token implementa client.TokenSource: retorna o token de acesso corrente,
// renovando-o de forma transparente quando estiver dentro da janela de
// expiração. Sem sessão ativa, retorna vazio (acesso anônimo).
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	tok := m.accessToken
	needsRefresh := tok != "" && time.Until(m.expiresOn) <= m.refreshSkew
	m.mu.Unlock()

	if !needsRefresh {
		return tok, nil
	}

	if err := m.Refresh(ctx); err != nil {
		// Falha de refresh não derruba a sessão imediatamente: o token
		// corrente ainda pode ser aceito pelo provider.
		m.logger.Warn("Falha ao renovar a sessão; usando o token corrente.", map[string]interface{}{
			"error": err.Error(),
		})
		return tok, nil
	}

	m.mu.Lock()
	tok = m.accessToken
	m.mu.Unlock()
	return tok, nil
}

// Logged informa se há uma sessão ativa.
func (m *Manager) Logged() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken != ""
}

// Logout descarta a sessão corrente.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.accessToken = ""
	m.refreshToken = ""
	m.expiresOn = time.Time{}
	m.mu.Unlock()
	m.logger.Info("Sessão encerrada.", nil)
}

// store grava o par de tokens. Se o provider não informar expiresOn, a
// expiração é extraída das claims do próprio JWT.
func (m *Manager) store(pair token.Pair) {
	expiresOn := pair.ExpiresOn
	if expiresOn.IsZero() {
		if exp, err := token.ExtractExpiry(pair.AccessToken); err == nil {
			expiresOn = exp
		}
	}

	m.mu.Lock()
	m.accessToken = pair.AccessToken
	m.refreshToken = pair.RefreshToken
	m.expiresOn = expiresOn
	m.mu.Unlock()
}

// post executa uma chamada JSON de autenticação e decodifica o par de tokens.
func (m *Manager) post(ctx context.Context, rawURL string, body interface{}) (token.Pair, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return token.Pair{}, apperror.NewInternalError("Falha ao serializar payload de autenticação.", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return token.Pair{}, apperror.NewInternalError("Falha ao montar requisição de autenticação.", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return token.Pair{}, apperror.NewTransportError("Falha na chamada de autenticação", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		m.logger.Debug("Autenticação rejeitada pelo provider.", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(raw),
		})
		return token.Pair{}, apperror.NewUnauthorizedError("Credenciais rejeitadas pelo provider.")
	}

	var pair token.Pair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return token.Pair{}, apperror.NewInternalError("Falha ao decodificar par de tokens.", err)
	}
	return pair, nil
}
