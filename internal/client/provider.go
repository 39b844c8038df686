package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/pkg/logger"
)

// TokenSource fornece o token de acesso corrente para as requisições
// autenticadas. É implementado pela sessão do operador; a implementação nula
// (nil) significa acesso anônimo.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ProviderClient implementa domain.ProductProvider sobre HTTP/JSON.
// É a única porta de saída do back-office para o catálogo remoto.
type ProviderClient struct {
	endpoints Endpoints
	http      *http.Client
	tokens    TokenSource
	logger    logger.Logger
}

// NewProviderClient cria o cliente HTTP do provider.
// tokens pode ser nil quando o provider não exige autenticação (e.g. testes).
func NewProviderClient(baseURL string, timeout time.Duration, tokens TokenSource, log logger.Logger) *ProviderClient {
	return &ProviderClient{
		endpoints: Endpoints{Base: baseURL},
		http:      &http.Client{Timeout: timeout},
		tokens:    tokens,
		logger:    log,
	}
}

// List busca uma página da coleção inteira.
func (c *ProviderClient) List(ctx context.Context, skip, limit int) (domain.ProductPage, error) {
	var page domain.ProductPage
	err := c.do(ctx, http.MethodGet, c.endpoints.ProductsList(skip, limit), nil, &page)
	return page, err
}

// Search busca uma página filtrada pelo termo.
func (c *ProviderClient) Search(ctx context.Context, query string, skip, limit int) (domain.ProductPage, error) {
	var page domain.ProductPage
	err := c.do(ctx, http.MethodGet, c.endpoints.ProductsSearch(query, skip, limit), nil, &page)
	return page, err
}

// FindByID busca um único produto.
func (c *ProviderClient) FindByID(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, http.MethodGet, c.endpoints.ProductDetails(id), nil, &product)
	return product, err
}

// Create emite a requisição de criação e retorna o produto com o ID
// atribuído pelo provider.
func (c *ProviderClient) Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, http.MethodPost, c.endpoints.ProductAdd(), draft, &product)
	return product, err
}

// Update emite a requisição de atualização com o conjunto completo de campos
// editáveis.
func (c *ProviderClient) Update(ctx context.Context, id string, draft domain.ProductDraft) (domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, http.MethodPut, c.endpoints.ProductUpdate(id), draft, &product)
	return product, err
}

// Delete emite a requisição de exclusão. O corpo da resposta não é consumido.
func (c *ProviderClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoints.ProductDelete(id), nil, nil)
}

// do executa uma requisição JSON completa: monta o corpo, anexa o bearer
// token, traduz status não-2xx para a taxonomia de erros e decodifica a
// resposta em `out` (quando não-nil).
func (c *ProviderClient) do(ctx context.Context, method, rawURL string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternalError("Falha ao serializar payload da requisição.", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return apperror.NewInternalError("Falha ao montar requisição HTTP.", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return apperror.NewUnauthorizedError("Sessão indisponível: " + err.Error())
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.NewTransportError("Falha na chamada ao provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperror.NewInternalError("Falha ao decodificar resposta do provider.", err)
		}
	}

	return nil
}

// mapError traduz uma resposta de erro do provider para a taxonomia local.
// Tenta ler o envelope padronizado; se o corpo não for parseável, usa apenas
// o status HTTP.
func (c *ProviderClient) mapError(resp *http.Response) error {
	var envelope domain.ErrorResponse
	message := fmt.Sprintf("provider retornou status %d", resp.StatusCode)

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
			message = envelope.Message
		}
	}

	if c.logger != nil {
		c.logger.Debug("Resposta de erro do provider", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": message,
		})
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperror.NewFieldValidationError(message, envelope.Fields)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperror.NewUnauthorizedError(message)
	case http.StatusNotFound:
		return apperror.NewNotFoundError(message)
	case http.StatusConflict:
		return apperror.NewConflictError(message)
	default:
		return apperror.NewInternalError(message, nil)
	}
}
