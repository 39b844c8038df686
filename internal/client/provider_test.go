package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/client"
	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/pkg/logger"
)

// staticTokens é um TokenSource fixo para os testes.
type staticTokens struct{ token string }

func (s staticTokens) Token(ctx context.Context) (string, error) { return s.token, nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*client.ProviderClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := client.NewProviderClient(srv.URL, 0, staticTokens{token: "tok-123"}, logger.NewLogger("error"))
	return c, srv
}

// TestList_DecodesEnvelope verifica o parse do envelope {products, total} e
// os parâmetros skip/limit.
func TestList_DecodesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "16", r.URL.Query().Get("skip"))
		assert.Equal(t, "8", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(domain.ProductPage{
			Products: []domain.Product{{ID: "p1", Title: "Lamp"}},
			Total:    20,
		})
	})

	page, err := c.List(context.Background(), 16, 8)

	assert.NoError(t, err)
	assert.Equal(t, 20, page.Total)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, "Lamp", page.Products[0].Title)
}

// TestSearch_EncodesQuery verifica o URL-encoding do termo de busca.
func TestSearch_EncodesQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "abajur azul", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(domain.ProductPage{})
	})

	_, err := c.Search(context.Background(), "abajur azul", 0, 8)
	assert.NoError(t, err)
}

// TestCreate_SendsDraft verifica método, rota e corpo da criação.
func TestCreate_SendsDraft(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/add", r.URL.Path)

		var draft domain.ProductDraft
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "Abajur", draft.Title)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Product{ID: "novo-id", Title: draft.Title})
	})

	created, err := c.Create(context.Background(), domain.ProductDraft{
		Title: "Abajur", Brand: "Lumina", Category: "iluminacao", Price: 99.9, Stock: 3,
	})

	assert.NoError(t, err)
	assert.Equal(t, "novo-id", created.ID)
}

// TestDelete_UsesMethodAndPath verifica a rota de exclusão.
func TestDelete_UsesMethodAndPath(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/products/p42", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, c.Delete(context.Background(), "p42"))
}

// TestMapError_NotFound traduz 404 para NotFoundError com a mensagem do envelope.
func TestMapError_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(domain.ErrorResponse{
			Code: 404, Category: "NOT_FOUND", Message: "Produto não existe.",
		})
	})

	_, err := c.FindByID(context.Background(), "sumiu")

	assert.Error(t, err)
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "Produto não existe.")
}

// TestMapError_ValidationFields traduz 400 preservando os erros por campo.
func TestMapError_ValidationFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(domain.ErrorResponse{
			Code: 400, Category: "VALIDATION_ERROR", Message: "Rascunho inválido.",
			Fields: map[string]string{"price": "O preço deve ser maior que zero."},
		})
	})

	_, err := c.Create(context.Background(), domain.ProductDraft{})

	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "O preço deve ser maior que zero.", validation.Fields["price"])
}

// TestMapError_BodyNotJSON cai no fallback de status quando o corpo não é JSON.
func TestMapError_BodyNotJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	_, err := c.List(context.Background(), 0, 8)

	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
	assert.Contains(t, err.Error(), "status 500")
}
