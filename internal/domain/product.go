package domain

import (
	"context"
	"strings"
	"time"
)

// Product representa o item principal do catálogo (a Entidade).
// O ID e o Rating são atribuídos pelo provider e nunca alterados pelo
// back-office; os demais campos são editáveis pelo operador.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"` // [0,5], somente leitura no back-office
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// ProductDraft é o conjunto de campos editáveis enviado nas requisições de
// criação e atualização. Nunca carrega ID nem Rating.
type ProductDraft struct {
	Title       string  `json:"title"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description,omitempty"`
}

// Validate aplica as regras de validação do formulário ANTES de qualquer
// requisição ser emitida. Retorna um mapa campo -> mensagem; mapa vazio
// significa rascunho válido.
func (d ProductDraft) Validate() map[string]string {
	fields := make(map[string]string)

	if len(strings.TrimSpace(d.Title)) < 2 {
		fields["title"] = "O título deve ter pelo menos 2 caracteres."
	}
	if len(strings.TrimSpace(d.Brand)) < 2 {
		fields["brand"] = "A marca deve ter pelo menos 2 caracteres."
	}
	if len(strings.TrimSpace(d.Category)) < 2 {
		fields["category"] = "A categoria deve ter pelo menos 2 caracteres."
	}
	if d.Price <= 0 {
		fields["price"] = "O preço deve ser maior que zero."
	}
	if d.Stock < 0 {
		fields["stock"] = "O estoque não pode ser negativo."
	}

	return fields
}

// ProductPage é o envelope retornado pelas operações de listagem e busca:
// a fatia da página corrente mais o total de registros da coleção inteira.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// --- Interfaces de Contrato (O CORAÇÃO DA ARQUITETURA LIMPA) ---

// ProductProvider é o contrato que o back-office espera do provider remoto
// de catálogo. É implementado pelo cliente HTTP (internal/client) e, nos
// testes, por fakes controláveis.
type ProductProvider interface {
	List(ctx context.Context, skip, limit int) (ProductPage, error)
	Search(ctx context.Context, query string, skip, limit int) (ProductPage, error)
	FindByID(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, draft ProductDraft) (Product, error)
	Update(ctx context.Context, id string, draft ProductDraft) (Product, error)
	Delete(ctx context.Context, id string) error
}

// CatalogService é a interface que a camada de Serviço do provider DEVE
// implementar. Define o que o Handler (Camada API) pode pedir.
type CatalogService interface {
	ListProducts(ctx context.Context, skip, limit int) (ProductPage, error)
	SearchProducts(ctx context.Context, query string, skip, limit int) (ProductPage, error)
	GetProductByID(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, draft ProductDraft) (Product, error)
	UpdateProduct(ctx context.Context, id string, draft ProductDraft) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProductRepository é a interface que a camada de Repositório do provider
// (Data Access) DEVE implementar.
type ProductRepository interface {
	Save(ctx context.Context, product Product) (Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
	FindAll(ctx context.Context, filter ProductFilter) (ProductPage, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id string) error
}

// ProductFilter define os parâmetros de busca e paginação usados pelo provider.
// Skip/Limit seguem a semântica da API pública (offset absoluto, não página).
type ProductFilter struct {
	Skip  int
	Limit int
	Query string // busca por título, marca ou categoria; vazio = listagem
}
