package catalogservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/pkg/logger"
)

// Limites de paginação do provider: o back-office usa páginas de 8, mas o
// dashboard amostra até 100 registros em uma única chamada.
const (
	defaultLimit = 10
	maxLimit     = 100
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB + Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa a interface domain.CatalogService.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// ListProducts retorna uma página da coleção inteira.
func (s *Service) ListProducts(ctx context.Context, skip, limit int) (domain.ProductPage, error) {
	filter := sanitizeFilter(domain.ProductFilter{Skip: skip, Limit: limit})

	page, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return domain.ProductPage{}, err
	}
	return page, nil
}

// SearchProducts retorna uma página filtrada pelo termo de busca.
// Termo vazio degenera para a listagem simples.
func (s *Service) SearchProducts(ctx context.Context, query string, skip, limit int) (domain.ProductPage, error) {
	filter := sanitizeFilter(domain.ProductFilter{Skip: skip, Limit: limit, Query: query})

	page, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return domain.ProductPage{}, err
	}
	return page, nil
}

// GetProductByID retorna um único produto.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	return s.repo.FindByID(ctx, id)
}

// CreateProduct valida o rascunho, atribui ID, timestamps e o rating inicial
// (campo de servidor) e persiste o novo produto.
func (s *Service) CreateProduct(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	if fields := draft.Validate(); len(fields) > 0 {
		return domain.Product{}, apperror.NewFieldValidationError("Rascunho de produto inválido.", fields)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Brand:       draft.Brand,
		Category:    draft.Category,
		Price:       draft.Price,
		Stock:       draft.Stock,
		Rating:      0, // atribuído pelo servidor; evolui com avaliações
		Description: draft.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto criado no catálogo.", map[string]interface{}{"id": created.ID, "title": created.Title})
	return created, nil
}

// UpdateProduct valida o rascunho e persiste o conjunto completo de campos
// editáveis. ID e Rating nunca são alterados pelo rascunho.
func (s *Service) UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if fields := draft.Validate(); len(fields) > 0 {
		return domain.Product{}, apperror.NewFieldValidationError("Rascunho de produto inválido.", fields)
	}

	product := domain.Product{
		ID:          id,
		Title:       draft.Title,
		Brand:       draft.Brand,
		Category:    draft.Category,
		Price:       draft.Price,
		Stock:       draft.Stock,
		Description: draft.Description,
		UpdatedAt:   time.Now().UTC(),
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado no catálogo.", map[string]interface{}{"id": id})
	return updated, nil
}

// DeleteProduct remove o produto do catálogo.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("O ID do produto é obrigatório.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Produto excluído do catálogo.", map[string]interface{}{"id": id})
	return nil
}

// sanitizeFilter aplica os salvaguardas de paginação: skip nunca negativo,
// limit com padrão e teto.
func sanitizeFilter(filter domain.ProductFilter) domain.ProductFilter {
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	return filter
}
