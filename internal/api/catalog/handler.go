package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/pkg/logger"
	"backoffice/internal/pkg/middleware"
)

// CatalogService define o contrato que o Handler espera da camada de Serviço.
type CatalogService interface {
	ListProducts(ctx context.Context, skip, limit int) (domain.ProductPage, error)
	SearchProducts(ctx context.Context, query string, skip, limit int) (domain.ProductPage, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, draft domain.ProductDraft) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// pageResponse é o envelope de listagem que o back-office espera:
// a fatia da página mais o total da coleção (com o mesmo filtro).
type pageResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

// Handler agrupa todos os métodos de Handler do catálogo.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		h.Logger.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// Mapeamento de Erros de Negócio para Status HTTP
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		// Erros de cliente (4xx) são logged como debug
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	// Erros de validação carregam as mensagens por campo, para que o
	// formulário do back-office marque os campos ofensores.
	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		errorResponse.Fields = validationErr.Fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// parsePagination lê skip e limit da query string, com zero como padrão.
// Valores ilegíveis degradam para zero; o serviço aplica os salvaguardas.
func parsePagination(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return skip, limit
}

// --- Handlers do Catálogo ---

// ListProductsHandler lida com a requisição GET /products.
// @Summary Lista produtos paginados
// @Description Retorna uma fatia da coleção de produtos mais o total, ordenada por criação.
// @Tags products
// @Produce json
// @Param skip query int false "Registros a pular"
// @Param limit query int false "Tamanho da página (máx 100)"
// @Success 200 {object} pageResponse "Página de produtos"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	skip, limit := parsePagination(r)

	page, err := h.Service.ListProducts(ctx, skip, limit)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, pageResponse{
		Products: page.Products,
		Total:    page.Total,
		Skip:     skip,
		Limit:    limit,
	}, nil, http.StatusOK)
}

// SearchProductsHandler lida com a requisição GET /products/search?q=...
// @Summary Busca produtos por termo
// @Description Filtra por título, marca ou categoria (case-insensitive), com a mesma paginação da listagem.
// @Tags products
// @Produce json
// @Param q query string true "Termo de busca"
// @Param skip query int false "Registros a pular"
// @Param limit query int false "Tamanho da página (máx 100)"
// @Success 200 {object} pageResponse "Página filtrada de produtos"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products/search [get]
func (h *Handler) SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	skip, limit := parsePagination(r)
	query := r.URL.Query().Get("q")

	page, err := h.Service.SearchProducts(ctx, query, skip, limit)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, pageResponse{
		Products: page.Products,
		Total:    page.Total,
		Skip:     skip,
		Limit:    limit,
	}, nil, http.StatusOK)
}

// GetProductByIDHandler lida com a requisição GET /products/{id}.
// @Summary Busca um produto pelo ID
// @Tags products
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Product "Produto encontrado"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := r.PathValue("id")
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do produto é obrigatório."), http.StatusOK)
		return
	}

	product, err := h.Service.GetProductByID(ctx, productID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, product, nil, http.StatusOK)
}

// CreateProductHandler lida com a requisição POST /products/add.
// @Summary Cria um novo produto
// @Description Valida o rascunho (título/marca/categoria com 2+ caracteres, preço positivo, estoque não-negativo) e persiste.
// @Tags products
// @Accept json
// @Produce json
// @Param draft body domain.ProductDraft true "Rascunho do produto"
// @Success 201 {object} domain.Product "Produto criado"
// @Failure 400 {object} domain.ErrorResponse "Rascunho inválido (mensagens por campo em fields)"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products/add [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		h.Logger.Info("Criação de produto solicitada por operador.", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	var draft domain.ProductDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	newProduct, err := h.Service.CreateProduct(ctx, draft)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, newProduct, nil, http.StatusCreated)
}

// UpdateProductHandler lida com a requisição PUT /products/{id}.
// @Summary Atualiza um produto existente
// @Description Substitui o conjunto completo de campos editáveis; rating e data de criação são preservados.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param draft body domain.ProductDraft true "Rascunho do produto"
// @Success 200 {object} domain.Product "Produto atualizado"
// @Failure 400 {object} domain.ErrorResponse "Rascunho inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := r.PathValue("id")
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do produto é obrigatório."), http.StatusOK)
		return
	}

	var draft domain.ProductDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	updated, err := h.Service.UpdateProduct(ctx, productID, draft)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}

// DeleteProductHandler lida com a requisição DELETE /products/{id}.
// @Summary Exclui um produto
// @Tags products
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} map[string]string "Confirmação da exclusão"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Router /products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := r.PathValue("id")
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do produto é obrigatório."), http.StatusOK)
		return
	}

	if err := h.Service.DeleteProduct(ctx, productID); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]string{"id": productID, "status": "deleted"}, nil, http.StatusOK)
}
