package listview

import (
	"context"
	"errors"
	"sync"
	"time"

	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/notify"
	"backoffice/internal/pkg/debounce"
	"backoffice/internal/pkg/logger"
)

// Controller é o dono do estado de visualização da tabela de produtos:
// acesso paginado, pesquisável e mutável à coleção remota. Ele coordena o
// debounce da busca, a navegação de páginas e as mutações
// (criar/editar/excluir) com atualização otimista do estado local.
//
// Todas as mutações de estado são serializadas atrás de um único mutex, para
// que chamadores em goroutines distintas sempre observem um estado coerente.
type Controller struct {
	provider domain.ProductProvider
	notifier notify.Notifier
	messages *notify.Catalog
	logger   logger.Logger

	pageSize int
	search   *debounce.Debouncer
	baseCtx  context.Context // contexto usado pelos fetches disparados pelo debounce

	mu sync.Mutex

	// Estado de visualização da página
	records    []domain.Product
	page       int
	total      int
	term       string
	selected   *domain.Product
	fieldErrs  map[string]string
	addOpen    bool
	editOpen   bool
	deleteOpen bool

	// Busy flags independentes, um por operação em voo
	listLoading   bool
	addLoading    bool
	editLoading   bool
	deleteLoading bool

	// Rejeição de respostas obsoletas: cada fetch recebe um número de
	// sequência monotônico; conclusões cujo número não é o último emitido
	// são descartadas em silêncio. Mutações também avançam a sequência para
	// que um fetch antigo em voo não ressuscite um registro excluído.
	fetchSeq uint64
}

// State é um snapshot imutável do estado de visualização, para exibição.
type State struct {
	Records    []domain.Product
	Page       int
	PageSize   int
	Total      int
	SearchTerm string

	ListLoading   bool
	AddLoading    bool
	EditLoading   bool
	DeleteLoading bool

	Selected         *domain.Product
	AddDialogOpen    bool
	EditDialogOpen   bool
	DeleteDialogOpen bool
	ValidationErrors map[string]string
}

// NewController cria o controller com página inicial 1, termo vazio e total
// zero. O pageSize é fixado na construção.
func NewController(
	ctx context.Context,
	provider domain.ProductProvider,
	notifier notify.Notifier,
	messages *notify.Catalog,
	log logger.Logger,
	pageSize int,
	debounceInterval time.Duration,
) *Controller {
	c := &Controller{
		provider: provider,
		notifier: notifier,
		messages: messages,
		logger:   log,
		pageSize: pageSize,
		baseCtx:  ctx,
		page:     1,
	}

	// O callback do debounce reseta a página para 1 e dispara o fetch com o
	// termo final da rajada.
	c.search = debounce.New(debounceInterval, func(term string) {
		c.FetchPage(c.baseCtx, 1, term)
	})

	return c
}

// Close cancela qualquer busca pendente no debounce.
func (c *Controller) Close() {
	c.search.Stop()
}

// SetSearchTerm registra o termo imediatamente (para exibição) e adia o
// fetch correspondente pelo intervalo de debounce. Chamadas em rajada
// cancelam o timer pendente, garantindo no máximo um fetch por rajada,
// apenas com o termo final.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.term = term
	c.mu.Unlock()

	c.search.Schedule(term)
}

// FetchPage emite uma requisição de listagem para o provider com
// skip=(page-1)*pageSize e limit=pageSize, opcionalmente filtrada pelo termo.
// No sucesso substitui a sequência exibida, o total e a página corrente; na
// falha o estado anterior fica intocado e uma notificação é emitida.
func (c *Controller) FetchPage(ctx context.Context, page int, term string) {
	if page < 1 {
		return
	}

	seq := c.beginFetch()
	skip := (page - 1) * c.pageSize

	c.logger.Debug("Buscando produtos.", map[string]interface{}{
		"page": page, "skip": skip, "limit": c.pageSize, "term": term,
	})

	var result domain.ProductPage
	var err error
	if term != "" {
		result, err = c.provider.Search(ctx, term, skip, c.pageSize)
	} else {
		result, err = c.provider.List(ctx, skip, c.pageSize)
	}

	c.completeFetch(seq, page, term, result, err)
}

// GoToPage é um no-op quando a página pedida é a corrente ou cai fora de
// [1, totalPages]; caso contrário busca a página com o termo corrente.
func (c *Controller) GoToPage(ctx context.Context, page int) {
	c.mu.Lock()
	current := c.page
	term := c.term
	totalPages := c.totalPagesLocked()
	c.mu.Unlock()

	if page == current || page < 1 || page > totalPages {
		return
	}

	c.FetchPage(ctx, page, term)
}

// OpenAddDialog abre o diálogo de criação com o formulário limpo.
func (c *Controller) OpenAddDialog() {
	c.mu.Lock()
	c.addOpen = true
	c.fieldErrs = nil
	c.mu.Unlock()
}

// CloseAddDialog fecha o diálogo de criação sem criar nada.
func (c *Controller) CloseAddDialog() {
	c.mu.Lock()
	c.addOpen = false
	c.fieldErrs = nil
	c.mu.Unlock()
}

// CreateRecord valida o rascunho no lado cliente e, somente se válido, emite
// a requisição de criação. No sucesso fecha o diálogo, notifica e rebusca a
// página corrente (para refletir ordenação e ID atribuídos pelo provider).
// Na falha o diálogo permanece aberto e editável para nova tentativa.
func (c *Controller) CreateRecord(ctx context.Context, draft domain.ProductDraft) {
	// Validação primeiro: requisição nunca é emitida para rascunho inválido.
	if fields := draft.Validate(); len(fields) > 0 {
		c.mu.Lock()
		c.fieldErrs = fields
		c.addOpen = true
		c.mu.Unlock()

		c.logger.Debug("Rascunho de criação rejeitado na validação.", map[string]interface{}{
			"fields": fields,
		})
		return
	}

	c.mu.Lock()
	c.addLoading = true
	c.mu.Unlock()

	created, err := c.provider.Create(ctx, draft)

	c.mu.Lock()
	c.addLoading = false
	if err != nil {
		// Diálogo permanece aberto para nova tentativa; erros por campo
		// vindos do provider são exibidos inline.
		var validation *apperror.ValidationError
		if asValidation(err, &validation) && validation.Fields != nil {
			c.fieldErrs = validation.Fields
		}
		c.mu.Unlock()

		c.logger.Error("Falha ao criar produto.", err)
		c.notifier.Failure(c.messages.T("add_error"))
		return
	}
	c.addOpen = false
	c.fieldErrs = nil
	page := c.page
	term := c.term
	c.mu.Unlock()

	c.logger.Info("Produto criado.", map[string]interface{}{"id": created.ID})
	c.notifier.Success(c.messages.T("add_success"))

	c.FetchPage(ctx, page, term)
}

// SelectForEdit seleciona um registro da página corrente e abre o diálogo de
// edição. Há no máximo um registro selecionado por vez.
func (c *Controller) SelectForEdit(id string) bool {
	return c.selectRecord(id, func() { c.editOpen = true })
}

// SelectForDelete seleciona um registro da página corrente e abre o diálogo
// de confirmação de exclusão.
func (c *Controller) SelectForDelete(id string) bool {
	return c.selectRecord(id, func() { c.deleteOpen = true })
}

// ClearSelection desfaz a seleção e fecha os diálogos de edição/exclusão.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.selected = nil
	c.editOpen = false
	c.deleteOpen = false
	c.fieldErrs = nil
	c.mu.Unlock()
}

// UpdateRecord exige um registro previamente selecionado. No sucesso fecha o
// diálogo, limpa a seleção, notifica e rebusca a página corrente; na falha o
// diálogo permanece aberto.
func (c *Controller) UpdateRecord(ctx context.Context, id string, draft domain.ProductDraft) {
	c.mu.Lock()
	if c.selected == nil || c.selected.ID != id {
		c.mu.Unlock()
		c.logger.Warn("Atualização ignorada: registro não selecionado.", map[string]interface{}{"id": id})
		return
	}
	c.mu.Unlock()

	if fields := draft.Validate(); len(fields) > 0 {
		c.mu.Lock()
		c.fieldErrs = fields
		c.editOpen = true
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.editLoading = true
	c.mu.Unlock()

	_, err := c.provider.Update(ctx, id, draft)

	c.mu.Lock()
	c.editLoading = false
	if err != nil {
		var validation *apperror.ValidationError
		if asValidation(err, &validation) && validation.Fields != nil {
			c.fieldErrs = validation.Fields
		}
		c.mu.Unlock()

		c.logger.Error("Falha ao atualizar produto.", err)
		c.notifier.Failure(c.messages.T("update_error"))
		return
	}
	c.editOpen = false
	c.selected = nil
	c.fieldErrs = nil
	page := c.page
	term := c.term
	c.mu.Unlock()

	c.logger.Info("Produto atualizado.", map[string]interface{}{"id": id})
	c.notifier.Success(c.messages.T("update_success"))

	c.FetchPage(ctx, page, term)
}

// DeleteRecord exige um registro previamente selecionado. No sucesso remove
// o registro da sequência exibida imediatamente (atualização otimista, sem
// rebusca) e decrementa o total. Um registro removido nunca é ressuscitado
// por um fetch iniciado antes da exclusão: a sequência de fetch é avançada
// junto com a mutação, invalidando conclusões antigas em voo. A
// reconciliação com o provider acontece no próximo fetch natural (troca de
// página ou busca).
func (c *Controller) DeleteRecord(ctx context.Context, id string) {
	c.mu.Lock()
	if c.selected == nil || c.selected.ID != id {
		c.mu.Unlock()
		c.logger.Warn("Exclusão ignorada: registro não selecionado.", map[string]interface{}{"id": id})
		return
	}
	c.deleteLoading = true
	c.mu.Unlock()

	err := c.provider.Delete(ctx, id)

	c.mu.Lock()
	c.deleteLoading = false
	if err != nil {
		c.mu.Unlock()

		c.logger.Error("Falha ao excluir produto.", err)
		c.notifier.Failure(c.messages.T("delete_error"))
		return
	}

	// Atualização otimista: remoção local imediata, total-1, sem rebusca.
	filtered := c.records[:0:0]
	for _, p := range c.records {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	c.records = filtered
	if c.total > 0 {
		c.total--
	}
	c.selected = nil
	c.deleteOpen = false

	// Invalida qualquer fetch iniciado antes da exclusão. Como a conclusão
	// desse fetch será descartada, o busy flag de listagem é liberado aqui.
	c.fetchSeq++
	c.listLoading = false
	c.mu.Unlock()

	c.logger.Info("Produto excluído.", map[string]interface{}{"id": id})
	c.notifier.Success(c.messages.T("delete_success"))
}

// Snapshot retorna uma cópia consistente do estado de visualização.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]domain.Product, len(c.records))
	copy(records, c.records)

	var selected *domain.Product
	if c.selected != nil {
		cp := *c.selected
		selected = &cp
	}

	var fieldErrs map[string]string
	if c.fieldErrs != nil {
		fieldErrs = make(map[string]string, len(c.fieldErrs))
		for k, v := range c.fieldErrs {
			fieldErrs[k] = v
		}
	}

	return State{
		Records:    records,
		Page:       c.page,
		PageSize:   c.pageSize,
		Total:      c.total,
		SearchTerm: c.term,

		ListLoading:   c.listLoading,
		AddLoading:    c.addLoading,
		EditLoading:   c.editLoading,
		DeleteLoading: c.deleteLoading,

		Selected:         selected,
		AddDialogOpen:    c.addOpen,
		EditDialogOpen:   c.editOpen,
		DeleteDialogOpen: c.deleteOpen,
		ValidationErrors: fieldErrs,
	}
}

// TotalPages retorna o número de páginas conforme o último total reportado.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPagesLocked()
}

// --- Auxiliares internos ---

// beginFetch registra a emissão de um novo fetch: liga o busy flag de
// listagem e retorna o número de sequência do fetch.
func (c *Controller) beginFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchSeq++
	c.listLoading = true
	return c.fetchSeq
}

// completeFetch aplica (ou descarta) a conclusão de um fetch. Conclusões de
// requisições superadas são descartadas em silêncio: não são erro visível,
// são uma salvaguarda de consistência.
func (c *Controller) completeFetch(seq uint64, page int, term string, result domain.ProductPage, err error) {
	c.mu.Lock()
	if seq != c.fetchSeq {
		c.mu.Unlock()
		c.logger.Debug("Resposta obsoleta descartada.", map[string]interface{}{
			"seq": seq, "latest": c.fetchSeq, "page": page, "term": term,
		})
		return
	}

	c.listLoading = false

	if err != nil {
		// Estado anterior fica intocado.
		c.mu.Unlock()

		c.logger.Error("Falha ao buscar produtos.", err)
		c.notifier.Failure(c.messages.T("fetch_products_error"))
		return
	}

	c.records = result.Products
	c.total = result.Total
	c.page = page
	c.mu.Unlock()

	c.logger.Debug("Página aplicada.", map[string]interface{}{
		"page": page, "records": len(result.Products), "total": result.Total,
	})
}

// selectRecord localiza o registro na página corrente e o marca como
// selecionado, executando o ajuste de diálogo dado.
func (c *Controller) selectRecord(id string, openDialog func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		if c.records[i].ID == id {
			cp := c.records[i]
			c.selected = &cp
			c.fieldErrs = nil
			openDialog()
			return true
		}
	}

	c.logger.Warn("Registro não está na página corrente.", map[string]interface{}{"id": id})
	return false
}

// asValidation é um atalho para errors.As com o tipo ValidationError,
// usado para extrair mensagens por campo vindas do provider.
func asValidation(err error, target **apperror.ValidationError) bool {
	return errors.As(err, target)
}

// totalPagesLocked calcula ceil(total/pageSize). Requer c.mu.
func (c *Controller) totalPagesLocked() int {
	if c.total <= 0 || c.pageSize <= 0 {
		return 0
	}
	return (c.total + c.pageSize - 1) / c.pageSize
}
