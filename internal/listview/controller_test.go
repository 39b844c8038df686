package listview_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/listview"
	"backoffice/internal/notify"
	"backoffice/internal/pkg/logger"
)

// --- Fakes controláveis ---

// spyNotifier acumula as notificações emitidas pelo controller.
type spyNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (s *spyNotifier) Success(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes = append(s.successes, message)
}

func (s *spyNotifier) Failure(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, message)
}

func (s *spyNotifier) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.successes), len(s.failures)
}

type listCall struct{ skip, limit int }

type searchCall struct {
	query       string
	skip, limit int
}

// fakeProvider implementa domain.ProductProvider com comportamento
// programável por função e registro de chamadas, permitindo controlar a
// ordem de conclusão dos fetches nos testes de resposta obsoleta.
type fakeProvider struct {
	mu          sync.Mutex
	listCalls   []listCall
	searchCalls []searchCall
	deleteCalls []string
	createCalls []domain.ProductDraft
	updateCalls []string

	listFn   func(skip, limit int) (domain.ProductPage, error)
	searchFn func(query string, skip, limit int) (domain.ProductPage, error)
	createFn func(draft domain.ProductDraft) (domain.Product, error)
	updateFn func(id string, draft domain.ProductDraft) (domain.Product, error)
	deleteFn func(id string) error
}

func (f *fakeProvider) List(ctx context.Context, skip, limit int) (domain.ProductPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, listCall{skip, limit})
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return domain.ProductPage{}, nil
	}
	return fn(skip, limit)
}

func (f *fakeProvider) Search(ctx context.Context, query string, skip, limit int) (domain.ProductPage, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, searchCall{query, skip, limit})
	fn := f.searchFn
	f.mu.Unlock()
	if fn == nil {
		return domain.ProductPage{}, nil
	}
	return fn(query, skip, limit)
}

func (f *fakeProvider) FindByID(ctx context.Context, id string) (domain.Product, error) {
	return domain.Product{}, apperror.NewNotFoundError("não usado nos testes")
}

func (f *fakeProvider) Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, draft)
	fn := f.createFn
	f.mu.Unlock()
	if fn == nil {
		return domain.Product{ID: "novo"}, nil
	}
	return fn(draft)
}

func (f *fakeProvider) Update(ctx context.Context, id string, draft domain.ProductDraft) (domain.Product, error) {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, id)
	fn := f.updateFn
	f.mu.Unlock()
	if fn == nil {
		return domain.Product{ID: id}, nil
	}
	return fn(id, draft)
}

func (f *fakeProvider) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, id)
	fn := f.deleteFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(id)
}

func (f *fakeProvider) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeProvider) searchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

// seedProducts gera n produtos p1..pn.
func seedProducts(n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Product{
			ID:       fmt.Sprintf("p%d", i),
			Title:    fmt.Sprintf("Produto %d", i),
			Brand:    "Marca",
			Category: "geral",
			Price:    10.0 + float64(i),
			Stock:    i,
		})
	}
	return out
}

// pagedList devolve uma listFn que pagina sobre a coleção dada.
func pagedList(all []domain.Product) func(skip, limit int) (domain.ProductPage, error) {
	return func(skip, limit int) (domain.ProductPage, error) {
		if skip > len(all) {
			skip = len(all)
		}
		end := skip + limit
		if end > len(all) {
			end = len(all)
		}
		return domain.ProductPage{Products: all[skip:end], Total: len(all)}, nil
	}
}

func newTestController(provider *fakeProvider, notifier *spyNotifier, debounceInterval time.Duration) *listview.Controller {
	return listview.NewController(
		context.Background(),
		provider,
		notifier,
		notify.NewCatalog(),
		logger.NewLogger("error"),
		8,
		debounceInterval,
	)
}

// --- Propriedade 1: coalescência do debounce ---

// TestSetSearchTerm_CoalescesBurst garante que uma rajada de termos gera
// exatamente um fetch, com o termo final e página 1.
func TestSetSearchTerm_CoalescesBurst(t *testing.T) {
	provider := &fakeProvider{searchFn: func(q string, skip, limit int) (domain.ProductPage, error) {
		return domain.ProductPage{Products: seedProducts(3), Total: 3}, nil
	}}
	notifier := &spyNotifier{}
	c := newTestController(provider, notifier, 30*time.Millisecond)
	defer c.Close()

	c.SetSearchTerm("l")
	c.SetSearchTerm("la")
	c.SetSearchTerm("lam")
	c.SetSearchTerm("lamp")

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 1, c.Snapshot().Page)
	assert.Equal(t, 1, provider.searchCallCount())
	assert.Equal(t, searchCall{"lamp", 0, 8}, provider.searchCalls[0])
	assert.Equal(t, "lamp", c.Snapshot().SearchTerm)
}

// TestSetSearchTerm_RecordsTermImmediately mostra que o termo aparece no
// estado antes do fetch disparar.
func TestSetSearchTerm_RecordsTermImmediately(t *testing.T) {
	provider := &fakeProvider{}
	c := newTestController(provider, &spyNotifier{}, time.Hour)
	defer c.Close()

	c.SetSearchTerm("abajur")

	assert.Equal(t, "abajur", c.Snapshot().SearchTerm)
	assert.Equal(t, 0, provider.searchCallCount())
}

// --- Propriedade 2: limites de página ---

// TestGoToPage_Bounds cobre os no-ops: página corrente, abaixo de 1 e além
// do teto de páginas.
func TestGoToPage_Bounds(t *testing.T) {
	provider := &fakeProvider{listFn: pagedList(seedProducts(20))}
	c := newTestController(provider, &spyNotifier{}, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")
	assert.Equal(t, 1, provider.listCallCount())

	// 20 itens / 8 por página = 3 páginas
	c.GoToPage(context.Background(), 0)
	c.GoToPage(context.Background(), -2)
	c.GoToPage(context.Background(), 4)
	c.GoToPage(context.Background(), 1) // página corrente

	assert.Equal(t, 1, provider.listCallCount(), "nenhum fetch adicional deveria ter sido emitido")

	c.GoToPage(context.Background(), 2)
	assert.Equal(t, 2, provider.listCallCount())
	assert.Equal(t, 2, c.Snapshot().Page)
}

// --- Propriedade 3: exclusão otimista ---

// TestDeleteRecord_Optimistic remove localmente sem novo fetch e decrementa
// o total em exatamente 1.
func TestDeleteRecord_Optimistic(t *testing.T) {
	provider := &fakeProvider{listFn: pagedList(seedProducts(20))}
	notifier := &spyNotifier{}
	c := newTestController(provider, notifier, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")
	callsBefore := provider.listCallCount()

	assert.True(t, c.SelectForDelete("p3"))
	c.DeleteRecord(context.Background(), "p3")

	st := c.Snapshot()
	assert.Equal(t, 19, st.Total)
	assert.Len(t, st.Records, 7)
	for _, p := range st.Records {
		assert.NotEqual(t, "p3", p.ID)
	}
	assert.Nil(t, st.Selected)
	assert.False(t, st.DeleteDialogOpen)
	assert.Equal(t, callsBefore, provider.listCallCount(), "exclusão otimista não rebusca")

	successes, failures := notifier.counts()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, failures)
}

// TestDeleteRecord_FailureKeepsState mantém a sequência exibida quando o
// provider rejeita a exclusão.
func TestDeleteRecord_FailureKeepsState(t *testing.T) {
	provider := &fakeProvider{
		listFn:   pagedList(seedProducts(20)),
		deleteFn: func(id string) error { return apperror.NewInternalError("provider caiu", nil) },
	}
	notifier := &spyNotifier{}
	c := newTestController(provider, notifier, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")
	assert.True(t, c.SelectForDelete("p3"))
	c.DeleteRecord(context.Background(), "p3")

	st := c.Snapshot()
	assert.Equal(t, 20, st.Total)
	assert.Len(t, st.Records, 8)

	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
}

// TestDeleteRecord_RequiresSelection ignora a exclusão sem seleção prévia.
func TestDeleteRecord_RequiresSelection(t *testing.T) {
	provider := &fakeProvider{listFn: pagedList(seedProducts(20))}
	c := newTestController(provider, &spyNotifier{}, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")
	c.DeleteRecord(context.Background(), "p3")

	f := provider
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Empty(t, f.deleteCalls)
}

// --- Propriedade 4: rejeição de resposta obsoleta ---

// TestStaleFetch_Discarded emite o fetch A (termo "x"), depois o fetch B
// (termo "y"); A conclui depois de B e deve ser descartado.
func TestStaleFetch_Discarded(t *testing.T) {
	releaseA := make(chan struct{})
	provider := &fakeProvider{}
	provider.searchFn = func(q string, skip, limit int) (domain.ProductPage, error) {
		if q == "x" {
			<-releaseA
			return domain.ProductPage{Products: []domain.Product{{ID: "ax", Title: "Resultado X"}}, Total: 1}, nil
		}
		return domain.ProductPage{Products: []domain.Product{{ID: "by", Title: "Resultado Y"}}, Total: 1}, nil
	}

	c := newTestController(provider, &spyNotifier{}, time.Hour)
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.FetchPage(context.Background(), 1, "x")
	}()

	// Garante que A foi emitido antes de B
	assert.Eventually(t, func() bool { return provider.searchCallCount() == 1 },
		time.Second, 5*time.Millisecond)

	c.FetchPage(context.Background(), 1, "y") // B conclui primeiro

	close(releaseA) // agora A conclui, atrasado
	wg.Wait()

	st := c.Snapshot()
	assert.Len(t, st.Records, 1)
	assert.Equal(t, "by", st.Records[0].ID, "o estado deve refletir o fetch mais novo")
	assert.False(t, st.ListLoading)
}

// TestDelete_NotResurrectedByInflightFetch inicia um fetch, exclui um
// registro enquanto o fetch está em voo e verifica que a conclusão atrasada
// não ressuscita o registro excluído.
func TestDelete_NotResurrectedByInflightFetch(t *testing.T) {
	all := seedProducts(8)
	release := make(chan struct{})

	provider := &fakeProvider{}
	provider.listFn = func(skip, limit int) (domain.ProductPage, error) {
		// A primeira chamada (carga inicial) passa direto; a segunda fica
		// presa em voo até o teste liberar.
		provider.mu.Lock()
		blocked := len(provider.listCalls) > 1
		provider.mu.Unlock()
		if blocked {
			<-release
		}
		return domain.ProductPage{Products: all, Total: 8}, nil
	}

	c := newTestController(provider, &spyNotifier{}, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")

	// Segundo fetch fica preso em voo
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.FetchPage(context.Background(), 1, "")
	}()
	assert.Eventually(t, func() bool { return provider.listCallCount() == 2 },
		time.Second, 5*time.Millisecond)

	// Exclusão conclui enquanto o fetch antigo ainda está em voo
	assert.True(t, c.SelectForDelete("p5"))
	c.DeleteRecord(context.Background(), "p5")

	close(release)
	wg.Wait()

	st := c.Snapshot()
	assert.Len(t, st.Records, 7)
	for _, p := range st.Records {
		assert.NotEqual(t, "p5", p.ID, "registro excluído não pode ser ressuscitado")
	}
	assert.Equal(t, 7, st.Total)
}

// --- Propriedade 5: portão de validação ---

// TestCreateRecord_ValidationGate: preço zero nunca vira requisição e o
// diálogo permanece aberto com a mensagem do campo.
func TestCreateRecord_ValidationGate(t *testing.T) {
	provider := &fakeProvider{}
	c := newTestController(provider, &spyNotifier{}, time.Hour)
	defer c.Close()

	c.OpenAddDialog()
	c.CreateRecord(context.Background(), domain.ProductDraft{
		Title: "Abajur", Brand: "Lumina", Category: "iluminacao",
		Price: 0, Stock: 5,
	})

	provider.mu.Lock()
	assert.Empty(t, provider.createCalls, "requisição de criação não deve ser emitida")
	provider.mu.Unlock()

	st := c.Snapshot()
	assert.True(t, st.AddDialogOpen)
	assert.Contains(t, st.ValidationErrors, "price")
}

// TestCreateRecord_SuccessRefetches fecha o diálogo, notifica e rebusca a
// página corrente.
func TestCreateRecord_SuccessRefetches(t *testing.T) {
	provider := &fakeProvider{listFn: pagedList(seedProducts(20))}
	notifier := &spyNotifier{}
	c := newTestController(provider, notifier, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 2, "")
	callsBefore := provider.listCallCount()

	c.OpenAddDialog()
	c.CreateRecord(context.Background(), domain.ProductDraft{
		Title: "Abajur", Brand: "Lumina", Category: "iluminacao",
		Price: 99.9, Stock: 5,
	})

	st := c.Snapshot()
	assert.False(t, st.AddDialogOpen)
	assert.Equal(t, callsBefore+1, provider.listCallCount(), "sucesso rebusca a página corrente")
	assert.Equal(t, 2, st.Page)

	successes, _ := notifier.counts()
	assert.Equal(t, 1, successes)
}

// TestCreateRecord_ProviderFailureKeepsDialog mantém o diálogo aberto para
// nova tentativa.
func TestCreateRecord_ProviderFailureKeepsDialog(t *testing.T) {
	provider := &fakeProvider{
		createFn: func(d domain.ProductDraft) (domain.Product, error) {
			return domain.Product{}, apperror.NewInternalError("provider caiu", nil)
		},
	}
	notifier := &spyNotifier{}
	c := newTestController(provider, notifier, time.Hour)
	defer c.Close()

	c.OpenAddDialog()
	c.CreateRecord(context.Background(), domain.ProductDraft{
		Title: "Abajur", Brand: "Lumina", Category: "iluminacao",
		Price: 99.9, Stock: 5,
	})

	st := c.Snapshot()
	assert.True(t, st.AddDialogOpen)
	assert.False(t, st.AddLoading)

	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
}

// TestUpdateRecord_SuccessClearsSelection atualiza, limpa a seleção e
// rebusca a página corrente.
func TestUpdateRecord_SuccessClearsSelection(t *testing.T) {
	provider := &fakeProvider{listFn: pagedList(seedProducts(20))}
	notifier := &spyNotifier{}
	c := newTestController(provider, notifier, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")
	callsBefore := provider.listCallCount()

	assert.True(t, c.SelectForEdit("p2"))
	c.UpdateRecord(context.Background(), "p2", domain.ProductDraft{
		Title: "Produto 2 v2", Brand: "Marca", Category: "geral",
		Price: 12.5, Stock: 2,
	})

	st := c.Snapshot()
	assert.Nil(t, st.Selected)
	assert.False(t, st.EditDialogOpen)
	assert.Equal(t, callsBefore+1, provider.listCallCount())

	successes, _ := notifier.counts()
	assert.Equal(t, 1, successes)
}

// TestUpdateRecord_RequiresSelection ignora a atualização sem seleção.
func TestUpdateRecord_RequiresSelection(t *testing.T) {
	provider := &fakeProvider{listFn: pagedList(seedProducts(20))}
	c := newTestController(provider, &spyNotifier{}, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")
	c.UpdateRecord(context.Background(), "p2", domain.ProductDraft{
		Title: "Produto 2 v2", Brand: "Marca", Category: "geral",
		Price: 12.5, Stock: 2,
	})

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Empty(t, provider.updateCalls)
}

// TestFetchPage_FailureKeepsPriorState preserva o estado anterior e notifica.
func TestFetchPage_FailureKeepsPriorState(t *testing.T) {
	failing := false
	provider := &fakeProvider{}
	provider.listFn = func(skip, limit int) (domain.ProductPage, error) {
		if failing {
			return domain.ProductPage{}, apperror.NewTransportError("rede fora", assert.AnError)
		}
		return pagedList(seedProducts(20))(skip, limit)
	}
	notifier := &spyNotifier{}
	c := newTestController(provider, notifier, time.Hour)
	defer c.Close()

	c.FetchPage(context.Background(), 1, "")
	failing = true
	c.FetchPage(context.Background(), 2, "")

	st := c.Snapshot()
	assert.Equal(t, 1, st.Page, "página anterior preservada")
	assert.Len(t, st.Records, 8)
	assert.False(t, st.ListLoading)

	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
}

// --- Propriedade 6: cenário fim a fim ---

// TestEndToEndScenario cobre o fluxo do §8.6: 20 registros, pageSize 8,
// página 3 com skip=16 e 4 registros, e busca debounced por "lamp".
func TestEndToEndScenario(t *testing.T) {
	all := seedProducts(20)
	provider := &fakeProvider{
		listFn: pagedList(all),
		searchFn: func(q string, skip, limit int) (domain.ProductPage, error) {
			return domain.ProductPage{Products: all[:2], Total: 2}, nil
		},
	}
	c := newTestController(provider, &spyNotifier{}, 30*time.Millisecond)
	defer c.Close()

	// Estado inicial
	st := c.Snapshot()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 0, st.Total)
	assert.Empty(t, st.Records)

	// Primeira página
	c.FetchPage(context.Background(), 1, "")
	st = c.Snapshot()
	assert.Len(t, st.Records, 8)
	assert.Equal(t, 20, st.Total)
	assert.Equal(t, 3, c.TotalPages())

	// Página 3: skip=16, limit=8, 4 registros restantes
	c.GoToPage(context.Background(), 3)
	st = c.Snapshot()
	assert.Equal(t, 3, st.Page)
	assert.Len(t, st.Records, 4)
	provider.mu.Lock()
	last := provider.listCalls[len(provider.listCalls)-1]
	provider.mu.Unlock()
	assert.Equal(t, listCall{16, 8}, last)

	// Busca debounced: uma única chamada, página volta a 1
	c.SetSearchTerm("lamp")
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 1, provider.searchCallCount())
	provider.mu.Lock()
	search := provider.searchCalls[0]
	provider.mu.Unlock()
	assert.Equal(t, searchCall{"lamp", 0, 8}, search)

	st = c.Snapshot()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 2, st.Total)
}
