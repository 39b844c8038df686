package main

import (
	"bufio"
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"backoffice/config"
	"backoffice/internal/pkg/logger"

	// Camadas do console de back-office
	"backoffice/internal/client"
	"backoffice/internal/dashboard"
	"backoffice/internal/domain"
	"backoffice/internal/listview"
	"backoffice/internal/notify"
	"backoffice/internal/session"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando o console de back-office...")

	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"provider": cfg.ProviderBaseURL})

	// Contexto raiz cancelado no encerramento (Ctrl+C ou comando quit)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 2. MONTAGEM DO CONSOLE (Injeção de Dependências)

	// A. Sessão do operador: fornece o token de acesso ao cliente HTTP,
	// renovando-o de forma transparente perto da expiração.
	sess := session.NewManager(cfg.ProviderBaseURL, cfg.HTTPTimeout, cfg.RefreshSkew, log)

	// B. Cliente do provider de catálogo (implementa domain.ProductProvider)
	provider := client.NewProviderClient(cfg.ProviderBaseURL, cfg.HTTPTimeout, sess, log)

	// C. Notificações e mensagens localizadas (pt-BR com fallback em inglês)
	messages := notify.NewCatalog()
	notifier := notify.NewLogNotifier(log)

	// D. Controller da tabela de produtos (paginação, busca, mutações)
	controller := listview.NewController(ctx, provider, notifier, messages, log, cfg.PageSize, cfg.DebounceInterval)
	defer controller.Close()

	// E. Dashboard de estatísticas do catálogo
	stats := dashboard.NewService(provider, notifier, messages, log, cfg.DashboardSampleSize)

	// 3. Loop de comandos
	fmt.Println("Console de back-office. Digite 'help' para ver os comandos.")
	controller.FetchPage(ctx, 1, "")
	printState(controller.Snapshot())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg := splitCommand(line)
		switch cmd {
		case "help":
			printHelp()

		case "login":
			email, password, ok := splitPair(arg)
			if !ok {
				fmt.Println("uso: login <email> <senha>")
				continue
			}
			if err := sess.Login(ctx, email, password); err != nil {
				notifier.Failure(messages.T("login_error"))
				continue
			}
			notifier.Success(messages.T("login_success"))

		case "logout":
			sess.Logout()

		case "list":
			controller.SetSearchTerm("")
			controller.FetchPage(ctx, 1, "")
			printState(controller.Snapshot())

		case "search":
			// O debounce segura a rajada de digitação; aqui cada comando já é
			// um termo completo, então o fetch chega após o intervalo.
			controller.SetSearchTerm(arg)
			fmt.Printf("buscando por %q...\n", arg)

		case "page":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("uso: page <número>")
				continue
			}
			controller.GoToPage(ctx, n)
			printState(controller.Snapshot())

		case "show":
			printState(controller.Snapshot())

		case "add":
			draft, err := parseDraft(arg)
			if err != nil {
				fmt.Println(err)
				continue
			}
			controller.OpenAddDialog()
			controller.CreateRecord(ctx, draft)
			printValidation(controller.Snapshot())

		case "edit":
			id, rest, ok := splitPair(arg)
			if !ok {
				fmt.Println("uso: edit <id> titulo|marca|categoria|preço|estoque[|descrição]")
				continue
			}
			draft, err := parseDraft(rest)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if !controller.SelectForEdit(id) {
				continue
			}
			controller.UpdateRecord(ctx, id, draft)
			printValidation(controller.Snapshot())

		case "del":
			if arg == "" {
				fmt.Println("uso: del <id>")
				continue
			}
			if !controller.SelectForDelete(arg) {
				continue
			}
			controller.DeleteRecord(ctx, arg)
			printState(controller.Snapshot())

		case "stats":
			result, err := stats.Load(ctx)
			if err != nil {
				continue // a falha já foi notificada pelo serviço
			}
			printStats(result)

		case "quit", "exit":
			log.Info("Console encerrado.", nil)
			return

		default:
			fmt.Printf("comando desconhecido: %q (use 'help')\n", cmd)
		}
	}
}

// splitCommand separa o comando do restante da linha.
func splitCommand(line string) (cmd, arg string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 2 {
		return parts[0], strings.TrimSpace(parts[1])
	}
	return parts[0], ""
}

// splitPair separa o primeiro token do restante.
func splitPair(arg string) (first, rest string, ok bool) {
	parts := strings.SplitN(arg, " ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], strings.TrimSpace(parts[1]), true
}

// parseDraft monta um rascunho a partir do formato
// titulo|marca|categoria|preço|estoque[|descrição].
// A validação de conteúdo fica com o controller; aqui só convertemos números.
func parseDraft(arg string) (domain.ProductDraft, error) {
	fields := strings.Split(arg, "|")
	if len(fields) < 5 {
		return domain.ProductDraft{}, fmt.Errorf("formato: titulo|marca|categoria|preço|estoque[|descrição]")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return domain.ProductDraft{}, fmt.Errorf("preço inválido: %q", fields[3])
	}
	stock, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return domain.ProductDraft{}, fmt.Errorf("estoque inválido: %q", fields[4])
	}

	draft := domain.ProductDraft{
		Title:    strings.TrimSpace(fields[0]),
		Brand:    strings.TrimSpace(fields[1]),
		Category: strings.TrimSpace(fields[2]),
		Price:    price,
		Stock:    stock,
	}
	if len(fields) > 5 {
		draft.Description = strings.TrimSpace(fields[5])
	}
	return draft, nil
}

// printState imprime a página corrente da tabela.
func printState(state listview.State) {
	if state.ListLoading {
		fmt.Println("(carregando...)")
	}
	fmt.Printf("página %d — %d produtos no total (termo: %q)\n", state.Page, state.Total, state.SearchTerm)
	for _, p := range state.Records {
		fmt.Printf("  %s  %-38s %-12s %-12s R$%9.2f  estoque:%4d  ★%.1f\n",
			p.ID, truncate(p.Title, 38), p.Brand, p.Category, p.Price, p.Stock, p.Rating)
	}
}

// printValidation imprime os erros por campo pendentes, se houver.
func printValidation(state listview.State) {
	for field, msg := range state.ValidationErrors {
		fmt.Printf("  %s: %s\n", field, msg)
	}
}

// printStats imprime o resumo do dashboard.
func printStats(s dashboard.Stats) {
	fmt.Printf("produtos: %d | estoque total: %d | sem estoque: %d\n", s.TotalProducts, s.TotalStock, s.OutOfStock)
	fmt.Printf("preço médio: R$%.2f | avaliação média: %.2f\n", s.AveragePrice, s.AverageRating)
	fmt.Println("por categoria:")
	for category, count := range s.ByCategory {
		fmt.Printf("  %-16s %d\n", category, count)
	}
	fmt.Println("por marca:")
	for brand, count := range s.ByBrand {
		fmt.Printf("  %-16s %d\n", brand, count)
	}
}

func printHelp() {
	fmt.Println(`comandos:
  login <email> <senha>    inicia a sessão do operador
  logout                   encerra a sessão
  list                     volta para a listagem completa (página 1)
  search <termo>           busca com debounce por título/marca/categoria
  page <n>                 navega para a página n
  show                     imprime o estado corrente da tabela
  add t|m|c|preço|estoque[|desc]       cria um produto
  edit <id> t|m|c|preço|estoque[|desc] atualiza um produto da página
  del <id>                 exclui um produto da página (com remoção otimista)
  stats                    estatísticas do catálogo
  quit                     sai do console`)
}

// truncate corta o texto para caber na coluna.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
