package router

import (
	"net/http"
	"time"

	"backoffice/internal/api/auth"
	"backoffice/internal/api/catalog"
	"backoffice/internal/pkg/cache"
	"backoffice/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal do provider.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	catalogHandler *catalog.Handler,
	authHandler *auth.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimit int,
	rateLimitWindow time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento.
	// Os padrões com método e {id} exigem Go 1.22+.
	mux := http.NewServeMux()

	// Middleware de autenticação: apenas as mutações do catálogo exigem
	// um token de acesso válido; as leituras são públicas.
	requireAuth := middleware.NewAuthMiddleware(tokenSvc)

	// --- 1. Rota de Health Check ---
	mux.HandleFunc("GET /ping", PingHandler)

	// --- 2. Rotas de Autenticação ---
	mux.HandleFunc("POST /auth/register", authHandler.RegisterUserHandler)
	mux.HandleFunc("POST /auth/login", authHandler.LoginUserHandler)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshHandler)

	// --- 3. Rotas do Catálogo de Produtos ---
	// Leitura (pública). A rota /products/search precisa vir registrada como
	// literal; o ServeMux prefere o padrão mais específico sobre {id}.
	mux.HandleFunc("GET /products", catalogHandler.ListProductsHandler)
	mux.HandleFunc("GET /products/search", catalogHandler.SearchProductsHandler)
	mux.HandleFunc("GET /products/{id}", catalogHandler.GetProductByIDHandler)

	// Mutação (exige JWT de acesso)
	mux.HandleFunc("POST /products/add", requireAuth(catalogHandler.CreateProductHandler))
	mux.HandleFunc("PUT /products/{id}", requireAuth(catalogHandler.UpdateProductHandler))
	mux.HandleFunc("DELETE /products/{id}", requireAuth(catalogHandler.DeleteProductHandler))

	// --- 4. Middlewares Globais ---
	// O rate limiter (Redis) envolve o mux inteiro, por IP de origem.
	return middleware.RateLimiter(cacheClient, rateLimit, rateLimitWindow)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
