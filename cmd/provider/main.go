package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"backoffice/config"
	"backoffice/internal/pkg/cache"
	"backoffice/internal/pkg/database"
	"backoffice/internal/pkg/logger"
	"backoffice/internal/pkg/token"

	// Camadas do Catálogo para Injeção de Dependências
	"backoffice/internal/api/auth"    // Handlers de autenticação
	"backoffice/internal/api/catalog" // Handlers do catálogo
	"backoffice/internal/api/router"  // Roteador central
	"backoffice/internal/repository/productrepo"
	"backoffice/internal/repository/userrepo"
	"backoffice/internal/service/catalogservice"
	"backoffice/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando o provider de catálogo...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se o arquivo não for encontrado, avisamos mas continuamos, pois as
	// variáveis essenciais podem estar no ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadProviderConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositório de Produto (Camada de Acesso a Dados)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	log.Debug("Repositório de Produto inicializado.", nil)

	// B. Serviço de Catálogo (Camada de Lógica de Negócio)
	catalogSvc := catalogservice.NewService(productRepo, log)
	log.Debug("Serviço de Catálogo inicializado.", nil)

	// C. Handler do Catálogo (Camada de Apresentação)
	catalogHandler := catalog.NewHandler(catalogSvc, log)
	log.Debug("Handler do Catálogo inicializado.", nil)

	// D. Serviço de Tokens (JWT: par de acesso + refresh)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry, cfg.RefreshExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// E. Repositório e Serviço de Operador
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositório de Operador inicializado.", nil)

	userSvc := userservice.NewService(userRepo, tokenSvc)
	log.Debug("Serviço de Operador inicializado.", nil)

	// F. Handler de Autenticação
	authHandler := auth.NewHandler(userSvc, log)
	log.Debug("Handler de Autenticação inicializado.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	// O roteador recebe os Handlers e aplica os middlewares
	// (autenticação nas mutações e rate limiting global).
	r := router.NewRouter(catalogHandler, authHandler, tokenSvc, cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Provider de catálogo ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
