package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config armazena todas as configurações do console de back-office
// (o lado cliente: controller de listagem, sessão e dashboard).
type Config struct {
	// Geral
	Environment string
	LogLevel    string

	// Provider remoto de catálogo
	ProviderBaseURL string
	HTTPTimeout     time.Duration

	// Controller de listagem
	PageSize         int           // registros por página (fixado na construção)
	DebounceInterval time.Duration // intervalo de debounce da busca

	// Sessão do operador
	RefreshSkew time.Duration // antecedência com que o token é renovado

	// Dashboard
	DashboardSampleSize int // quantos produtos amostrar para as estatísticas
}

// ProviderConfig armazena as configurações do servidor provider de catálogo
// (o lado servidor: DB, cache, segurança e rate limiting).
type ProviderConfig struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr string
	CacheTTL  time.Duration

	// Segurança (JWT)
	JWTSecretKey  string
	TokenExpiry   time.Duration
	RefreshExpiry time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// LoadConfig carrega as configurações do console a partir das variáveis de ambiente.
func LoadConfig() *Config {
	return &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "http://localhost:8080"),
		HTTPTimeout:     getDurationEnv("HTTP_TIMEOUT_SEC", 10) * time.Second,

		PageSize:         getIntEnv("PAGE_SIZE", 8),
		DebounceInterval: getDurationEnv("DEBOUNCE_MS", 500) * time.Millisecond,

		RefreshSkew: getDurationEnv("REFRESH_SKEW_SEC", 30) * time.Second,

		DashboardSampleSize: getIntEnv("DASHBOARD_SAMPLE_SIZE", 100),
	}
}

// LoadProviderConfig carrega as configurações do provider a partir das variáveis de ambiente.
func LoadProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// mustGetEnv garante que o provider não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  getDurationEnv("CACHE_TTL_SEC", 300) * time.Second,

		JWTSecretKey:  mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:   getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,
		RefreshExpiry: getDurationEnv("JWT_REFRESH_EXPIRY_MIN", 1440) * time.Minute,

		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,
	}
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
