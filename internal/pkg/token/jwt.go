package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService define o contrato para manipulação de JWTs.
// O provider emite um PAR de tokens (acesso + refresh) para que o back-office
// consiga renovar a sessão do operador sem novo login.
type TokenService interface {
	GeneratePair(userID string, userRole string) (Pair, error)
	ValidateToken(tokenString string) (*CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*CustomClaims, error)
}

// Pair agrupa o token de acesso e o de refresh emitidos juntos.
type Pair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresOn    time.Time `json:"expiresOn"`
}

// CustomClaims define as informações específicas que queremos armazenar no JWT.
// É obrigatório incorporar jwt.RegisteredClaims.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Use    string `json:"use"` // "access" ou "refresh"
	jwt.RegisteredClaims
}

// Service implementa a interface TokenService
type Service struct {
	secretKey     []byte
	expiry        time.Duration
	refreshExpiry time.Duration
}

// NewService cria uma nova instância do serviço Token.
func NewService(secretKey string, expiry, refreshExpiry time.Duration) *Service {
	return &Service{
		secretKey:     []byte(secretKey),
		expiry:        expiry,
		refreshExpiry: refreshExpiry,
	}
}

// GeneratePair cria um par de JWTs assinados contendo o ID e a Role do operador.
func (s *Service) GeneratePair(userID string, userRole string) (Pair, error) {
	now := time.Now()
	expiresOn := now.Add(s.expiry)

	access, err := s.sign(userID, userRole, "access", now, expiresOn)
	if err != nil {
		return Pair{}, fmt.Errorf("falha ao assinar o token de acesso: %w", err)
	}

	refresh, err := s.sign(userID, userRole, "refresh", now, now.Add(s.refreshExpiry))
	if err != nil {
		return Pair{}, fmt.Errorf("falha ao assinar o token de refresh: %w", err)
	}

	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresOn:    expiresOn,
	}, nil
}

// sign monta as claims e assina um único token com HS256.
func (s *Service) sign(userID, userRole, use string, issuedAt, expiresAt time.Time) (string, error) {
	claims := CustomClaims{
		UserID: userID,
		Role:   userRole,
		Use:    use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    "Backoffice-Provider",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken valida o token de acesso e retorna as claims se for válido.
func (s *Service) ValidateToken(tokenString string) (*CustomClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Use != "access" {
		return nil, errors.New("token não é um token de acesso")
	}
	return claims, nil
}

// ValidateRefreshToken valida o token de refresh usado em /auth/refresh.
func (s *Service) ValidateRefreshToken(tokenString string) (*CustomClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Use != "refresh" {
		return nil, errors.New("token não é um token de refresh")
	}
	return claims, nil
}

// parse valida assinatura e expiração, preenchendo as claims.
func (s *Service) parse(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verifica se o método de assinatura é o esperado (HS256)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		// Trata erros comuns de JWT, como token expirado ou inválido
		return nil, fmt.Errorf("token inválido: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token não é válido")
	}

	return claims, nil
}

// ExtractExpiry lê a expiração de um JWT SEM validar a assinatura.
// O back-office (lado cliente) usa isso para agendar o refresh da sessão;
// a validação real é sempre feita pelo provider.
func ExtractExpiry(tokenString string) (time.Time, error) {
	claims := &CustomClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("token ilegível: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token sem claim de expiração")
	}
	return claims.ExpiresAt.Time, nil
}
