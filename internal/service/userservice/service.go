package userservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/pkg/token"
)

// UserService define o serviço de lógica de negócio para os operadores do
// back-office: registro, login e renovação de sessão.
type UserService struct {
	UserRepo domain.UserRepository
	TokenSvc token.TokenService
}

// NewService cria uma nova instância do UserService, injetando o Repositório
// e o serviço de tokens.
func NewService(repo domain.UserRepository, tokenSvc token.TokenService) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
	}
}

// Register registra um novo operador no sistema.
// Ele faz o hashing da senha e lida com validações básicas.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação Básica (Simplificada)
	if registration.Email == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	// 2. Hashing da Senha
	// Gera um hash forte para a senha informada.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Criação do Objeto User
	newUser := domain.User{
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser, // Papel padrão; admins são promovidos via seed/migração
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 4. Chamada ao Repositório para Persistência
	user, err := s.UserRepo.Save(ctx, newUser)

	if err != nil {
		// Se for um erro de DB (possivelmente e-mail duplicado), o traduzimos
		// para um erro de Conflito de Negócio (409 Conflict).
		var dbErr *apperror.InternalError
		if errors.As(err, &dbErr) {
			return domain.User{}, apperror.NewConflictError(
				fmt.Sprintf("O email '%s' já está em uso.", registration.Email),
			)
		}

		// Retorna o erro original (ex: 500 Interno, timeout)
		return domain.User{}, err
	}

	return user, nil
}

// Login autentica um operador, verifica a senha e gera o par de tokens
// (acesso + refresh) que o back-office guarda na sessão.
func (s *UserService) Login(ctx context.Context, email string, password string) (token.Pair, error) {
	// 1. Validação Básica
	if email == "" || password == "" {
		return token.Pair{}, apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	// 2. Buscar Operador pelo Email
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// Se for um NotFoundError (404), tratamos como Unauthorized (401) para não dar dicas a invasores.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return token.Pair{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		// Retorna erro interno se falhar a busca (DB error)
		return token.Pair{}, err
	}

	// 3. Comparar Senhas (Hashing)
	// Compara a senha informada (texto puro) com o hash salvo no DB.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return token.Pair{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 4. Gerar o par de JWTs
	pair, err := s.TokenSvc.GeneratePair(user.ID, string(user.Role))
	if err != nil {
		return token.Pair{}, apperror.NewInternalError("Falha ao gerar tokens de autenticação.", err)
	}

	// 5. Sucesso
	return pair, nil
}

// Refresh valida um token de refresh e, se o operador ainda existir, emite um
// novo par de tokens. Usado pelo back-office para renovar a sessão sem pedir
// credenciais de novo.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	if refreshToken == "" {
		return token.Pair{}, apperror.NewUnauthorizedError("Token de refresh é obrigatório.")
	}

	claims, err := s.TokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return token.Pair{}, apperror.NewUnauthorizedError("Token de refresh inválido ou expirado.")
	}

	// Confirma que o operador ainda existe (pode ter sido removido após o login)
	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return token.Pair{}, apperror.NewUnauthorizedError("Operador da sessão não existe mais.")
		}
		return token.Pair{}, err
	}

	pair, err := s.TokenSvc.GeneratePair(user.ID, string(user.Role))
	if err != nil {
		return token.Pair{}, apperror.NewInternalError("Falha ao gerar tokens de autenticação.", err)
	}

	return pair, nil
}
