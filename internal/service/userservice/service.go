package userservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/token"
	"restoque/internal/pkg/validation"
)

// UserRepository define o contrato de persistência para usuários.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Service é o colaborador de identidade do sistema: registra usuários e
// troca credenciais por um JWT. O núcleo do fluxo de trabalho nunca fala
// com este serviço; ele só recebe o id já resolvido pelo middleware.
type Service struct {
	UserRepo  UserRepository
	TokenSvc  TokenService
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria uma nova instância do UserService.
func NewService(repo UserRepository, tokenSvc TokenService, validator *validation.Validator, logger logger.Logger) *Service {
	return &Service{
		UserRepo:  repo,
		TokenSvc:  tokenSvc,
		validator: validator,
		logger:    logger,
	}
}

// Register registra um novo usuário no sistema.
func (s *Service) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	if err := s.validator.Struct(registration); err != nil {
		return domain.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	agora := time.Now()
	newUser := domain.User{
		ID:           uuid.New().String(),
		Email:        registration.Email,
		Nome:         registration.Nome,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleEstoquista,
		CreatedAt:    agora,
		UpdatedAt:    agora,
	}

	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		// Violação de unicidade do e-mail vira conflito de negócio.
		var dbErr *apperror.InternalError
		if errors.As(err, &dbErr) {
			return domain.User{}, apperror.NewConflictError(
				fmt.Sprintf("O email '%s' já está em uso.", registration.Email),
			)
		}
		return domain.User{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"id": user.ID})
	return user, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *Service) Login(ctx context.Context, email string, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira Unauthorized para não dar dicas a invasores.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, nil
}
