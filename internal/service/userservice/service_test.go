package userservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/token"
	"restoque/internal/pkg/validation"
	"restoque/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

// MockTokenService é uma implementação mock da interface TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, userRole string) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*token.CustomClaims)
	return claims, args.Error(1)
}

func novoService(repo *MockUserRepository, tokenSvc *MockTokenService) *userservice.Service {
	return userservice.NewService(repo, tokenSvc, validation.New(), logger.NewLogger("debug"))
}

// TestRegister_Success testa o registro com hash de senha e papel padrão.
func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := novoService(mockRepo, mockToken)

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "chef@restoque.dev" &&
			u.Role == domain.RoleEstoquista &&
			u.PasswordHash != "" && u.PasswordHash != "senha-secreta"
	})).Return(domain.User{ID: uuid.New().String(), Email: "chef@restoque.dev"}, nil)

	user, err := svc.Register(context.Background(), domain.UserRegistration{
		Email:    "chef@restoque.dev",
		Nome:     "Chef Mariana",
		Password: "senha-secreta",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	mockRepo.AssertExpectations(t)
}

// TestRegister_Fail_SenhaCurta testa a rejeição de senha menor que o mínimo.
func TestRegister_Fail_SenhaCurta(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := novoService(mockRepo, mockToken)

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Email:    "chef@restoque.dev",
		Nome:     "Chef Mariana",
		Password: "curta",
	})

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "Save")
}

// TestRegister_Fail_EmailDuplicado testa a conversão da violação de
// unicidade em conflito de negócio.
func TestRegister_Fail_EmailDuplicado(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := novoService(mockRepo, mockToken)

	mockRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewDBError("Falha ao salvar usuário", assert.AnError))

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Email:    "chef@restoque.dev",
		Nome:     "Chef Mariana",
		Password: "senha-secreta",
	})

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Category())
}

// TestLogin_Success testa a troca de credenciais válidas por um JWT.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := novoService(mockRepo, mockToken)

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-secreta"), bcrypt.DefaultCost)
	userID := uuid.New().String()
	user := domain.User{ID: userID, Email: "chef@restoque.dev", PasswordHash: string(hash), Role: domain.RoleAdmin}

	mockRepo.On("FindByEmail", mock.Anything, "chef@restoque.dev").Return(user, nil)
	mockToken.On("GenerateToken", userID, "admin").Return("jwt-assinado", nil)

	tokenString, err := svc.Login(context.Background(), "chef@restoque.dev", "senha-secreta")

	assert.NoError(t, err)
	assert.Equal(t, "jwt-assinado", tokenString)
	mockRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestLogin_Fail_SenhaErrada testa a rejeição de senha incorreta.
func TestLogin_Fail_SenhaErrada(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := novoService(mockRepo, mockToken)

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-secreta"), bcrypt.DefaultCost)
	user := domain.User{ID: uuid.New().String(), PasswordHash: string(hash)}

	mockRepo.On("FindByEmail", mock.Anything, "chef@restoque.dev").Return(user, nil)

	_, err := svc.Login(context.Background(), "chef@restoque.dev", "senha-errada")

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", appErr.Category())
	mockToken.AssertNotCalled(t, "GenerateToken")
}

// TestLogin_Fail_UsuarioInexistente testa que usuário inexistente vira
// "credenciais inválidas", sem revelar a ausência do cadastro.
func TestLogin_Fail_UsuarioInexistente(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := novoService(mockRepo, mockToken)

	mockRepo.On("FindByEmail", mock.Anything, "fantasma@restoque.dev").
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado."))

	_, err := svc.Login(context.Background(), "fantasma@restoque.dev", "qualquer")

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", appErr.Category())
}
