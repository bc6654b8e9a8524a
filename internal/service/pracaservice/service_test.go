package pracaservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/service/pracaservice"
)

// MockPracaRepository é uma implementação mock da interface PracaRepository
type MockPracaRepository struct {
	mock.Mock
}

func (m *MockPracaRepository) Criar(ctx context.Context, p domain.Praca) (domain.Praca, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Praca), args.Error(1)
}

func (m *MockPracaRepository) BuscarPorID(ctx context.Context, id string) (domain.Praca, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Praca), args.Error(1)
}

func (m *MockPracaRepository) Listar(ctx context.Context) ([]domain.Praca, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Praca), args.Error(1)
}

func (m *MockPracaRepository) Atualizar(ctx context.Context, p domain.Praca) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPracaRepository) Excluir(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestCriar_Success testa a criação de uma praça ativa.
func TestCriar_Success(t *testing.T) {
	mockRepo := new(MockPracaRepository)
	svc := pracaservice.NewService(mockRepo, logger.NewLogger("debug"))

	mockRepo.On("Criar", mock.Anything, mock.MatchedBy(func(p domain.Praca) bool {
		return p.Nome == "Cozinha Quente" && p.Ativa && p.ID != ""
	})).Return(domain.Praca{ID: uuid.New().String(), Nome: "Cozinha Quente", Ativa: true}, nil)

	criada, err := svc.Criar(context.Background(), domain.Praca{Nome: "Cozinha Quente"})

	assert.NoError(t, err)
	assert.True(t, criada.Ativa)
	mockRepo.AssertExpectations(t)
}

// TestCriar_Fail_NomeVazio testa a rejeição de nome em branco.
func TestCriar_Fail_NomeVazio(t *testing.T) {
	mockRepo := new(MockPracaRepository)
	svc := pracaservice.NewService(mockRepo, logger.NewLogger("debug"))

	_, err := svc.Criar(context.Background(), domain.Praca{Nome: "   "})

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "Criar")
}

// TestExcluir_Fail_SolicitacoesEmAberto testa o conflito ao excluir uma
// praça referenciada por solicitações abertas.
func TestExcluir_Fail_SolicitacoesEmAberto(t *testing.T) {
	mockRepo := new(MockPracaRepository)
	svc := pracaservice.NewService(mockRepo, logger.NewLogger("debug"))

	id := uuid.New().String()
	mockRepo.On("Excluir", mock.Anything, id).
		Return(apperror.NewConflictError("A praça possui solicitações em aberto."))

	err := svc.Excluir(context.Background(), id)

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Category())
	mockRepo.AssertExpectations(t)
}
