package fichaservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/validation"
	"restoque/internal/service/fichaservice"
)

// MockFichaRepository é uma implementação mock da interface FichaRepository
type MockFichaRepository struct {
	mock.Mock
}

func (m *MockFichaRepository) Criar(ctx context.Context, f domain.FichaTecnica) (domain.FichaTecnica, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.FichaTecnica), args.Error(1)
}

func (m *MockFichaRepository) BuscarPorID(ctx context.Context, id string) (domain.FichaTecnica, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.FichaTecnica), args.Error(1)
}

func (m *MockFichaRepository) Listar(ctx context.Context, somenteAtivas bool) ([]domain.FichaTecnica, error) {
	args := m.Called(ctx, somenteAtivas)
	return args.Get(0).([]domain.FichaTecnica), args.Error(1)
}

func (m *MockFichaRepository) Atualizar(ctx context.Context, f domain.FichaTecnica) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFichaRepository) Excluir(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func novoService(repo *MockFichaRepository) *fichaservice.Service {
	return fichaservice.NewService(repo, validation.New(), logger.NewLogger("debug"))
}

func inputValido() fichaservice.FichaInput {
	return fichaservice.FichaInput{
		Nome:              "Molho de tomate da casa",
		Rendimento:        decimal.NewFromInt(5),
		UnidadeRendimento: "l",
		Ingredientes: []fichaservice.IngredienteInput{
			{ProdutoID: uuid.New().String(), Quantidade: decimal.NewFromInt(8)},
			{ProdutoID: uuid.New().String(), Quantidade: decimal.NewFromFloat(0.2), Observacoes: "picada fina"},
		},
	}
}

// TestCriar_Success testa a criação da ficha com ingredientes vinculados.
func TestCriar_Success(t *testing.T) {
	mockRepo := new(MockFichaRepository)
	svc := novoService(mockRepo)

	mockRepo.On("Criar", mock.Anything, mock.MatchedBy(func(f domain.FichaTecnica) bool {
		if !f.Ativa || f.ID == "" || len(f.Ingredientes) != 2 {
			return false
		}
		for _, ing := range f.Ingredientes {
			if ing.FichaID != f.ID || ing.ID == "" {
				return false
			}
		}
		return true
	})).Return(domain.FichaTecnica{ID: uuid.New().String(), Nome: "Molho de tomate da casa"}, nil)

	criada, err := svc.Criar(context.Background(), inputValido())

	assert.NoError(t, err)
	assert.NotEmpty(t, criada.ID)
	mockRepo.AssertExpectations(t)
}

// TestCriar_Fail_SemIngredientes testa a rejeição de ficha sem ingredientes.
func TestCriar_Fail_SemIngredientes(t *testing.T) {
	mockRepo := new(MockFichaRepository)
	svc := novoService(mockRepo)

	input := inputValido()
	input.Ingredientes = nil

	_, err := svc.Criar(context.Background(), input)

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "Criar")
}

// TestCriar_Fail_RendimentoZero testa a rejeição de rendimento não positivo.
func TestCriar_Fail_RendimentoZero(t *testing.T) {
	mockRepo := new(MockFichaRepository)
	svc := novoService(mockRepo)

	input := inputValido()
	input.Rendimento = decimal.Zero

	_, err := svc.Criar(context.Background(), input)

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Criar")
}

// TestExcluir_Fail_IDInvalido testa a rejeição de ID que não é UUID.
func TestExcluir_Fail_IDInvalido(t *testing.T) {
	mockRepo := new(MockFichaRepository)
	svc := novoService(mockRepo)

	err := svc.Excluir(context.Background(), "ficha-1")

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Excluir")
}

// TestListar_Success testa o repasse do filtro de ativas.
func TestListar_Success(t *testing.T) {
	mockRepo := new(MockFichaRepository)
	svc := novoService(mockRepo)

	mockRepo.On("Listar", mock.Anything, true).
		Return([]domain.FichaTecnica{{ID: uuid.New().String(), Nome: "Caldo base", Ativa: true}}, nil)

	fichas, err := svc.Listar(context.Background(), true)

	assert.NoError(t, err)
	assert.Len(t, fichas, 1)
	mockRepo.AssertExpectations(t)
}
