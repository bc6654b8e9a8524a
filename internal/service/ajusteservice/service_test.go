package ajusteservice_test

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
	"restoque/internal/service/ajusteservice"
)

// MockMovimentacaoRepository é uma implementação mock da interface MovimentacaoRepository
type MockMovimentacaoRepository struct {
	mock.Mock
}

func (m *MockMovimentacaoRepository) ExisteParaSolicitacao(ctx context.Context, solicitacaoID string) (bool, error) {
	args := m.Called(ctx, solicitacaoID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMovimentacaoRepository) AplicarAjustes(ctx context.Context, solicitacaoID string) (int, error) {
	args := m.Called(ctx, solicitacaoID)
	return args.Int(0), args.Error(1)
}

func (m *MockMovimentacaoRepository) Criar(ctx context.Context, mov domain.MovimentacaoEstoque) (domain.MovimentacaoEstoque, error) {
	args := m.Called(ctx, mov)
	return args.Get(0).(domain.MovimentacaoEstoque), args.Error(1)
}

func (m *MockMovimentacaoRepository) Listar(ctx context.Context, filtro domain.FiltroMovimentacao) ([]domain.MovimentacaoEstoque, int, error) {
	args := m.Called(ctx, filtro)
	return args.Get(0).([]domain.MovimentacaoEstoque), args.Int(1), args.Error(2)
}

func novoService(repo *MockMovimentacaoRepository) *ajusteservice.Service {
	return ajusteservice.NewService(repo, validation.New(), logger.NewLogger("debug"))
}

// TestAplicarAjustes_Success testa a criação dos lançamentos de uma
// solicitação pronta para confirmação.
func TestAplicarAjustes_Success(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	solicitacaoID := uuid.New().String()

	mockRepo.On("ExisteParaSolicitacao", mock.Anything, solicitacaoID).Return(false, nil)
	mockRepo.On("AplicarAjustes", mock.Anything, solicitacaoID).Return(3, nil)

	resultado, err := svc.AplicarAjustes(context.Background(), solicitacaoID)

	assert.NoError(t, err)
	assert.Equal(t, solicitacaoID, resultado.SolicitacaoID)
	assert.Equal(t, 3, resultado.MovimentacoesCriadas)
	mockRepo.AssertExpectations(t)
}

// TestAplicarAjustes_Fail_JaAplicados testa a idempotência: a segunda
// aplicação para a mesma solicitação recebe conflito e não cria lançamentos.
func TestAplicarAjustes_Fail_JaAplicados(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	solicitacaoID := uuid.New().String()

	mockRepo.On("ExisteParaSolicitacao", mock.Anything, solicitacaoID).Return(true, nil)

	_, err := svc.AplicarAjustes(context.Background(), solicitacaoID)

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Category())
	mockRepo.AssertNotCalled(t, "AplicarAjustes")
}

// TestAplicarAjustes_Fail_IDInvalido testa a rejeição de um ID que não é UUID.
func TestAplicarAjustes_Fail_IDInvalido(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	_, err := svc.AplicarAjustes(context.Background(), "nao-e-uuid")

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "ExisteParaSolicitacao")
}

// TestAplicarAjustes_Fail_SolicitacaoNaoPronta testa o repasse do
// conflito vindo da guarda transacional do repositório.
func TestAplicarAjustes_Fail_SolicitacaoNaoPronta(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	solicitacaoID := uuid.New().String()
	conflito := apperror.NewConflictError("Ajustes já aplicados ou solicitação não está pronta para confirmação.")

	mockRepo.On("ExisteParaSolicitacao", mock.Anything, solicitacaoID).Return(false, nil)
	mockRepo.On("AplicarAjustes", mock.Anything, solicitacaoID).Return(0, conflito)

	_, err := svc.AplicarAjustes(context.Background(), solicitacaoID)

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Category())
	mockRepo.AssertExpectations(t)
}

// TestRegistrarMovimentacao_Success testa o lançamento manual no razão.
func TestRegistrarMovimentacao_Success(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	produtoID := uuid.New().String()

	mockRepo.On("Criar", mock.Anything, mock.MatchedBy(func(m domain.MovimentacaoEstoque) bool {
		return m.ProdutoID == produtoID && m.Tipo == domain.MovimentacaoEntrada && m.Quantidade.Equal(decimal.NewFromInt(5))
	})).Return(domain.MovimentacaoEstoque{ID: uuid.New().String(), ProdutoID: produtoID}, nil)

	mov, err := svc.RegistrarMovimentacao(context.Background(), ajusteservice.RegistrarMovimentacaoInput{
		ProdutoID:  produtoID,
		Tipo:       domain.MovimentacaoEntrada,
		Quantidade: decimal.NewFromInt(5),
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, mov.ID)
	mockRepo.AssertExpectations(t)
}

// TestRegistrarMovimentacao_Fail_QuantidadeZero testa a rejeição de
// lançamento manual sem quantidade positiva.
func TestRegistrarMovimentacao_Fail_QuantidadeZero(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	_, err := svc.RegistrarMovimentacao(context.Background(), ajusteservice.RegistrarMovimentacaoInput{
		ProdutoID:  uuid.New().String(),
		Tipo:       domain.MovimentacaoSaida,
		Quantidade: decimal.Zero,
	})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Criar")
}

// TestRegistrarMovimentacao_Fail_TipoInvalido testa a rejeição de um
// tipo fora de entrada/saida.
func TestRegistrarMovimentacao_Fail_TipoInvalido(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	_, err := svc.RegistrarMovimentacao(context.Background(), ajusteservice.RegistrarMovimentacaoInput{
		ProdutoID:  uuid.New().String(),
		Tipo:       domain.TipoMovimentacao("transferencia"),
		Quantidade: decimal.NewFromInt(1),
	})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Criar")
}

// TestListarMovimentacoes_Success_PaginacaoNormalizada testa a
// normalização de página e limite fora de faixa.
func TestListarMovimentacoes_Success_PaginacaoNormalizada(t *testing.T) {
	mockRepo := new(MockMovimentacaoRepository)
	svc := novoService(mockRepo)

	esperado := domain.FiltroMovimentacao{Page: 1, Limit: 20}
	mockRepo.On("Listar", mock.Anything, esperado).Return([]domain.MovimentacaoEstoque{}, 45, nil)

	lista, err := svc.ListarMovimentacoes(context.Background(), domain.FiltroMovimentacao{Page: 0, Limit: 500})

	assert.NoError(t, err)
	assert.Equal(t, 45, lista.Total)
	assert.Equal(t, 3, lista.TotalPages)
	mockRepo.AssertExpectations(t)
}
