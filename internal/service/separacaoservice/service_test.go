package separacaoservice_test

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
	"restoque/internal/service/separacaoservice"
)

// MockSolicitacaoRepository é uma implementação mock da interface SolicitacaoRepository
type MockSolicitacaoRepository struct {
	mock.Mock
}

func (m *MockSolicitacaoRepository) BuscarItemPorID(ctx context.Context, itemID string) (domain.ItemSolicitacao, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.ItemSolicitacao), args.Error(1)
}

func (m *MockSolicitacaoRepository) IniciarSeparacao(ctx context.Context, itemID, userID string) error {
	args := m.Called(ctx, itemID, userID)
	return args.Error(0)
}

func (m *MockSolicitacaoRepository) ConcluirSeparacao(ctx context.Context, itemID string, quantidade decimal.Decimal, resultado domain.StatusSeparacao, observacoes string) error {
	args := m.Called(ctx, itemID, quantidade, resultado, observacoes)
	return args.Error(0)
}

func (m *MockSolicitacaoRepository) CancelarSeparacao(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockSolicitacaoRepository) IniciarEntrega(ctx context.Context, itemID, userID string) error {
	args := m.Called(ctx, itemID, userID)
	return args.Error(0)
}

func (m *MockSolicitacaoRepository) ConcluirEntrega(ctx context.Context, itemID string, resultado domain.StatusEntrega, observacoes string) error {
	args := m.Called(ctx, itemID, resultado, observacoes)
	return args.Error(0)
}

func (m *MockSolicitacaoRepository) ContarItens(ctx context.Context, solicitacaoID string) (int, int, error) {
	args := m.Called(ctx, solicitacaoID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockSolicitacaoRepository) AvancarStatus(ctx context.Context, id string, de, para domain.StatusSolicitacao) (bool, error) {
	args := m.Called(ctx, id, de, para)
	return args.Bool(0), args.Error(1)
}

func novoService(repo *MockSolicitacaoRepository) *separacaoservice.Service {
	return separacaoservice.NewService(repo, validation.New(), logger.NewLogger("debug"))
}

// TestIniciarSeparacao_Success testa a reivindicação de um item aguardando.
func TestIniciarSeparacao_Success(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	userID := uuid.New().String()

	mockRepo.On("IniciarSeparacao", mock.Anything, itemID, userID).Return(nil)

	err := svc.IniciarSeparacao(context.Background(), itemID, userID)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestIniciarSeparacao_Fail_SemUsuario testa a rejeição sem identificador de usuário.
func TestIniciarSeparacao_Fail_SemUsuario(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	err := svc.IniciarSeparacao(context.Background(), uuid.New().String(), "")

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "IniciarSeparacao")
}

// TestIniciarSeparacao_Fail_ItemJaReivindicado testa o conflito quando o
// item já saiu de "aguardando": das duas chamadas concorrentes, a segunda
// recebe conflito.
func TestIniciarSeparacao_Fail_ItemJaReivindicado(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	conflito := apperror.NewConflictError("O item não está aguardando separação.")

	mockRepo.On("IniciarSeparacao", mock.Anything, itemID, mock.Anything).Return(conflito)

	err := svc.IniciarSeparacao(context.Background(), itemID, uuid.New().String())

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Category())
	mockRepo.AssertExpectations(t)
}

// TestConcluirSeparacao_Success_UltimoItemAvanca testa que a conclusão do
// último item pendente avança a solicitação para "entregue".
func TestConcluirSeparacao_Success_UltimoItemAvanca(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	solicitacaoID := uuid.New().String()
	qtd := decimal.NewFromFloat(2.5)

	mockRepo.On("ConcluirSeparacao", mock.Anything, itemID, qtd, domain.SeparacaoSeparado, "").Return(nil)
	mockRepo.On("BuscarItemPorID", mock.Anything, itemID).
		Return(domain.ItemSolicitacao{ID: itemID, SolicitacaoID: solicitacaoID}, nil)
	mockRepo.On("ContarItens", mock.Anything, solicitacaoID).Return(3, 3, nil)
	mockRepo.On("AvancarStatus", mock.Anything, solicitacaoID, domain.SolicitacaoPendente, domain.SolicitacaoEntregue).
		Return(true, nil)

	err := svc.ConcluirSeparacao(context.Background(), separacaoservice.ConcluirSeparacaoInput{
		ItemID:             itemID,
		QuantidadeSeparada: &qtd,
		Resultado:          domain.SeparacaoSeparado,
	})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestConcluirSeparacao_Success_ItensRestantesNaoAvanca testa que a
// solicitação permanece pendente enquanto houver itens não terminais.
func TestConcluirSeparacao_Success_ItensRestantesNaoAvanca(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	solicitacaoID := uuid.New().String()
	qtd := decimal.NewFromInt(1)

	mockRepo.On("ConcluirSeparacao", mock.Anything, itemID, qtd, domain.SeparacaoEmFalta, "acabou").Return(nil)
	mockRepo.On("BuscarItemPorID", mock.Anything, itemID).
		Return(domain.ItemSolicitacao{ID: itemID, SolicitacaoID: solicitacaoID}, nil)
	mockRepo.On("ContarItens", mock.Anything, solicitacaoID).Return(3, 1, nil)

	err := svc.ConcluirSeparacao(context.Background(), separacaoservice.ConcluirSeparacaoInput{
		ItemID:             itemID,
		QuantidadeSeparada: &qtd,
		Resultado:          domain.SeparacaoEmFalta,
		Observacoes:        "acabou",
	})

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "AvancarStatus")
	mockRepo.AssertExpectations(t)
}

// TestConcluirSeparacao_Success_AvancoJaFeito testa a idempotência do
// avanço: outro item concluiu primeiro e o UPDATE condicional não afetou
// linha alguma. Isso não é erro.
func TestConcluirSeparacao_Success_AvancoJaFeito(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	solicitacaoID := uuid.New().String()
	qtd := decimal.NewFromInt(4)

	mockRepo.On("ConcluirSeparacao", mock.Anything, itemID, qtd, domain.SeparacaoSeparado, "").Return(nil)
	mockRepo.On("BuscarItemPorID", mock.Anything, itemID).
		Return(domain.ItemSolicitacao{ID: itemID, SolicitacaoID: solicitacaoID}, nil)
	mockRepo.On("ContarItens", mock.Anything, solicitacaoID).Return(2, 2, nil)
	mockRepo.On("AvancarStatus", mock.Anything, solicitacaoID, domain.SolicitacaoPendente, domain.SolicitacaoEntregue).
		Return(false, nil)

	err := svc.ConcluirSeparacao(context.Background(), separacaoservice.ConcluirSeparacaoInput{
		ItemID:             itemID,
		QuantidadeSeparada: &qtd,
		Resultado:          domain.SeparacaoSeparado,
	})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestConcluirSeparacao_Fail_ResultadoInvalido testa a rejeição de um
// desfecho que não é estado terminal de separação.
func TestConcluirSeparacao_Fail_ResultadoInvalido(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	qtd := decimal.NewFromInt(1)
	err := svc.ConcluirSeparacao(context.Background(), separacaoservice.ConcluirSeparacaoInput{
		ItemID:             uuid.New().String(),
		QuantidadeSeparada: &qtd,
		Resultado:          domain.StatusSeparacao("separando"),
	})

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "ConcluirSeparacao")
}

// TestConcluirSeparacao_Fail_QuantidadeNegativa testa a rejeição de
// quantidade separada negativa.
func TestConcluirSeparacao_Fail_QuantidadeNegativa(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	qtd := decimal.NewFromInt(-1)
	err := svc.ConcluirSeparacao(context.Background(), separacaoservice.ConcluirSeparacaoInput{
		ItemID:             uuid.New().String(),
		QuantidadeSeparada: &qtd,
		Resultado:          domain.SeparacaoSeparado,
	})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "ConcluirSeparacao")
}

// TestConcluirSeparacao_Fail_SemQuantidade testa que um payload sem a
// quantidade separada é rejeitado; a ausência do campo não pode ser
// gravada silenciosamente como zero.
func TestConcluirSeparacao_Fail_SemQuantidade(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	err := svc.ConcluirSeparacao(context.Background(), separacaoservice.ConcluirSeparacaoInput{
		ItemID:    uuid.New().String(),
		Resultado: domain.SeparacaoSeparado,
	})

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "ConcluirSeparacao")
}

// TestCancelarSeparacao_Success testa a devolução do item à fila.
func TestCancelarSeparacao_Success(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	mockRepo.On("CancelarSeparacao", mock.Anything, itemID).Return(nil)

	err := svc.CancelarSeparacao(context.Background(), itemID)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestIniciarEntrega_Fail_NaoSeparado testa o conflito quando o item
// ainda não foi separado.
func TestIniciarEntrega_Fail_NaoSeparado(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	conflito := apperror.NewConflictError("O item não está pronto para entrega.")

	mockRepo.On("IniciarEntrega", mock.Anything, itemID, mock.Anything).Return(conflito)

	err := svc.IniciarEntrega(context.Background(), itemID, uuid.New().String())

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Category())
	mockRepo.AssertExpectations(t)
}

// TestConcluirEntrega_Success testa o desfecho de entrega bem sucedido.
func TestConcluirEntrega_Success(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	itemID := uuid.New().String()
	mockRepo.On("ConcluirEntrega", mock.Anything, itemID, domain.EntregaEntregue, "").Return(nil)

	err := svc.ConcluirEntrega(context.Background(), separacaoservice.ConcluirEntregaInput{
		ItemID:    itemID,
		Resultado: domain.EntregaEntregue,
	})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestConcluirEntrega_Fail_ResultadoInvalido testa a rejeição de desfecho
// de entrega que não é terminal.
func TestConcluirEntrega_Fail_ResultadoInvalido(t *testing.T) {
	mockRepo := new(MockSolicitacaoRepository)
	svc := novoService(mockRepo)

	err := svc.ConcluirEntrega(context.Background(), separacaoservice.ConcluirEntregaInput{
		ItemID:    uuid.New().String(),
		Resultado: domain.StatusEntrega("em_entrega"),
	})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "ConcluirEntrega")
}
