package ajusteservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/validation"
)

// MovimentacaoRepository define o contrato que o Serviço de Ajustes
// espera da camada de Persistência.
type MovimentacaoRepository interface {
	ExisteParaSolicitacao(ctx context.Context, solicitacaoID string) (bool, error)
	AplicarAjustes(ctx context.Context, solicitacaoID string) (int, error)
	Criar(ctx context.Context, m domain.MovimentacaoEstoque) (domain.MovimentacaoEstoque, error)
	Listar(ctx context.Context, filtro domain.FiltroMovimentacao) ([]domain.MovimentacaoEstoque, int, error)
}

// Service converte solicitações totalmente separadas em lançamentos do
// razão de estoque e administra as movimentações manuais.
type Service struct {
	repo      MovimentacaoRepository
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Ajustes.
func NewService(repo MovimentacaoRepository, validator *validation.Validator, logger logger.Logger) *Service {
	return &Service{repo: repo, validator: validator, logger: logger}
}

// RegistrarMovimentacaoInput é o payload de um lançamento manual.
type RegistrarMovimentacaoInput struct {
	ProdutoID   string                  `json:"produto_id" validate:"required,uuid"`
	Tipo        domain.TipoMovimentacao `json:"tipo" validate:"required,oneof=entrada saida"`
	Quantidade  decimal.Decimal         `json:"quantidade"`
	Observacoes string                  `json:"observacoes"`
}

// ResultadoAjuste é o retorno de AplicarAjustes.
type ResultadoAjuste struct {
	SolicitacaoID       string `json:"solicitacao_id"`
	MovimentacoesCriadas int   `json:"movimentacoes_criadas"`
}

// ListaMovimentacoes é o envelope paginado do razão.
type ListaMovimentacoes struct {
	Items      []domain.MovimentacaoEstoque `json:"items"`
	Total      int                          `json:"total"`
	Page       int                          `json:"page"`
	TotalPages int                          `json:"total_pages"`
}

// AplicarAjustes cria os lançamentos de estoque de uma solicitação cujos
// itens já foram todos separados, exatamente uma vez. A segunda chamada
// para a mesma solicitação falha com conflito e não cria lançamentos.
func (s *Service) AplicarAjustes(ctx context.Context, solicitacaoID string) (ResultadoAjuste, error) {
	if _, err := uuid.Parse(solicitacaoID); err != nil {
		return ResultadoAjuste{}, apperror.NewValidationError("O ID da solicitação deve ser um UUID válido.")
	}

	// Caminho rápido: detecta reaplicação antes de abrir a transação,
	// para devolver "já aplicados" em vez de um conflito genérico. A
	// guarda exata fica dentro da transação do repositório.
	existe, err := s.repo.ExisteParaSolicitacao(ctx, solicitacaoID)
	if err != nil {
		s.logger.Error("Falha na verificação de idempotência dos ajustes.", err)
		return ResultadoAjuste{}, apperror.NewInternalError("Falha interna ao verificar ajustes.", err)
	}
	if existe {
		return ResultadoAjuste{}, apperror.NewConflictError("Ajustes já aplicados para esta solicitação.")
	}

	count, err := s.repo.AplicarAjustes(ctx, solicitacaoID)
	if err != nil {
		return ResultadoAjuste{}, err
	}

	s.logger.Info("Ajustes de estoque aplicados.", map[string]interface{}{
		"solicitacao_id": solicitacaoID,
		"lancamentos":    count,
	})
	return ResultadoAjuste{SolicitacaoID: solicitacaoID, MovimentacoesCriadas: count}, nil
}

// RegistrarMovimentacao insere um lançamento manual avulso no razão.
func (s *Service) RegistrarMovimentacao(ctx context.Context, input RegistrarMovimentacaoInput) (domain.MovimentacaoEstoque, error) {
	if err := s.validator.Struct(input); err != nil {
		return domain.MovimentacaoEstoque{}, err
	}
	if !input.Quantidade.IsPositive() {
		return domain.MovimentacaoEstoque{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}

	mov := domain.MovimentacaoEstoque{
		ID:          uuid.New().String(),
		ProdutoID:   input.ProdutoID,
		Tipo:        input.Tipo,
		Quantidade:  input.Quantidade,
		Observacoes: input.Observacoes,
		CreatedAt:   time.Now(),
	}

	criada, err := s.repo.Criar(ctx, mov)
	if err != nil {
		s.logger.Error("Falha ao registrar movimentação manual.", err)
		return domain.MovimentacaoEstoque{}, err
	}

	s.logger.Info("Movimentação manual registrada.", map[string]interface{}{
		"id": criada.ID, "produto_id": criada.ProdutoID, "tipo": string(criada.Tipo),
	})
	return criada, nil
}

// ListarMovimentacoes retorna a página pedida do razão.
func (s *Service) ListarMovimentacoes(ctx context.Context, filtro domain.FiltroMovimentacao) (ListaMovimentacoes, error) {
	if filtro.Page < 1 {
		filtro.Page = 1
	}
	if filtro.Limit < 1 || filtro.Limit > 100 {
		filtro.Limit = 20
	}

	items, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return ListaMovimentacoes{}, err
	}

	totalPages := total / filtro.Limit
	if total%filtro.Limit > 0 {
		totalPages++
	}

	return ListaMovimentacoes{
		Items:      items,
		Total:      total,
		Page:       filtro.Page,
		TotalPages: totalPages,
	}, nil
}
