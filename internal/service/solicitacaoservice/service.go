package solicitacaoservice

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

// SolicitacaoRepository define o contrato que o Serviço de Solicitações
// espera da camada de Persistência.
type SolicitacaoRepository interface {
	Criar(ctx context.Context, s domain.Solicitacao) (domain.Solicitacao, error)
	BuscarPorID(ctx context.Context, id string) (domain.Solicitacao, error)
	BuscarItens(ctx context.Context, solicitacaoID string) ([]domain.ItemSolicitacao, error)
	Listar(ctx context.Context, filtro domain.FiltroSolicitacao) ([]domain.Solicitacao, int, error)
	AtualizarSePendente(ctx context.Context, s domain.Solicitacao) error
	ExcluirSeAguardando(ctx context.Context, id string) error
	CancelarSePendente(ctx context.Context, id string) error
}

// PracaRepository é o contrato mínimo para resolver a praça de destino.
type PracaRepository interface {
	BuscarPorID(ctx context.Context, id string) (domain.Praca, error)
}

// Service implementa o CRUD de solicitações com as regras de ciclo de
// vida: edição somente enquanto pendente, exclusão somente com todos os
// itens aguardando.
type Service struct {
	repo      SolicitacaoRepository
	pracaRepo PracaRepository
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Solicitações.
func NewService(repo SolicitacaoRepository, pracaRepo PracaRepository, validator *validation.Validator, logger logger.Logger) *Service {
	return &Service{repo: repo, pracaRepo: pracaRepo, validator: validator, logger: logger}
}

// ItemInput é uma linha de produto no payload de criação/edição.
type ItemInput struct {
	ProdutoID  string          `json:"produto_id" validate:"required,uuid"`
	Quantidade decimal.Decimal `json:"quantidade"`
}

// SolicitacaoInput é o payload de criação/edição de solicitação.
type SolicitacaoInput struct {
	Solicitante      string                  `json:"solicitante" validate:"required"`
	PracaID          string                  `json:"praca_id" validate:"required,uuid"`
	Prioridade       domain.Prioridade       `json:"prioridade" validate:"required,oneof=baixa normal alta urgente"`
	TipoMovimentacao domain.TipoMovimentacao `json:"tipo_movimentacao" validate:"required,oneof=entrada saida"`
	DataEntrega      time.Time               `json:"data_entrega" validate:"required"`
	Periodo          domain.Periodo          `json:"periodo" validate:"required,oneof=manha tarde noite"`
	Observacoes      string                  `json:"observacoes"`
	Itens            []ItemInput             `json:"itens" validate:"required,min=1,dive"`
}

// Detalhe agrega a solicitação, seus itens e a praça de destino.
type Detalhe struct {
	Solicitacao domain.Solicitacao `json:"solicitacao"`
	Praca       domain.Praca       `json:"praca"`
}

// Lista é o envelope paginado das filas de trabalho.
type Lista struct {
	Items      []domain.Solicitacao `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
}

// Criar valida o payload, resolve a praça e persiste a solicitação com
// todos os itens em "aguardando".
func (s *Service) Criar(ctx context.Context, input SolicitacaoInput, userID string) (domain.Solicitacao, error) {
	sol, err := s.montar(ctx, input)
	if err != nil {
		return domain.Solicitacao{}, err
	}

	sol.ID = uuid.New().String()
	sol.Status = domain.SolicitacaoPendente
	sol.CreatedAt = time.Now()
	sol.UpdatedAt = sol.CreatedAt
	for i := range sol.Itens {
		sol.Itens[i].ID = uuid.New().String()
		sol.Itens[i].SolicitacaoID = sol.ID
	}

	criada, err := s.repo.Criar(ctx, sol)
	if err != nil {
		s.logger.Error("Falha ao criar solicitação.", err)
		return domain.Solicitacao{}, err
	}

	s.logger.Info("Solicitação criada.", map[string]interface{}{
		"id": criada.ID, "praca_id": criada.PracaID, "user_id": userID, "itens": len(criada.Itens),
	})
	return criada, nil
}

// Atualizar substitui cabeçalho e itens, somente enquanto pendente.
func (s *Service) Atualizar(ctx context.Context, id string, input SolicitacaoInput) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da solicitação deve ser um UUID válido.")
	}

	sol, err := s.montar(ctx, input)
	if err != nil {
		return err
	}

	sol.ID = id
	for i := range sol.Itens {
		sol.Itens[i].ID = uuid.New().String()
		sol.Itens[i].SolicitacaoID = id
	}

	if err := s.repo.AtualizarSePendente(ctx, sol); err != nil {
		return err
	}

	s.logger.Info("Solicitação atualizada.", map[string]interface{}{"id": id})
	return nil
}

// Excluir remove a solicitação, permitido apenas enquanto todos os
// itens estão "aguardando".
func (s *Service) Excluir(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da solicitação deve ser um UUID válido.")
	}

	if err := s.repo.ExcluirSeAguardando(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Solicitação excluída.", map[string]interface{}{"id": id})
	return nil
}

// Cancelar marca a solicitação pendente como cancelada.
func (s *Service) Cancelar(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da solicitação deve ser um UUID válido.")
	}

	if err := s.repo.CancelarSePendente(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Solicitação cancelada.", map[string]interface{}{"id": id})
	return nil
}

// Buscar retorna a solicitação com itens e praça. Itens e praça são
// leituras independentes e carregadas em paralelo.
func (s *Service) Buscar(ctx context.Context, id string) (Detalhe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Detalhe{}, apperror.NewValidationError("O ID da solicitação deve ser um UUID válido.")
	}

	sol, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return Detalhe{}, err
	}

	type itensResult struct {
		itens []domain.ItemSolicitacao
		err   error
	}
	type pracaResult struct {
		praca domain.Praca
		err   error
	}

	itensCh := make(chan itensResult, 1)
	pracaCh := make(chan pracaResult, 1)

	go func() {
		itens, err := s.repo.BuscarItens(ctx, id)
		itensCh <- itensResult{itens, err}
	}()
	go func() {
		praca, err := s.pracaRepo.BuscarPorID(ctx, sol.PracaID)
		pracaCh <- pracaResult{praca, err}
	}()

	ir := <-itensCh
	pr := <-pracaCh
	if ir.err != nil {
		return Detalhe{}, ir.err
	}
	if pr.err != nil {
		return Detalhe{}, pr.err
	}

	sol.Itens = ir.itens
	return Detalhe{Solicitacao: sol, Praca: pr.praca}, nil
}

// Listar retorna a fila de trabalho paginada, em ordem de prioridade
// calculada decrescente e criação mais antiga primeiro.
func (s *Service) Listar(ctx context.Context, filtro domain.FiltroSolicitacao) (Lista, error) {
	if filtro.Page < 1 {
		filtro.Page = 1
	}
	if filtro.Limit < 1 || filtro.Limit > 100 {
		filtro.Limit = 20
	}

	items, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return Lista{}, err
	}

	totalPages := total / filtro.Limit
	if total%filtro.Limit > 0 {
		totalPages++
	}

	return Lista{Items: items, Total: total, Page: filtro.Page, TotalPages: totalPages}, nil
}

// montar valida o payload e converte-o na entidade, resolvendo a praça
// de destino e derivando a prioridade calculada.
func (s *Service) montar(ctx context.Context, input SolicitacaoInput) (domain.Solicitacao, error) {
	if err := s.validator.Struct(input); err != nil {
		return domain.Solicitacao{}, err
	}

	for _, it := range input.Itens {
		if !it.Quantidade.IsPositive() {
			return domain.Solicitacao{}, apperror.NewValidationError("Todo item deve ter quantidade maior que zero.")
		}
	}

	if _, err := s.pracaRepo.BuscarPorID(ctx, input.PracaID); err != nil {
		return domain.Solicitacao{}, err
	}

	sol := domain.Solicitacao{
		Solicitante:         input.Solicitante,
		PracaID:             input.PracaID,
		Prioridade:          input.Prioridade,
		PrioridadeCalculada: input.Prioridade.PrioridadeCalculada(),
		Observacoes:         input.Observacoes,
		TipoMovimentacao:    input.TipoMovimentacao,
		DataEntrega:         input.DataEntrega,
		Periodo:             input.Periodo,
	}

	for _, it := range input.Itens {
		sol.Itens = append(sol.Itens, domain.ItemSolicitacao{
			ProdutoID:            it.ProdutoID,
			QuantidadeSolicitada: it.Quantidade,
			StatusSeparacao:      domain.SeparacaoAguardando,
			StatusEntrega:        domain.EntregaAguardando,
		})
	}

	return sol, nil
}
