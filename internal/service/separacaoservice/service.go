package separacaoservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/validation"
)

// SolicitacaoRepository define o contrato que o Serviço de Separação
// espera da camada de Persistência.
type SolicitacaoRepository interface {
	BuscarItemPorID(ctx context.Context, itemID string) (domain.ItemSolicitacao, error)
	IniciarSeparacao(ctx context.Context, itemID, userID string) error
	ConcluirSeparacao(ctx context.Context, itemID string, quantidade decimal.Decimal, resultado domain.StatusSeparacao, observacoes string) error
	CancelarSeparacao(ctx context.Context, itemID string) error
	IniciarEntrega(ctx context.Context, itemID, userID string) error
	ConcluirEntrega(ctx context.Context, itemID string, resultado domain.StatusEntrega, observacoes string) error
	ContarItens(ctx context.Context, solicitacaoID string) (total int, terminais int, err error)
	AvancarStatus(ctx context.Context, id string, de, para domain.StatusSolicitacao) (bool, error)
}

// Service implementa o fluxo de separação e entrega dos itens,
// mantendo o status agregado da solicitação consistente.
type Service struct {
	repo      SolicitacaoRepository
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Separação.
func NewService(repo SolicitacaoRepository, validator *validation.Validator, logger logger.Logger) *Service {
	return &Service{repo: repo, validator: validator, logger: logger}
}

// ConcluirSeparacaoInput é o payload de conclusão de separação. O
// desfecho só pode ser um dos dois estados terminais de sucesso. A
// quantidade é ponteiro para distinguir zero informado de campo ausente.
type ConcluirSeparacaoInput struct {
	ItemID             string                 `json:"item_id" validate:"required,uuid"`
	QuantidadeSeparada *decimal.Decimal       `json:"quantidade_separada" validate:"required"`
	Resultado          domain.StatusSeparacao `json:"resultado" validate:"required,oneof=separado em_falta"`
	Observacoes        string                 `json:"observacoes"`
}

// ConcluirEntregaInput é o payload de conclusão de entrega.
type ConcluirEntregaInput struct {
	ItemID      string               `json:"item_id" validate:"required,uuid"`
	Resultado   domain.StatusEntrega `json:"resultado" validate:"required,oneof=entregue nao_entregue"`
	Observacoes string               `json:"observacoes"`
}

// IniciarSeparacao reivindica o item para o usuário informado. Só é
// permitido quando o item está "aguardando"; duas chamadas concorrentes
// sobre o mesmo item resultam em exatamente um sucesso e um conflito.
func (s *Service) IniciarSeparacao(ctx context.Context, itemID, userID string) error {
	if itemID == "" || userID == "" {
		return apperror.NewValidationError("Identificador do item e do usuário são obrigatórios.")
	}

	if err := s.repo.IniciarSeparacao(ctx, itemID, userID); err != nil {
		s.logger.Warn("Início de separação rejeitado.", map[string]interface{}{
			"item_id": itemID, "user_id": userID, "error": err.Error(),
		})
		return err
	}

	s.logger.Info("Separação iniciada.", map[string]interface{}{"item_id": itemID, "user_id": userID})
	return nil
}

// ConcluirSeparacao grava o desfecho da separação e, se todos os itens
// irmãos atingiram estado terminal, avança a solicitação para
// "entregue". O avanço é idempotente: invocações concorrentes para
// itens diferentes da mesma solicitação não avançam duas vezes.
func (s *Service) ConcluirSeparacao(ctx context.Context, input ConcluirSeparacaoInput) error {
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	if !domain.PodeTransicionarSeparacao(domain.SeparacaoSeparando, input.Resultado) {
		return apperror.NewValidationError(fmt.Sprintf("Desfecho de separação inválido: %s.", input.Resultado))
	}
	if input.QuantidadeSeparada.IsNegative() {
		return apperror.NewValidationError("A quantidade separada não pode ser negativa.")
	}

	if err := s.repo.ConcluirSeparacao(ctx, input.ItemID, *input.QuantidadeSeparada, input.Resultado, input.Observacoes); err != nil {
		return err
	}

	s.logger.Info("Separação concluída.", map[string]interface{}{
		"item_id": input.ItemID, "resultado": string(input.Resultado),
	})

	// Verificação secundária: item concluído pode ter sido o último.
	item, err := s.repo.BuscarItemPorID(ctx, input.ItemID)
	if err != nil {
		// A transição principal já foi gravada; a falha aqui só adia o
		// avanço do cabeçalho para a próxima conclusão.
		s.logger.Error("Falha ao recarregar item após conclusão.", err)
		return nil
	}

	return s.avancarSeTerminal(ctx, item.SolicitacaoID)
}

// CancelarSeparacao devolve um item "separando" para a fila.
func (s *Service) CancelarSeparacao(ctx context.Context, itemID string) error {
	if itemID == "" {
		return apperror.NewValidationError("Identificador do item é obrigatório.")
	}

	if err := s.repo.CancelarSeparacao(ctx, itemID); err != nil {
		return err
	}

	s.logger.Info("Separação cancelada, item devolvido à fila.", map[string]interface{}{"item_id": itemID})
	return nil
}

// IniciarEntrega marca o item como em entrega. Exige separação "separado".
func (s *Service) IniciarEntrega(ctx context.Context, itemID, userID string) error {
	if itemID == "" || userID == "" {
		return apperror.NewValidationError("Identificador do item e do usuário são obrigatórios.")
	}

	if err := s.repo.IniciarEntrega(ctx, itemID, userID); err != nil {
		return err
	}

	s.logger.Info("Entrega iniciada.", map[string]interface{}{"item_id": itemID, "user_id": userID})
	return nil
}

// ConcluirEntrega grava o desfecho da entrega do item.
func (s *Service) ConcluirEntrega(ctx context.Context, input ConcluirEntregaInput) error {
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	if !domain.PodeTransicionarEntrega(domain.EntregaEmEntrega, input.Resultado) {
		return apperror.NewValidationError(fmt.Sprintf("Desfecho de entrega inválido: %s.", input.Resultado))
	}

	if err := s.repo.ConcluirEntrega(ctx, input.ItemID, input.Resultado, input.Observacoes); err != nil {
		return err
	}

	s.logger.Info("Entrega concluída.", map[string]interface{}{
		"item_id": input.ItemID, "resultado": string(input.Resultado),
	})
	return nil
}

// avancarSeTerminal avança a solicitação para "entregue" quando todos os
// itens atingiram estado terminal de separação. O retorno false do
// UPDATE condicional (outro item avançou primeiro) não é erro.
func (s *Service) avancarSeTerminal(ctx context.Context, solicitacaoID string) error {
	total, terminais, err := s.repo.ContarItens(ctx, solicitacaoID)
	if err != nil {
		s.logger.Error("Falha ao contar itens para avanço de status.", err)
		return nil
	}

	if total == 0 || terminais < total {
		return nil
	}

	avancou, err := s.repo.AvancarStatus(ctx, solicitacaoID, domain.SolicitacaoPendente, domain.SolicitacaoEntregue)
	if err != nil {
		s.logger.Error("Falha ao avançar status da solicitação.", err)
		return nil
	}

	if avancou {
		s.logger.Info("Solicitação avançou para entregue.", map[string]interface{}{"solicitacao_id": solicitacaoID})
	}
	return nil
}
