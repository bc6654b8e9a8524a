package dashboardrepo

import (
	"context"
	"database/sql"
	"time"

	"restoque/internal/domain"
	"restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// DashboardRepository concentra as consultas de agregação do painel.
// A agregação é definida uma única vez aqui; o serviço decide se a serve
// do cache ou direto destas consultas.
type DashboardRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDashboardRepository cria e retorna uma nova instância do Repositório.
func NewDashboardRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *DashboardRepository {
	return &DashboardRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Resumo calcula os agregados do painel em uma única rodada de consultas.
func (r *DashboardRepository) Resumo(ctx context.Context) (domain.ResumoDashboard, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var resumo domain.ResumoDashboard

	const query = `
        SELECT
            (SELECT COUNT(*) FROM solicitacoes WHERE status = $1),
            (SELECT COUNT(*) FROM itens_solicitacao WHERE status_separacao = $2),
            (SELECT COUNT(*) FROM solicitacoes
             WHERE status IN ($3, $4) AND updated_at >= date_trunc('day', now())),
            (SELECT COUNT(*) FROM itens_solicitacao),
            (SELECT COUNT(*) FROM itens_solicitacao WHERE status_separacao IN ($5, $6, $7))`

	var totalItens, itensTerminais int
	err := r.DB.QueryRowContext(ctxTimeout, query,
		domain.SolicitacaoPendente,
		domain.SeparacaoSeparando,
		domain.SolicitacaoEntregue, domain.SolicitacaoConfirmada,
		domain.SeparacaoSeparado, domain.SeparacaoEmFalta, domain.SeparacaoCancelado,
	).Scan(
		&resumo.SolicitacoesPendentes,
		&resumo.ItensEmSeparacao,
		&resumo.ConcluidasHoje,
		&totalItens,
		&itensTerminais,
	)
	if err != nil {
		return domain.ResumoDashboard{}, errors.NewDBError("Falha ao calcular resumo do painel", err)
	}

	resumo.PercentualGeral = domain.Percentual(itensTerminais, totalItens)
	return resumo, nil
}

// PercentualConclusao calcula o percentual de itens terminais de uma
// solicitação, arredondado para o inteiro mais próximo.
func (r *DashboardRepository) PercentualConclusao(ctx context.Context, solicitacaoID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status_separacao IN ($2, $3, $4))
        FROM itens_solicitacao
        WHERE solicitacao_id = $1`

	var total, terminais int
	err := r.DB.QueryRowContext(ctxTimeout, query, solicitacaoID,
		domain.SeparacaoSeparado, domain.SeparacaoEmFalta, domain.SeparacaoCancelado,
	).Scan(&total, &terminais)
	if err != nil {
		return 0, errors.NewDBError("Falha ao calcular percentual de conclusão", err)
	}

	return domain.Percentual(terminais, total), nil
}
