package movimentacaorepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"restoque/internal/domain"
	"restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// MovimentacaoRepository acessa o razão de movimentações de estoque.
// O razão é append-only: nenhum método altera ou remove lançamentos.
type MovimentacaoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewMovimentacaoRepository cria e retorna uma nova instância do Repositório.
func NewMovimentacaoRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *MovimentacaoRepository {
	return &MovimentacaoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// ExisteParaSolicitacao informa se já há lançamentos referenciando a
// solicitação. É o caminho rápido da guarda de idempotência; a guarda
// exata é o UPDATE condicional dentro de AplicarAjustes.
func (r *MovimentacaoRepository) ExisteParaSolicitacao(ctx context.Context, solicitacaoID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var existe bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM movimentacoes_estoque WHERE solicitacao_id = $1)`,
		solicitacaoID,
	).Scan(&existe)
	if err != nil {
		return false, errors.NewDBError("Falha ao verificar movimentações existentes", err)
	}

	return existe, nil
}

// AplicarAjustes converte os itens separados da solicitação em
// lançamentos do razão, exatamente uma vez. Tudo acontece em uma única
// transação: o UPDATE condicional entregue→confirmada é a guarda exata
// de idempotência (zero linhas = ajustes já aplicados ou solicitação
// fora do estado), e o lote de INSERTs só é visível se o avanço de
// status commitar junto. Duas chamadas concorrentes não duplicam o lote.
// Retorna o número de lançamentos criados.
func (r *MovimentacaoRepository) AplicarAjustes(ctx context.Context, solicitacaoID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return 0, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	// 1. Guarda de idempotência: avanço condicional do cabeçalho.
	result, err := tx.ExecContext(ctxTimeout,
		`UPDATE solicitacoes SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		domain.SolicitacaoConfirmada, time.Now(), solicitacaoID, domain.SolicitacaoEntregue,
	)
	if err != nil {
		return 0, errors.NewDBError("Falha ao confirmar solicitação", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return 0, errors.NewConflictError("Ajustes já aplicados ou solicitação não está pronta para confirmação.")
	}

	// 2. Tipo de movimentação e nome da praça, para compor as notas.
	var tipo domain.TipoMovimentacao
	var nomePraca string
	err = tx.QueryRowContext(ctxTimeout, `
        SELECT s.tipo_movimentacao, p.nome
        FROM solicitacoes s
        JOIN pracas p ON p.id = s.praca_id
        WHERE s.id = $1`, solicitacaoID,
	).Scan(&tipo, &nomePraca)
	if err != nil {
		return 0, errors.NewDBError("Falha ao carregar solicitação para ajuste", err)
	}

	// 3. Itens com desfecho "separado"; em_falta não movimenta estoque.
	rows, err := tx.QueryContext(ctxTimeout, `
        SELECT produto_id, quantidade_separada, COALESCE(observacoes_separacao, '')
        FROM itens_solicitacao
        WHERE solicitacao_id = $1 AND status_separacao = $2`,
		solicitacaoID, domain.SeparacaoSeparado,
	)
	if err != nil {
		return 0, errors.NewDBError("Falha ao carregar itens separados", err)
	}

	type lancamento struct {
		produtoID  string
		quantidade string
		nota       string
	}
	var lancamentos []lancamento
	for rows.Next() {
		var l lancamento
		if err := rows.Scan(&l.produtoID, &l.quantidade, &l.nota); err != nil {
			rows.Close()
			return 0, errors.NewDBError("Falha ao ler item separado", err)
		}
		lancamentos = append(lancamentos, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, errors.NewDBError("Falha ao iterar itens separados", err)
	}

	// 4. Inserção do lote inteiro em um único INSERT (tudo ou nada).
	if len(lancamentos) > 0 {
		valores := make([]string, 0, len(lancamentos))
		args := make([]interface{}, 0, len(lancamentos)*6)
		for i, l := range lancamentos {
			base := i * 6
			valores = append(valores, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))

			args = append(args, uuid.New().String(), l.produtoID, tipo, l.quantidade, solicitacaoID,
				domain.NotaAjuste(nomePraca, l.nota))
		}

		insertSQL := `
            INSERT INTO movimentacoes_estoque (id, produto_id, tipo, quantidade, solicitacao_id, observacoes)
            VALUES ` + strings.Join(valores, ",")

		if _, err := tx.ExecContext(ctxTimeout, insertSQL, args...); err != nil {
			return 0, errors.NewDBError("Falha ao inserir lançamentos de estoque", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.NewDBError("Falha ao commitar transação de ajustes", err)
	}

	r.logger.Info("Ajustes de estoque aplicados.", map[string]interface{}{
		"solicitacao_id": solicitacaoID,
		"lancamentos":    len(lancamentos),
	})
	return len(lancamentos), nil
}

// Criar insere um lançamento manual avulso no razão.
func (r *MovimentacaoRepository) Criar(ctx context.Context, m domain.MovimentacaoEstoque) (domain.MovimentacaoEstoque, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO movimentacoes_estoque (id, produto_id, tipo, quantidade, solicitacao_id, observacoes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		m.ID, m.ProdutoID, m.Tipo, m.Quantidade, m.SolicitacaoID, m.Observacoes,
	).Scan(&m.CreatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir movimentação manual.", err)
		return domain.MovimentacaoEstoque{}, errors.NewDBError("Falha ao inserir movimentação", err)
	}

	return m, nil
}

// Listar retorna a página pedida do razão, mais recente primeiro.
func (r *MovimentacaoRepository) Listar(ctx context.Context, filtro domain.FiltroMovimentacao) ([]domain.MovimentacaoEstoque, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filtro.ProdutoID != "" {
		where += fmt.Sprintf(" AND produto_id = $%d", idx)
		args = append(args, filtro.ProdutoID)
		idx++
	}
	if filtro.Tipo != "" {
		where += fmt.Sprintf(" AND tipo = $%d", idx)
		args = append(args, filtro.Tipo)
		idx++
	}
	if filtro.Inicio != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filtro.Inicio)
		idx++
	}
	if filtro.Fim != nil {
		where += fmt.Sprintf(" AND created_at < $%d", idx)
		args = append(args, *filtro.Fim)
		idx++
	}

	var total int
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM movimentacoes_estoque`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDBError("Falha ao contar movimentações", err)
	}

	query := `
        SELECT id, produto_id, tipo, quantidade, solicitacao_id, COALESCE(observacoes, ''), created_at
        FROM movimentacoes_estoque` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filtro.Limit, (filtro.Page-1)*filtro.Limit)

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao listar movimentações", err)
	}
	defer rows.Close()

	var lista []domain.MovimentacaoEstoque
	for rows.Next() {
		var m domain.MovimentacaoEstoque
		var solicitacaoID sql.NullString
		err := rows.Scan(&m.ID, &m.ProdutoID, &m.Tipo, &m.Quantidade, &solicitacaoID, &m.Observacoes, &m.CreatedAt)
		if err != nil {
			return nil, 0, errors.NewDBError("Falha ao ler movimentação", err)
		}
		if solicitacaoID.Valid {
			m.SolicitacaoID = &solicitacaoID.String
		}
		lista = append(lista, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDBError("Falha ao iterar movimentações", err)
	}

	return lista, total, nil
}
