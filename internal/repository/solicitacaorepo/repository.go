package solicitacaorepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"restoque/internal/domain"
	"restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// SolicitacaoRepository concentra o acesso às relações solicitacoes e
// itens_solicitacao. Todas as mutações de status usam UPDATE condicional
// (id + status anterior esperado): a atomicidade de linha do banco é o
// único primitivo de concorrência, e zero linhas afetadas é o único
// sinal de falha de pré-condição.
type SolicitacaoRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewSolicitacaoRepository cria e retorna uma nova instância do Repositório.
func NewSolicitacaoRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *SolicitacaoRepository {
	return &SolicitacaoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const colunasSolicitacao = `id, solicitante, praca_id, status, prioridade, prioridade_calculada,
       observacoes, tipo_movimentacao, data_entrega, periodo, created_at, updated_at`

const colunasItem = `id, solicitacao_id, produto_id, quantidade_solicitada, quantidade_separada,
       status_separacao, separado_por, inicio_separacao, fim_separacao, observacoes_separacao,
       status_entrega, entregue_por, data_entrega_item, observacoes_entrega`

// Criar persiste a solicitação e seus itens em uma única transação.
// Todos os itens nascem com separação e entrega "aguardando".
func (r *SolicitacaoRepository) Criar(ctx context.Context, s domain.Solicitacao) (domain.Solicitacao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Solicitacao{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const headerSQL = `
        INSERT INTO solicitacoes (` + colunasSolicitacao + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err = tx.ExecContext(ctxTimeout, headerSQL,
		s.ID, s.Solicitante, s.PracaID, s.Status, s.Prioridade, s.PrioridadeCalculada,
		s.Observacoes, s.TipoMovimentacao, s.DataEntrega, s.Periodo, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return domain.Solicitacao{}, errors.NewDBError("Falha ao inserir solicitação", err)
	}

	const itemSQL = `
        INSERT INTO itens_solicitacao (id, solicitacao_id, produto_id, quantidade_solicitada, status_separacao, status_entrega)
        VALUES ($1,$2,$3,$4,$5,$6)`

	for _, it := range s.Itens {
		_, err = tx.ExecContext(ctxTimeout, itemSQL,
			it.ID, s.ID, it.ProdutoID, it.QuantidadeSolicitada,
			domain.SeparacaoAguardando, domain.EntregaAguardando,
		)
		if err != nil {
			return domain.Solicitacao{}, errors.NewDBError("Falha ao inserir itens da solicitação", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.Solicitacao{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	return s, nil
}

// BuscarPorID busca o cabeçalho de uma solicitação.
func (r *SolicitacaoRepository) BuscarPorID(ctx context.Context, id string) (domain.Solicitacao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunasSolicitacao + ` FROM solicitacoes WHERE id = $1`

	var s domain.Solicitacao
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&s.ID, &s.Solicitante, &s.PracaID, &s.Status, &s.Prioridade, &s.PrioridadeCalculada,
		&s.Observacoes, &s.TipoMovimentacao, &s.DataEntrega, &s.Periodo, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Solicitacao{}, errors.NewNotFoundError(fmt.Sprintf("Solicitação %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar solicitação no DB.", err)
		return domain.Solicitacao{}, errors.NewDBError("Falha ao buscar solicitação", err)
	}

	return s, nil
}

// BuscarItens retorna todos os itens de uma solicitação.
func (r *SolicitacaoRepository) BuscarItens(ctx context.Context, solicitacaoID string) ([]domain.ItemSolicitacao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunasItem + ` FROM itens_solicitacao WHERE solicitacao_id = $1 ORDER BY id`

	rows, err := r.DB.QueryContext(ctxTimeout, query, solicitacaoID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar itens da solicitação", err)
	}
	defer rows.Close()

	var itens []domain.ItemSolicitacao
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler item da solicitação", err)
		}
		itens = append(itens, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar itens da solicitação", err)
	}

	return itens, nil
}

// BuscarItemPorID busca um item isolado.
func (r *SolicitacaoRepository) BuscarItemPorID(ctx context.Context, itemID string) (domain.ItemSolicitacao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunasItem + ` FROM itens_solicitacao WHERE id = $1`

	it, err := scanItem(r.DB.QueryRowContext(ctxTimeout, query, itemID))
	if err == sql.ErrNoRows {
		return domain.ItemSolicitacao{}, errors.NewNotFoundError(fmt.Sprintf("Item %s não encontrado.", itemID))
	}
	if err != nil {
		return domain.ItemSolicitacao{}, errors.NewDBError("Falha ao buscar item", err)
	}

	return it, nil
}

// Listar retorna a página pedida da fila de trabalho. A ordenação é a
// disciplina FIFO-dentro-de-prioridade: prioridade calculada
// decrescente, criação mais antiga primeiro dentro do mesmo peso.
func (r *SolicitacaoRepository) Listar(ctx context.Context, filtro domain.FiltroSolicitacao) ([]domain.Solicitacao, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filtro.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filtro.Status)
		idx++
	}
	if filtro.PracaID != "" {
		where += fmt.Sprintf(" AND praca_id = $%d", idx)
		args = append(args, filtro.PracaID)
		idx++
	}
	if filtro.Tipo != "" {
		where += fmt.Sprintf(" AND tipo_movimentacao = $%d", idx)
		args = append(args, filtro.Tipo)
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM solicitacoes` + where
	if err := r.DB.QueryRowContext(ctxTimeout, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDBError("Falha ao contar solicitações", err)
	}

	query := `SELECT ` + colunasSolicitacao + ` FROM solicitacoes` + where +
		fmt.Sprintf(" ORDER BY prioridade_calculada DESC, created_at ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filtro.Limit, (filtro.Page-1)*filtro.Limit)

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao listar solicitações", err)
	}
	defer rows.Close()

	var lista []domain.Solicitacao
	for rows.Next() {
		var s domain.Solicitacao
		err := rows.Scan(
			&s.ID, &s.Solicitante, &s.PracaID, &s.Status, &s.Prioridade, &s.PrioridadeCalculada,
			&s.Observacoes, &s.TipoMovimentacao, &s.DataEntrega, &s.Periodo, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, 0, errors.NewDBError("Falha ao ler solicitação", err)
		}
		lista = append(lista, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDBError("Falha ao iterar solicitações", err)
	}

	return lista, total, nil
}

// AtualizarSePendente atualiza o cabeçalho e substitui os itens, mas
// somente enquanto o status ainda é "pendente". O UPDATE condicional
// fecha a janela entre verificação e escrita; zero linhas afetadas
// significa que a solicitação avançou (ou não existe).
func (r *SolicitacaoRepository) AtualizarSePendente(ctx context.Context, s domain.Solicitacao) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const headerSQL = `
        UPDATE solicitacoes
        SET solicitante = $1, praca_id = $2, prioridade = $3, prioridade_calculada = $4,
            observacoes = $5, tipo_movimentacao = $6, data_entrega = $7, periodo = $8, updated_at = $9
        WHERE id = $10 AND status = $11`

	result, err := tx.ExecContext(ctxTimeout, headerSQL,
		s.Solicitante, s.PracaID, s.Prioridade, s.PrioridadeCalculada,
		s.Observacoes, s.TipoMovimentacao, s.DataEntrega, s.Periodo, time.Now(),
		s.ID, domain.SolicitacaoPendente,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar solicitação", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Somente solicitações pendentes podem ser editadas.")
	}

	if _, err = tx.ExecContext(ctxTimeout, `DELETE FROM itens_solicitacao WHERE solicitacao_id = $1`, s.ID); err != nil {
		return errors.NewDBError("Falha ao remover itens antigos", err)
	}

	const itemSQL = `
        INSERT INTO itens_solicitacao (id, solicitacao_id, produto_id, quantidade_solicitada, status_separacao, status_entrega)
        VALUES ($1,$2,$3,$4,$5,$6)`

	for _, it := range s.Itens {
		_, err = tx.ExecContext(ctxTimeout, itemSQL,
			it.ID, s.ID, it.ProdutoID, it.QuantidadeSolicitada,
			domain.SeparacaoAguardando, domain.EntregaAguardando,
		)
		if err != nil {
			return errors.NewDBError("Falha ao inserir itens da solicitação", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewDBError("Falha ao commitar transação", err)
	}

	return nil
}

// ExcluirSeAguardando remove a solicitação apenas se nenhum item saiu de
// "aguardando". A condição fica no próprio DELETE; os itens caem por
// cascata no schema.
func (r *SolicitacaoRepository) ExcluirSeAguardando(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        DELETE FROM solicitacoes
        WHERE id = $1
          AND NOT EXISTS (
              SELECT 1 FROM itens_solicitacao
              WHERE solicitacao_id = $1 AND status_separacao <> $2
          )`

	result, err := r.DB.ExecContext(ctxTimeout, query, id, domain.SeparacaoAguardando)
	if err != nil {
		return errors.NewDBError("Falha ao excluir solicitação", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Solicitação não encontrada ou com separação já iniciada.")
	}

	return nil
}

// CancelarSePendente cancela a solicitação e os itens que ainda aguardam
// separação. Itens já em andamento não são tocados.
func (r *SolicitacaoRepository) CancelarSePendente(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout,
		`UPDATE solicitacoes SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		domain.SolicitacaoCancelada, time.Now(), id, domain.SolicitacaoPendente,
	)
	if err != nil {
		return errors.NewDBError("Falha ao cancelar solicitação", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Somente solicitações pendentes podem ser canceladas.")
	}

	_, err = tx.ExecContext(ctxTimeout,
		`UPDATE itens_solicitacao SET status_separacao = $1 WHERE solicitacao_id = $2 AND status_separacao = $3`,
		domain.SeparacaoCancelado, id, domain.SeparacaoAguardando,
	)
	if err != nil {
		return errors.NewDBError("Falha ao cancelar itens da solicitação", err)
	}

	if err = tx.Commit(); err != nil {
		return errors.NewDBError("Falha ao commitar transação", err)
	}

	return nil
}

// --- Transições de separação e entrega ---

// IniciarSeparacao reivindica o item para o usuário. O UPDATE condicional
// em "aguardando" é a guarda de concorrência: entre dois separadores
// simultâneos, exatamente um afeta a linha.
func (r *SolicitacaoRepository) IniciarSeparacao(ctx context.Context, itemID, userID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE itens_solicitacao
        SET status_separacao = $1, separado_por = $2, inicio_separacao = $3
        WHERE id = $4 AND status_separacao = $5`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		domain.SeparacaoSeparando, userID, time.Now(), itemID, domain.SeparacaoAguardando,
	)
	if err != nil {
		r.logger.Error("Falha ao iniciar separação no DB.", err)
		return errors.NewDBError("Falha ao iniciar separação", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Item não encontrado ou já em separação.")
	}

	return nil
}

// ConcluirSeparacao grava o desfecho (separado ou em_falta), a quantidade
// e o fim da separação, condicionado ao status "separando".
func (r *SolicitacaoRepository) ConcluirSeparacao(ctx context.Context, itemID string, quantidade decimal.Decimal, resultado domain.StatusSeparacao, observacoes string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE itens_solicitacao
        SET status_separacao = $1, quantidade_separada = $2, observacoes_separacao = $3, fim_separacao = $4
        WHERE id = $5 AND status_separacao = $6`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		resultado, quantidade, observacoes, time.Now(), itemID, domain.SeparacaoSeparando,
	)
	if err != nil {
		r.logger.Error("Falha ao concluir separação no DB.", err)
		return errors.NewDBError("Falha ao concluir separação", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Item não encontrado ou fora do estado de separação.")
	}

	return nil
}

// CancelarSeparacao devolve o item para a fila, limpando os metadados
// de separação para que ele possa ser reivindicado de novo.
func (r *SolicitacaoRepository) CancelarSeparacao(ctx context.Context, itemID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE itens_solicitacao
        SET status_separacao = $1, separado_por = NULL, inicio_separacao = NULL,
            fim_separacao = NULL, observacoes_separacao = NULL
        WHERE id = $2 AND status_separacao = $3`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		domain.SeparacaoAguardando, itemID, domain.SeparacaoSeparando,
	)
	if err != nil {
		return errors.NewDBError("Falha ao cancelar separação", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Item não encontrado ou não está em separação.")
	}

	return nil
}

// IniciarEntrega só é permitida para item separado e com entrega ainda
// aguardando; ambas as condições entram no mesmo UPDATE.
func (r *SolicitacaoRepository) IniciarEntrega(ctx context.Context, itemID, userID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE itens_solicitacao
        SET status_entrega = $1, entregue_por = $2
        WHERE id = $3 AND status_entrega = $4 AND status_separacao = $5`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		domain.EntregaEmEntrega, userID, itemID, domain.EntregaAguardando, domain.SeparacaoSeparado,
	)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar entrega", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Item não encontrado, não separado ou já em entrega.")
	}

	return nil
}

// ConcluirEntrega grava o desfecho da entrega (entregue ou nao_entregue).
func (r *SolicitacaoRepository) ConcluirEntrega(ctx context.Context, itemID string, resultado domain.StatusEntrega, observacoes string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE itens_solicitacao
        SET status_entrega = $1, data_entrega_item = $2, observacoes_entrega = $3
        WHERE id = $4 AND status_entrega = $5`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		resultado, time.Now(), observacoes, itemID, domain.EntregaEmEntrega,
	)
	if err != nil {
		return errors.NewDBError("Falha ao concluir entrega", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Item não encontrado ou não está em entrega.")
	}

	return nil
}

// ContarItens retorna o total de itens da solicitação e quantos já estão
// em estado terminal de separação.
func (r *SolicitacaoRepository) ContarItens(ctx context.Context, solicitacaoID string) (total int, terminais int, err error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status_separacao IN ($2, $3, $4))
        FROM itens_solicitacao
        WHERE solicitacao_id = $1`

	err = r.DB.QueryRowContext(ctxTimeout, query, solicitacaoID,
		domain.SeparacaoSeparado, domain.SeparacaoEmFalta, domain.SeparacaoCancelado,
	).Scan(&total, &terminais)
	if err != nil {
		return 0, 0, errors.NewDBError("Falha ao contar itens da solicitação", err)
	}

	return total, terminais, nil
}

// AvancarStatus tenta a transição de status do cabeçalho. Retorna se a
// linha foi de fato avançada. Zero linhas não é erro aqui: quando dois
// itens concluem em paralelo, apenas o primeiro avança o cabeçalho e o
// segundo encontra o valor já gravado (convergência idempotente).
func (r *SolicitacaoRepository) AvancarStatus(ctx context.Context, id string, de, para domain.StatusSolicitacao) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `UPDATE solicitacoes SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	result, err := r.DB.ExecContext(ctxTimeout, query, para, time.Now(), id, de)
	if err != nil {
		return false, errors.NewDBError("Falha ao avançar status da solicitação", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	return rowsAffected > 0, nil
}

// scanner cobre *sql.Row e *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(sc scanner) (domain.ItemSolicitacao, error) {
	var (
		it             domain.ItemSolicitacao
		qtdSeparada    decimal.NullDecimal
		separadoPor    sql.NullString
		inicio, fim    sql.NullTime
		obsSeparacao   sql.NullString
		entreguePor    sql.NullString
		dataEntrega    sql.NullTime
		obsEntrega     sql.NullString
	)

	err := sc.Scan(
		&it.ID, &it.SolicitacaoID, &it.ProdutoID, &it.QuantidadeSolicitada, &qtdSeparada,
		&it.StatusSeparacao, &separadoPor, &inicio, &fim, &obsSeparacao,
		&it.StatusEntrega, &entreguePor, &dataEntrega, &obsEntrega,
	)
	if err != nil {
		return domain.ItemSolicitacao{}, err
	}

	if qtdSeparada.Valid {
		it.QuantidadeSeparada = &qtdSeparada.Decimal
	}
	it.SeparadoPor = separadoPor.String
	if inicio.Valid {
		it.InicioSeparacao = &inicio.Time
	}
	if fim.Valid {
		it.FimSeparacao = &fim.Time
	}
	it.ObservacoesSeparacao = obsSeparacao.String
	it.EntreguePor = entreguePor.String
	if dataEntrega.Valid {
		it.DataEntregaItem = &dataEntrega.Time
	}
	it.ObservacoesEntrega = obsEntrega.String

	return it, nil
}
