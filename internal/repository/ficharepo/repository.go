package ficharepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restoque/internal/domain"
	"restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// FichaRepository acessa as fichas técnicas e seus ingredientes. O
// cabeçalho e as linhas são sempre gravados na mesma transação.
type FichaRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewFichaRepository cria e retorna uma nova instância do Repositório.
func NewFichaRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *FichaRepository {
	return &FichaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const colunasFicha = `id, nome, descricao, rendimento, unidade_rendimento, ativa, created_at, updated_at`

// Criar persiste a ficha técnica e seus ingredientes em uma transação.
func (r *FichaRepository) Criar(ctx context.Context, f domain.FichaTecnica) (domain.FichaTecnica, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.FichaTecnica{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const headerSQL = `
        INSERT INTO fichas_tecnicas (` + colunasFicha + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.ExecContext(ctxTimeout, headerSQL,
		f.ID, f.Nome, f.Descricao, f.Rendimento, f.UnidadeRendimento, f.Ativa, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return domain.FichaTecnica{}, errors.NewDBError("Falha ao inserir ficha técnica", err)
	}

	if err := inserirIngredientes(ctxTimeout, tx, f.ID, f.Ingredientes); err != nil {
		return domain.FichaTecnica{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.FichaTecnica{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	return f, nil
}

// BuscarPorID busca a ficha com seus ingredientes.
func (r *FichaRepository) BuscarPorID(ctx context.Context, id string) (domain.FichaTecnica, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var f domain.FichaTecnica
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+colunasFicha+` FROM fichas_tecnicas WHERE id = $1`, id).Scan(
		&f.ID, &f.Nome, &f.Descricao, &f.Rendimento, &f.UnidadeRendimento, &f.Ativa, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.FichaTecnica{}, errors.NewNotFoundError(fmt.Sprintf("Ficha técnica %s não encontrada.", id))
	}
	if err != nil {
		return domain.FichaTecnica{}, errors.NewDBError("Falha ao buscar ficha técnica", err)
	}

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT id, ficha_id, produto_id, quantidade, COALESCE(observacoes, '')
        FROM ingredientes_ficha WHERE ficha_id = $1 ORDER BY id`, id)
	if err != nil {
		return domain.FichaTecnica{}, errors.NewDBError("Falha ao buscar ingredientes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing domain.IngredienteFicha
		if err := rows.Scan(&ing.ID, &ing.FichaID, &ing.ProdutoID, &ing.Quantidade, &ing.Observacoes); err != nil {
			return domain.FichaTecnica{}, errors.NewDBError("Falha ao ler ingrediente", err)
		}
		f.Ingredientes = append(f.Ingredientes, ing)
	}
	if err := rows.Err(); err != nil {
		return domain.FichaTecnica{}, errors.NewDBError("Falha ao iterar ingredientes", err)
	}

	return f, nil
}

// Listar retorna os cabeçalhos das fichas.
func (r *FichaRepository) Listar(ctx context.Context, somenteAtivas bool) ([]domain.FichaTecnica, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunasFicha + ` FROM fichas_tecnicas`
	if somenteAtivas {
		query += ` WHERE ativa = TRUE`
	}
	query += ` ORDER BY nome`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar fichas técnicas", err)
	}
	defer rows.Close()

	var lista []domain.FichaTecnica
	for rows.Next() {
		var f domain.FichaTecnica
		err := rows.Scan(&f.ID, &f.Nome, &f.Descricao, &f.Rendimento, &f.UnidadeRendimento,
			&f.Ativa, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler ficha técnica", err)
		}
		lista = append(lista, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar fichas técnicas", err)
	}

	return lista, nil
}

// Atualizar grava o cabeçalho e substitui os ingredientes na mesma transação.
func (r *FichaRepository) Atualizar(ctx context.Context, f domain.FichaTecnica) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const headerSQL = `
        UPDATE fichas_tecnicas
        SET nome = $1, descricao = $2, rendimento = $3, unidade_rendimento = $4, ativa = $5, updated_at = $6
        WHERE id = $7`

	result, err := tx.ExecContext(ctxTimeout, headerSQL,
		f.Nome, f.Descricao, f.Rendimento, f.UnidadeRendimento, f.Ativa, time.Now(), f.ID)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar ficha técnica", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Ficha técnica %s não encontrada.", f.ID))
	}

	if _, err = tx.ExecContext(ctxTimeout, `DELETE FROM ingredientes_ficha WHERE ficha_id = $1`, f.ID); err != nil {
		return errors.NewDBError("Falha ao remover ingredientes antigos", err)
	}

	if err := inserirIngredientes(ctxTimeout, tx, f.ID, f.Ingredientes); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.NewDBError("Falha ao commitar transação", err)
	}

	return nil
}

// Excluir remove a ficha; os ingredientes caem por cascata.
func (r *FichaRepository) Excluir(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM fichas_tecnicas WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao excluir ficha técnica", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Ficha técnica %s não encontrada.", id))
	}

	return nil
}

func inserirIngredientes(ctx context.Context, tx *sql.Tx, fichaID string, ingredientes []domain.IngredienteFicha) error {
	const query = `
        INSERT INTO ingredientes_ficha (id, ficha_id, produto_id, quantidade, observacoes)
        VALUES ($1,$2,$3,$4,$5)`

	for _, ing := range ingredientes {
		_, err := tx.ExecContext(ctx, query, ing.ID, fichaID, ing.ProdutoID, ing.Quantidade, ing.Observacoes)
		if err != nil {
			return errors.NewDBError("Falha ao inserir ingredientes", err)
		}
	}
	return nil
}
