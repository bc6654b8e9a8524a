package pracarepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restoque/internal/domain"
	"restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// PracaRepository acessa a relação de praças (destinos das solicitações).
type PracaRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewPracaRepository cria e retorna uma nova instância do Repositório.
func NewPracaRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *PracaRepository {
	return &PracaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Criar persiste uma nova praça.
func (r *PracaRepository) Criar(ctx context.Context, p domain.Praca) (domain.Praca, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO pracas (id, nome, descricao, ativa, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		p.ID, p.Nome, p.Descricao, p.Ativa, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir praça no DB.", err)
		return domain.Praca{}, errors.NewDBError("Falha ao inserir praça", err)
	}

	return p, nil
}

// BuscarPorID busca uma praça pelo ID.
func (r *PracaRepository) BuscarPorID(ctx context.Context, id string) (domain.Praca, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, nome, descricao, ativa, created_at, updated_at FROM pracas WHERE id = $1`

	var p domain.Praca
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&p.ID, &p.Nome, &p.Descricao, &p.Ativa, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.Praca{}, errors.NewNotFoundError(fmt.Sprintf("Praça %s não encontrada.", id))
	}
	if err != nil {
		return domain.Praca{}, errors.NewDBError("Falha ao buscar praça", err)
	}

	return p, nil
}

// Listar retorna todas as praças.
func (r *PracaRepository) Listar(ctx context.Context) ([]domain.Praca, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT id, nome, descricao, ativa, created_at, updated_at FROM pracas ORDER BY nome`)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar praças", err)
	}
	defer rows.Close()

	var lista []domain.Praca
	for rows.Next() {
		var p domain.Praca
		if err := rows.Scan(&p.ID, &p.Nome, &p.Descricao, &p.Ativa, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.NewDBError("Falha ao ler praça", err)
		}
		lista = append(lista, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar praças", err)
	}

	return lista, nil
}

// Atualizar grava os dados da praça.
func (r *PracaRepository) Atualizar(ctx context.Context, p domain.Praca) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE pracas SET nome = $1, descricao = $2, ativa = $3, updated_at = $4 WHERE id = $5`

	result, err := r.DB.ExecContext(ctxTimeout, query, p.Nome, p.Descricao, p.Ativa, time.Now(), p.ID)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar praça", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Praça %s não encontrada.", p.ID))
	}

	return nil
}

// Excluir remove a praça, mas somente se não houver solicitações abertas
// referenciando-a. A condição entra no próprio DELETE.
func (r *PracaRepository) Excluir(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        DELETE FROM pracas
        WHERE id = $1
          AND NOT EXISTS (
              SELECT 1 FROM solicitacoes
              WHERE praca_id = $1 AND status IN ($2, $3)
          )`

	result, err := r.DB.ExecContext(ctxTimeout, query, id,
		domain.SolicitacaoPendente, domain.SolicitacaoEntregue)
	if err != nil {
		return errors.NewDBError("Falha ao excluir praça", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError("Praça não encontrada ou com solicitações em aberto.")
	}

	return nil
}
