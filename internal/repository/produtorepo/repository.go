package produtorepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"restoque/internal/domain"
	"restoque/internal/errors"
	"restoque/internal/pkg/cache"
	"restoque/internal/pkg/logger"
)

// Chave de cache para produtos individuais.
const produtoCacheKey = "produto:%s"

// TTL do cache de produto. O catálogo muda pouco; leituras dominam.
const produtoCacheTTL = 5 * time.Minute

// ProdutoRepository acessa o catálogo de produtos com estratégia
// Cache-Aside nas leituras por ID.
type ProdutoRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewProdutoRepository cria e retorna uma nova instância do Repositório.
func NewProdutoRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *ProdutoRepository {
	return &ProdutoRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const colunasProduto = `id, codigo, nome, descricao, unidade, categoria, estoque_minimo, ativo, created_at, updated_at`

// Criar persiste um novo produto.
func (r *ProdutoRepository) Criar(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO produtos (` + colunasProduto + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		p.ID, p.Codigo, p.Nome, p.Descricao, p.Unidade, p.Categoria,
		p.EstoqueMinimo, p.Ativo, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao inserir produto", err)
	}

	return p, nil
}

// BuscarPorID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProdutoRepository) BuscarPorID(ctx context.Context, id string) (domain.Produto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(produtoCacheKey, id)
	var p domain.Produto

	// 1. Tentar o cache; qualquer falha vira cache miss.
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &p) == nil {
			return p, nil
		}
	}

	// 2. Fonte primária.
	const query = `SELECT ` + colunasProduto + ` FROM produtos WHERE id = $1`

	err = r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&p.ID, &p.Codigo, &p.Nome, &p.Descricao, &p.Unidade, &p.Categoria,
		&p.EstoqueMinimo, &p.Ativo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Produto{}, errors.NewNotFoundError(fmt.Sprintf("Produto %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao buscar produto", err)
	}

	// 3. Popular o cache para as próximas leituras (best effort).
	if data, jsonErr := json.Marshal(p); jsonErr == nil {
		r.Cache.Set(ctxTimeout, key, string(data), produtoCacheTTL)
	}

	return p, nil
}

// Listar retorna a página pedida do catálogo com os filtros aplicados.
func (r *ProdutoRepository) Listar(ctx context.Context, filtro domain.FiltroProduto) ([]domain.Produto, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filtro.Nome != "" {
		where += fmt.Sprintf(" AND nome ILIKE $%d", idx)
		args = append(args, "%"+filtro.Nome+"%")
		idx++
	}
	if filtro.Categoria != "" {
		where += fmt.Sprintf(" AND categoria = $%d", idx)
		args = append(args, filtro.Categoria)
		idx++
	}
	if filtro.SomenteAtivos {
		where += " AND ativo = TRUE"
	}

	var total int
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM produtos`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDBError("Falha ao contar produtos", err)
	}

	query := `SELECT ` + colunasProduto + ` FROM produtos` + where +
		fmt.Sprintf(" ORDER BY nome ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filtro.Limit, (filtro.Page-1)*filtro.Limit)

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	var lista []domain.Produto
	for rows.Next() {
		var p domain.Produto
		err := rows.Scan(
			&p.ID, &p.Codigo, &p.Nome, &p.Descricao, &p.Unidade, &p.Categoria,
			&p.EstoqueMinimo, &p.Ativo, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, errors.NewDBError("Falha ao ler produto", err)
		}
		lista = append(lista, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDBError("Falha ao iterar produtos", err)
	}

	return lista, total, nil
}

// Atualizar grava o produto e invalida a entrada de cache.
func (r *ProdutoRepository) Atualizar(ctx context.Context, p domain.Produto) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE produtos
        SET codigo = $1, nome = $2, descricao = $3, unidade = $4, categoria = $5,
            estoque_minimo = $6, ativo = $7, updated_at = $8
        WHERE id = $9`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		p.Codigo, p.Nome, p.Descricao, p.Unidade, p.Categoria,
		p.EstoqueMinimo, p.Ativo, time.Now(), p.ID,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto %s não encontrado.", p.ID))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(produtoCacheKey, p.ID))
	return nil
}

// Desativar faz a exclusão lógica do produto (Ativo = false). O razão de
// movimentações referencia produtos, então nunca é feita exclusão física.
func (r *ProdutoRepository) Desativar(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE produtos SET ativo = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return errors.NewDBError("Falha ao desativar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto %s não encontrado.", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(produtoCacheKey, id))
	return nil
}
