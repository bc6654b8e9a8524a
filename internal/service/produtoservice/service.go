package produtoservice

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

// ProdutoRepository define o contrato que o Serviço de Produtos espera
// da camada de Persistência.
type ProdutoRepository interface {
	Criar(ctx context.Context, p domain.Produto) (domain.Produto, error)
	BuscarPorID(ctx context.Context, id string) (domain.Produto, error)
	Listar(ctx context.Context, filtro domain.FiltroProduto) ([]domain.Produto, int, error)
	Atualizar(ctx context.Context, p domain.Produto) error
	Desativar(ctx context.Context, id string) error
}

// Service implementa o CRUD do catálogo de produtos.
type Service struct {
	repo      ProdutoRepository
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produtos.
func NewService(repo ProdutoRepository, validator *validation.Validator, logger logger.Logger) *Service {
	return &Service{repo: repo, validator: validator, logger: logger}
}

// ProdutoInput é o payload de criação/edição de produto.
type ProdutoInput struct {
	Codigo        string          `json:"codigo" validate:"required"`
	Nome          string          `json:"nome" validate:"required"`
	Descricao     string          `json:"descricao"`
	Unidade       string          `json:"unidade" validate:"required"`
	Categoria     string          `json:"categoria"`
	EstoqueMinimo decimal.Decimal `json:"estoque_minimo"`
}

// Lista é o envelope paginado do catálogo.
type Lista struct {
	Items      []domain.Produto `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
}

// Criar valida e persiste um novo produto ativo.
func (s *Service) Criar(ctx context.Context, input ProdutoInput) (domain.Produto, error) {
	if err := s.validator.Struct(input); err != nil {
		return domain.Produto{}, err
	}
	if input.EstoqueMinimo.IsNegative() {
		return domain.Produto{}, apperror.NewValidationError("O estoque mínimo não pode ser negativo.")
	}

	agora := time.Now()
	p := domain.Produto{
		ID:            uuid.New().String(),
		Codigo:        input.Codigo,
		Nome:          input.Nome,
		Descricao:     input.Descricao,
		Unidade:       input.Unidade,
		Categoria:     input.Categoria,
		EstoqueMinimo: input.EstoqueMinimo,
		Ativo:         true,
		CreatedAt:     agora,
		UpdatedAt:     agora,
	}

	criado, err := s.repo.Criar(ctx, p)
	if err != nil {
		s.logger.Error("Falha ao criar produto.", err)
		return domain.Produto{}, err
	}

	s.logger.Info("Produto criado.", map[string]interface{}{"id": criado.ID, "codigo": criado.Codigo})
	return criado, nil
}

// BuscarPorID retorna um produto do catálogo.
func (s *Service) BuscarPorID(ctx context.Context, id string) (domain.Produto, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Produto{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	return s.repo.BuscarPorID(ctx, id)
}

// Listar retorna a página pedida do catálogo.
func (s *Service) Listar(ctx context.Context, filtro domain.FiltroProduto) (Lista, error) {
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

// Atualizar grava os dados do produto.
func (s *Service) Atualizar(ctx context.Context, id string, input ProdutoInput) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	if input.EstoqueMinimo.IsNegative() {
		return apperror.NewValidationError("O estoque mínimo não pode ser negativo.")
	}

	atual, err := s.repo.BuscarPorID(ctx, id)
	if err != nil {
		return err
	}

	atual.Codigo = input.Codigo
	atual.Nome = input.Nome
	atual.Descricao = input.Descricao
	atual.Unidade = input.Unidade
	atual.Categoria = input.Categoria
	atual.EstoqueMinimo = input.EstoqueMinimo

	if err := s.repo.Atualizar(ctx, atual); err != nil {
		return err
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{"id": id})
	return nil
}

// Desativar faz a exclusão lógica do produto.
func (s *Service) Desativar(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	if err := s.repo.Desativar(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Produto desativado.", map[string]interface{}{"id": id})
	return nil
}
