package fichaservice

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

// FichaRepository define o contrato que o Serviço de Fichas Técnicas
// espera da camada de Persistência.
type FichaRepository interface {
	Criar(ctx context.Context, f domain.FichaTecnica) (domain.FichaTecnica, error)
	BuscarPorID(ctx context.Context, id string) (domain.FichaTecnica, error)
	Listar(ctx context.Context, somenteAtivas bool) ([]domain.FichaTecnica, error)
	Atualizar(ctx context.Context, f domain.FichaTecnica) error
	Excluir(ctx context.Context, id string) error
}

// Service implementa o CRUD de fichas técnicas (receitas padronizadas).
type Service struct {
	repo      FichaRepository
	validator *validation.Validator
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Fichas.
func NewService(repo FichaRepository, validator *validation.Validator, logger logger.Logger) *Service {
	return &Service{repo: repo, validator: validator, logger: logger}
}

// IngredienteInput é uma linha de ingrediente no payload.
type IngredienteInput struct {
	ProdutoID   string          `json:"produto_id" validate:"required,uuid"`
	Quantidade  decimal.Decimal `json:"quantidade"`
	Observacoes string          `json:"observacoes"`
}

// FichaInput é o payload de criação/edição de ficha técnica.
type FichaInput struct {
	Nome              string             `json:"nome" validate:"required"`
	Descricao         string             `json:"descricao"`
	Rendimento        decimal.Decimal    `json:"rendimento"`
	UnidadeRendimento string             `json:"unidade_rendimento" validate:"required"`
	Ingredientes      []IngredienteInput `json:"ingredientes" validate:"required,min=1,dive"`
}

// Criar valida e persiste a ficha com seus ingredientes.
func (s *Service) Criar(ctx context.Context, input FichaInput) (domain.FichaTecnica, error) {
	f, err := s.montar(input)
	if err != nil {
		return domain.FichaTecnica{}, err
	}

	agora := time.Now()
	f.ID = uuid.New().String()
	f.Ativa = true
	f.CreatedAt = agora
	f.UpdatedAt = agora
	for i := range f.Ingredientes {
		f.Ingredientes[i].ID = uuid.New().String()
		f.Ingredientes[i].FichaID = f.ID
	}

	criada, err := s.repo.Criar(ctx, f)
	if err != nil {
		s.logger.Error("Falha ao criar ficha técnica.", err)
		return domain.FichaTecnica{}, err
	}

	s.logger.Info("Ficha técnica criada.", map[string]interface{}{"id": criada.ID, "nome": criada.Nome})
	return criada, nil
}

// BuscarPorID retorna a ficha com seus ingredientes.
func (s *Service) BuscarPorID(ctx context.Context, id string) (domain.FichaTecnica, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.FichaTecnica{}, apperror.NewValidationError("O ID da ficha deve ser um UUID válido.")
	}

	return s.repo.BuscarPorID(ctx, id)
}

// Listar retorna os cabeçalhos das fichas.
func (s *Service) Listar(ctx context.Context, somenteAtivas bool) ([]domain.FichaTecnica, error) {
	return s.repo.Listar(ctx, somenteAtivas)
}

// Atualizar substitui cabeçalho e ingredientes da ficha.
func (s *Service) Atualizar(ctx context.Context, id string, input FichaInput) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da ficha deve ser um UUID válido.")
	}

	f, err := s.montar(input)
	if err != nil {
		return err
	}

	f.ID = id
	f.Ativa = true
	for i := range f.Ingredientes {
		f.Ingredientes[i].ID = uuid.New().String()
		f.Ingredientes[i].FichaID = id
	}

	if err := s.repo.Atualizar(ctx, f); err != nil {
		return err
	}

	s.logger.Info("Ficha técnica atualizada.", map[string]interface{}{"id": id})
	return nil
}

// Excluir remove a ficha e seus ingredientes.
func (s *Service) Excluir(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da ficha deve ser um UUID válido.")
	}

	if err := s.repo.Excluir(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Ficha técnica excluída.", map[string]interface{}{"id": id})
	return nil
}

func (s *Service) montar(input FichaInput) (domain.FichaTecnica, error) {
	if err := s.validator.Struct(input); err != nil {
		return domain.FichaTecnica{}, err
	}
	if !input.Rendimento.IsPositive() {
		return domain.FichaTecnica{}, apperror.NewValidationError("O rendimento deve ser maior que zero.")
	}
	for _, ing := range input.Ingredientes {
		if !ing.Quantidade.IsPositive() {
			return domain.FichaTecnica{}, apperror.NewValidationError("Todo ingrediente deve ter quantidade maior que zero.")
		}
	}

	f := domain.FichaTecnica{
		Nome:              input.Nome,
		Descricao:         input.Descricao,
		Rendimento:        input.Rendimento,
		UnidadeRendimento: input.UnidadeRendimento,
	}
	for _, ing := range input.Ingredientes {
		f.Ingredientes = append(f.Ingredientes, domain.IngredienteFicha{
			ProdutoID:   ing.ProdutoID,
			Quantidade:  ing.Quantidade,
			Observacoes: ing.Observacoes,
		})
	}

	return f, nil
}
