package pracaservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// PracaRepository define o contrato que o Serviço de Praças espera da
// camada de Persistência.
type PracaRepository interface {
	Criar(ctx context.Context, p domain.Praca) (domain.Praca, error)
	BuscarPorID(ctx context.Context, id string) (domain.Praca, error)
	Listar(ctx context.Context) ([]domain.Praca, error)
	Atualizar(ctx context.Context, p domain.Praca) error
	Excluir(ctx context.Context, id string) error
}

// Service implementa o CRUD de praças (destinos das solicitações).
type Service struct {
	repo   PracaRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Praças.
func NewService(repo PracaRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Criar cria uma nova praça após validações de negócio.
func (s *Service) Criar(ctx context.Context, praca domain.Praca) (domain.Praca, error) {
	if err := validarNome(praca.Nome); err != nil {
		return domain.Praca{}, err
	}

	agora := time.Now()
	praca.ID = uuid.New().String()
	praca.Ativa = true
	praca.CreatedAt = agora
	praca.UpdatedAt = agora

	criada, err := s.repo.Criar(ctx, praca)
	if err != nil {
		s.logger.Error("Falha ao criar praça.", err)
		return domain.Praca{}, err
	}

	s.logger.Info("Praça criada.", map[string]interface{}{"id": criada.ID, "nome": criada.Nome})
	return criada, nil
}

// BuscarPorID busca uma praça pelo ID.
func (s *Service) BuscarPorID(ctx context.Context, id string) (domain.Praca, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Praca{}, apperror.NewValidationError("O ID da praça deve ser um UUID válido.")
	}

	return s.repo.BuscarPorID(ctx, id)
}

// Listar retorna todas as praças cadastradas.
func (s *Service) Listar(ctx context.Context) ([]domain.Praca, error) {
	return s.repo.Listar(ctx)
}

// Atualizar grava os dados da praça.
func (s *Service) Atualizar(ctx context.Context, praca domain.Praca) error {
	if _, err := uuid.Parse(praca.ID); err != nil {
		return apperror.NewValidationError("O ID da praça deve ser um UUID válido.")
	}
	if err := validarNome(praca.Nome); err != nil {
		return err
	}

	if err := s.repo.Atualizar(ctx, praca); err != nil {
		return err
	}

	s.logger.Info("Praça atualizada.", map[string]interface{}{"id": praca.ID})
	return nil
}

// Excluir remove a praça; o repositório rejeita a exclusão se houver
// solicitações em aberto referenciando-a.
func (s *Service) Excluir(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da praça deve ser um UUID válido.")
	}

	if err := s.repo.Excluir(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Praça excluída.", map[string]interface{}{"id": id})
	return nil
}

func validarNome(nome string) error {
	if strings.TrimSpace(nome) == "" {
		return apperror.NewValidationError("O nome da praça não pode ser vazio.")
	}
	return nil
}
