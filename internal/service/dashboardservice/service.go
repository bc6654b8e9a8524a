package dashboardservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/cache"
	"restoque/internal/pkg/logger"
)

// Chave do resumo agregado no cache.
const resumoCacheKey = "dashboard:resumo"

// DashboardRepository define o contrato de leitura dos agregados.
type DashboardRepository interface {
	Resumo(ctx context.Context) (domain.ResumoDashboard, error)
	PercentualConclusao(ctx context.Context, solicitacaoID string) (int, error)
}

// Service serve os números do painel. São caminhos de leitura best
// effort: a agregação é definida uma vez no repositório e o cache Redis
// na frente dela faz o papel da visão pré-computada opcional. Falha de
// consulta degrada o valor exibido para zero em vez de bloquear a página.
type Service struct {
	repo     DashboardRepository
	cache    cache.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Dashboard.
func NewService(repo DashboardRepository, cacheClient cache.Client, cacheTTL time.Duration, logger logger.Logger) *Service {
	return &Service{repo: repo, cache: cacheClient, cacheTTL: cacheTTL, logger: logger}
}

// Resumo retorna os agregados do painel, do cache quando disponível.
func (s *Service) Resumo(ctx context.Context) domain.ResumoDashboard {
	var resumo domain.ResumoDashboard

	// 1. Visão pré-computada (cache). Qualquer falha vira miss.
	if cached, err := s.cache.Get(ctx, resumoCacheKey); err == nil {
		if json.Unmarshal([]byte(cached), &resumo) == nil {
			return resumo
		}
	}

	// 2. Agregação direta.
	resumo, err := s.repo.Resumo(ctx)
	if err != nil {
		s.logger.Error("Falha ao calcular resumo do painel; exibindo zeros.", err)
		return domain.ResumoDashboard{}
	}

	// 3. Repovoar a visão (best effort).
	if data, jsonErr := json.Marshal(resumo); jsonErr == nil {
		s.cache.Set(ctx, resumoCacheKey, string(data), s.cacheTTL)
	}

	return resumo
}

// PercentualConclusao retorna o percentual de itens terminais de uma
// solicitação. Erro de validação ainda é reportado; falha de consulta
// degrada para zero.
func (s *Service) PercentualConclusao(ctx context.Context, solicitacaoID string) (int, error) {
	if _, err := uuid.Parse(solicitacaoID); err != nil {
		return 0, apperror.NewValidationError("O ID da solicitação deve ser um UUID válido.")
	}

	pct, err := s.repo.PercentualConclusao(ctx, solicitacaoID)
	if err != nil {
		s.logger.Error("Falha ao calcular percentual de conclusão; exibindo zero.", err)
		return 0, nil
	}

	return pct, nil
}
