package dashboardservice_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/cache"
	"restoque/internal/pkg/logger"
	"restoque/internal/service/dashboardservice"
)

// MockDashboardRepository é uma implementação mock da interface DashboardRepository
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Resumo(ctx context.Context) (domain.ResumoDashboard, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ResumoDashboard), args.Error(1)
}

func (m *MockDashboardRepository) PercentualConclusao(ctx context.Context, solicitacaoID string) (int, error) {
	args := m.Called(ctx, solicitacaoID)
	return args.Int(0), args.Error(1)
}

// MockCacheClient é uma implementação mock da interface cache.Client
type MockCacheClient struct {
	mock.Mock
}

func (m *MockCacheClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheClient) GetInt(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheClient) Incr(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheClient) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func novoService(repo *MockDashboardRepository, cacheClient *MockCacheClient) *dashboardservice.Service {
	return dashboardservice.NewService(repo, cacheClient, 30*time.Second, logger.NewLogger("debug"))
}

// TestResumo_Success_CacheHit testa que a visão em cache evita a agregação.
func TestResumo_Success_CacheHit(t *testing.T) {
	mockRepo := new(MockDashboardRepository)
	mockCache := new(MockCacheClient)
	svc := novoService(mockRepo, mockCache)

	esperado := domain.ResumoDashboard{SolicitacoesPendentes: 4, ItensEmSeparacao: 2, ConcluidasHoje: 1, PercentualGeral: 60}
	data, _ := json.Marshal(esperado)

	mockCache.On("Get", mock.Anything, "dashboard:resumo").Return(string(data), nil)

	resumo := svc.Resumo(context.Background())

	assert.Equal(t, esperado, resumo)
	mockRepo.AssertNotCalled(t, "Resumo")
}

// TestResumo_Success_CacheMiss testa a agregação direta e o repovoamento
// da visão em cache.
func TestResumo_Success_CacheMiss(t *testing.T) {
	mockRepo := new(MockDashboardRepository)
	mockCache := new(MockCacheClient)
	svc := novoService(mockRepo, mockCache)

	esperado := domain.ResumoDashboard{SolicitacoesPendentes: 7, PercentualGeral: 25}

	mockCache.On("Get", mock.Anything, "dashboard:resumo").Return("", cache.ErrCacheMiss)
	mockRepo.On("Resumo", mock.Anything).Return(esperado, nil)
	mockCache.On("Set", mock.Anything, "dashboard:resumo", mock.Anything, 30*time.Second).Return(nil)

	resumo := svc.Resumo(context.Background())

	assert.Equal(t, esperado, resumo)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestResumo_Success_DegradaParaZeros testa que falha de consulta degrada
// os números para zero em vez de propagar erro.
func TestResumo_Success_DegradaParaZeros(t *testing.T) {
	mockRepo := new(MockDashboardRepository)
	mockCache := new(MockCacheClient)
	svc := novoService(mockRepo, mockCache)

	mockCache.On("Get", mock.Anything, "dashboard:resumo").Return("", cache.ErrCacheMiss)
	mockRepo.On("Resumo", mock.Anything).Return(domain.ResumoDashboard{}, errors.New("connection refused"))

	resumo := svc.Resumo(context.Background())

	assert.Equal(t, domain.ResumoDashboard{}, resumo)
	mockCache.AssertNotCalled(t, "Set")
}

// TestPercentualConclusao_Success testa o caminho normal.
func TestPercentualConclusao_Success(t *testing.T) {
	mockRepo := new(MockDashboardRepository)
	mockCache := new(MockCacheClient)
	svc := novoService(mockRepo, mockCache)

	id := uuid.New().String()
	mockRepo.On("PercentualConclusao", mock.Anything, id).Return(67, nil)

	pct, err := svc.PercentualConclusao(context.Background(), id)

	assert.NoError(t, err)
	assert.Equal(t, 67, pct)
	mockRepo.AssertExpectations(t)
}

// TestPercentualConclusao_Success_DegradaParaZero testa que falha de
// consulta degrada o percentual para zero sem erro.
func TestPercentualConclusao_Success_DegradaParaZero(t *testing.T) {
	mockRepo := new(MockDashboardRepository)
	mockCache := new(MockCacheClient)
	svc := novoService(mockRepo, mockCache)

	id := uuid.New().String()
	mockRepo.On("PercentualConclusao", mock.Anything, id).Return(0, errors.New("timeout"))

	pct, err := svc.PercentualConclusao(context.Background(), id)

	assert.NoError(t, err)
	assert.Equal(t, 0, pct)
}

// TestPercentualConclusao_Fail_IDInvalido testa que ID inválido ainda é
// erro de validação, não degradação.
func TestPercentualConclusao_Fail_IDInvalido(t *testing.T) {
	mockRepo := new(MockDashboardRepository)
	mockCache := new(MockCacheClient)
	svc := novoService(mockRepo, mockCache)

	_, err := svc.PercentualConclusao(context.Background(), "abc")

	assert.Error(t, err)
	appErr, ok := err.(apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Category())
	mockRepo.AssertNotCalled(t, "PercentualConclusao")
}
