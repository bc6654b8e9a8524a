package solicitacao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/middleware"
	"restoque/internal/service/solicitacaoservice"
)

// SolicitacaoService define o contrato que o Handler espera da camada de Serviço.
type SolicitacaoService interface {
	Criar(ctx context.Context, input solicitacaoservice.SolicitacaoInput, userID string) (domain.Solicitacao, error)
	Atualizar(ctx context.Context, id string, input solicitacaoservice.SolicitacaoInput) error
	Excluir(ctx context.Context, id string) error
	Cancelar(ctx context.Context, id string) error
	Buscar(ctx context.Context, id string) (solicitacaoservice.Detalhe, error)
	Listar(ctx context.Context, filtro domain.FiltroSolicitacao) (solicitacaoservice.Lista, error)
}

// Handler agrupa os métodos de Handler de solicitações.
type Handler struct {
	Service SolicitacaoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SolicitacaoService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}
	if fields := apperror.FieldDetails(err); len(fields) > 0 {
		errorResponse["fields"] = fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// CriarHandler lida com POST /v1/solicitacoes.
// @Summary Cria uma nova solicitação
// @Description Cria uma solicitação de movimentação com seus itens, todos em "aguardando".
// @Tags solicitacoes
// @Accept json
// @Produce json
// @Param solicitacao body solicitacaoservice.SolicitacaoInput true "Dados da solicitação"
// @Success 201 {object} domain.Solicitacao "Solicitação criada com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Praça de destino não encontrada"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /solicitacoes [post]
func (h *Handler) CriarHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Usuário atuante não resolvido."), http.StatusOK)
		return
	}

	var input solicitacaoservice.SolicitacaoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	criada, err := h.Service.Criar(r.Context(), input, claims.UserID)
	h.handleServiceResponse(w, r, criada, err, http.StatusCreated)
}

// ListarHandler lida com GET /v1/solicitacoes.
// @Summary Lista as solicitações
// @Description Fila de trabalho paginada, em ordem de prioridade calculada decrescente e criação mais antiga primeiro.
// @Tags solicitacoes
// @Produce json
// @Param status query string false "Filtra por status (pendente, entregue, confirmada, cancelada)"
// @Param praca_id query string false "Filtra por praça de destino"
// @Param tipo query string false "Filtra por tipo de movimentação (entrada, saida)"
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Tamanho da página (padrão 20, máximo 100)"
// @Success 200 {object} solicitacaoservice.Lista "Página da fila de trabalho"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /solicitacoes [get]
func (h *Handler) ListarHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filtro := domain.FiltroSolicitacao{
		Status:  domain.StatusSolicitacao(q.Get("status")),
		PracaID: q.Get("praca_id"),
		Tipo:    domain.TipoMovimentacao(q.Get("tipo")),
		Page:    page,
		Limit:   limit,
	}

	lista, err := h.Service.Listar(r.Context(), filtro)
	h.handleServiceResponse(w, r, lista, err, http.StatusOK)
}

// BuscarHandler lida com GET /v1/solicitacoes/{id}.
// @Summary Obtém uma solicitação por ID
// @Description Retorna a solicitação com seus itens e a praça de destino.
// @Tags solicitacoes
// @Produce json
// @Param id path string true "ID da solicitação"
// @Success 200 {object} solicitacaoservice.Detalhe "Detalhe da solicitação"
// @Failure 404 {object} domain.ErrorResponse "Solicitação não encontrada"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /solicitacoes/{id} [get]
func (h *Handler) BuscarHandler(w http.ResponseWriter, r *http.Request) {
	detalhe, err := h.Service.Buscar(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, detalhe, err, http.StatusOK)
}

// AtualizarHandler lida com PUT /v1/solicitacoes/{id}.
// @Summary Atualiza uma solicitação pendente
// @Description Substitui cabeçalho e itens. Permitido apenas enquanto o status é "pendente".
// @Tags solicitacoes
// @Accept json
// @Produce json
// @Param id path string true "ID da solicitação"
// @Param solicitacao body solicitacaoservice.SolicitacaoInput true "Novos dados da solicitação"
// @Success 200 {object} map[string]string "Solicitação atualizada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "A solicitação não está mais pendente"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /solicitacoes/{id} [put]
func (h *Handler) AtualizarHandler(w http.ResponseWriter, r *http.Request) {
	var input solicitacaoservice.SolicitacaoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	err := h.Service.Atualizar(r.Context(), id, input)
	h.handleServiceResponse(w, r, map[string]string{"id": id}, err, http.StatusOK)
}

// ExcluirHandler lida com DELETE /v1/solicitacoes/{id}.
// @Summary Exclui uma solicitação
// @Description Remove a solicitação e seus itens. Permitido apenas enquanto todos os itens estão "aguardando".
// @Tags solicitacoes
// @Param id path string true "ID da solicitação"
// @Success 204 "Solicitação excluída"
// @Failure 409 {object} domain.ErrorResponse "Há itens com separação iniciada"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /solicitacoes/{id} [delete]
func (h *Handler) ExcluirHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Excluir(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

// CancelarHandler lida com POST /v1/solicitacoes/{id}/cancelar.
// @Summary Cancela uma solicitação pendente
// @Description Marca a solicitação como "cancelada". Permitido apenas enquanto pendente.
// @Tags solicitacoes
// @Produce json
// @Param id path string true "ID da solicitação"
// @Success 200 {object} map[string]string "Solicitação cancelada"
// @Failure 409 {object} domain.ErrorResponse "A solicitação não está mais pendente"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /solicitacoes/{id}/cancelar [post]
func (h *Handler) CancelarHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.Service.Cancelar(r.Context(), id)
	h.handleServiceResponse(w, r, map[string]string{"id": id, "status": string(domain.SolicitacaoCancelada)}, err, http.StatusOK)
}
