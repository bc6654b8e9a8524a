package estoque

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/service/ajusteservice"
)

// AjusteService define o contrato que o Handler espera da camada de Serviço.
type AjusteService interface {
	AplicarAjustes(ctx context.Context, solicitacaoID string) (ajusteservice.ResultadoAjuste, error)
	RegistrarMovimentacao(ctx context.Context, input ajusteservice.RegistrarMovimentacaoInput) (domain.MovimentacaoEstoque, error)
	ListarMovimentacoes(ctx context.Context, filtro domain.FiltroMovimentacao) (ajusteservice.ListaMovimentacoes, error)
}

// Handler agrupa os métodos de Handler de movimentações de estoque.
type Handler struct {
	Service AjusteService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AjusteService, log logger.Logger) *Handler {
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

// AplicarAjustesHandler lida com POST /v1/solicitacoes/{id}/ajustes.
func (h *Handler) AplicarAjustesHandler(w http.ResponseWriter, r *http.Request) {
	resultado, err := h.Service.AplicarAjustes(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, resultado, err, http.StatusCreated)
}

// RegistrarHandler lida com POST /v1/movimentacoes.
func (h *Handler) RegistrarHandler(w http.ResponseWriter, r *http.Request) {
	var input ajusteservice.RegistrarMovimentacaoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	mov, err := h.Service.RegistrarMovimentacao(r.Context(), input)
	h.handleServiceResponse(w, r, mov, err, http.StatusCreated)
}

// ListarHandler lida com GET /v1/movimentacoes.
func (h *Handler) ListarHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filtro := domain.FiltroMovimentacao{
		ProdutoID: q.Get("produto_id"),
		Tipo:      domain.TipoMovimentacao(q.Get("tipo")),
		Page:      page,
		Limit:     limit,
	}

	if inicio := q.Get("inicio"); inicio != "" {
		t, err := time.Parse(time.RFC3339, inicio)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Parâmetro 'inicio' inválido. Use o formato RFC3339."), http.StatusBadRequest)
			return
		}
		filtro.Inicio = &t
	}
	if fim := q.Get("fim"); fim != "" {
		t, err := time.Parse(time.RFC3339, fim)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Parâmetro 'fim' inválido. Use o formato RFC3339."), http.StatusBadRequest)
			return
		}
		filtro.Fim = &t
	}

	lista, err := h.Service.ListarMovimentacoes(r.Context(), filtro)
	h.handleServiceResponse(w, r, lista, err, http.StatusOK)
}
