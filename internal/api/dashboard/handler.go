package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// DashboardService define o contrato que o Handler espera da camada de Serviço.
type DashboardService interface {
	Resumo(ctx context.Context) domain.ResumoDashboard
	PercentualConclusao(ctx context.Context, solicitacaoID string) (int, error)
}

// Handler agrupa os métodos de Handler do painel operacional.
type Handler struct {
	Service DashboardService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc DashboardService, log logger.Logger) *Handler {
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

// ResumoHandler lida com GET /v1/dashboard/resumo.
func (h *Handler) ResumoHandler(w http.ResponseWriter, r *http.Request) {
	resumo := h.Service.Resumo(r.Context())
	h.handleServiceResponse(w, r, resumo, nil, http.StatusOK)
}

// PercentualHandler lida com GET /v1/solicitacoes/{id}/percentual.
func (h *Handler) PercentualHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	percentual, err := h.Service.PercentualConclusao(r.Context(), id)
	h.handleServiceResponse(w, r, map[string]interface{}{"solicitacao_id": id, "percentual": percentual}, err, http.StatusOK)
}
