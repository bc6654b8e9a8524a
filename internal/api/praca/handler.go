package praca

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
)

// PracaService define o contrato que o Handler espera da camada de Serviço.
type PracaService interface {
	Criar(ctx context.Context, praca domain.Praca) (domain.Praca, error)
	BuscarPorID(ctx context.Context, id string) (domain.Praca, error)
	Listar(ctx context.Context) ([]domain.Praca, error)
	Atualizar(ctx context.Context, praca domain.Praca) error
	Excluir(ctx context.Context, id string) error
}

// Handler agrupa os métodos de Handler das praças de destino.
type Handler struct {
	Service PracaService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc PracaService, log logger.Logger) *Handler {
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

// CriarHandler lida com POST /v1/pracas.
func (h *Handler) CriarHandler(w http.ResponseWriter, r *http.Request) {
	var praca domain.Praca
	if err := json.NewDecoder(r.Body).Decode(&praca); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	criada, err := h.Service.Criar(r.Context(), praca)
	h.handleServiceResponse(w, r, criada, err, http.StatusCreated)
}

// BuscarHandler lida com GET /v1/pracas/{id}.
func (h *Handler) BuscarHandler(w http.ResponseWriter, r *http.Request) {
	praca, err := h.Service.BuscarPorID(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, praca, err, http.StatusOK)
}

// ListarHandler lida com GET /v1/pracas.
func (h *Handler) ListarHandler(w http.ResponseWriter, r *http.Request) {
	pracas, err := h.Service.Listar(r.Context())
	h.handleServiceResponse(w, r, pracas, err, http.StatusOK)
}

// AtualizarHandler lida com PUT /v1/pracas/{id}.
func (h *Handler) AtualizarHandler(w http.ResponseWriter, r *http.Request) {
	var praca domain.Praca
	if err := json.NewDecoder(r.Body).Decode(&praca); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}
	praca.ID = r.PathValue("id")

	err := h.Service.Atualizar(r.Context(), praca)
	h.handleServiceResponse(w, r, map[string]string{"id": praca.ID}, err, http.StatusOK)
}

// ExcluirHandler lida com DELETE /v1/pracas/{id}.
func (h *Handler) ExcluirHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Excluir(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
