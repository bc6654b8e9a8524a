package separacao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/middleware"
	"restoque/internal/service/separacaoservice"
)

// SeparacaoService define o contrato que o Handler espera da camada de Serviço.
type SeparacaoService interface {
	IniciarSeparacao(ctx context.Context, itemID, userID string) error
	ConcluirSeparacao(ctx context.Context, input separacaoservice.ConcluirSeparacaoInput) error
	CancelarSeparacao(ctx context.Context, itemID string) error
	IniciarEntrega(ctx context.Context, itemID, userID string) error
	ConcluirEntrega(ctx context.Context, input separacaoservice.ConcluirEntregaInput) error
}

// Handler agrupa os métodos de Handler do fluxo de separação/entrega.
type Handler struct {
	Service SeparacaoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SeparacaoService, log logger.Logger) *Handler {
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

// usuarioDaRequisicao extrai o id do usuário atuante resolvido pelo
// middleware de autenticação.
func (h *Handler) usuarioDaRequisicao(r *http.Request) (string, error) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		return "", apperror.NewUnauthorizedError("Usuário atuante não resolvido.")
	}
	return claims.UserID, nil
}

// IniciarSeparacaoHandler lida com POST /v1/itens/{id}/separacao/iniciar.
func (h *Handler) IniciarSeparacaoHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.usuarioDaRequisicao(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	itemID := r.PathValue("id")
	err = h.Service.IniciarSeparacao(r.Context(), itemID, userID)
	h.handleServiceResponse(w, r, map[string]string{"item_id": itemID, "status_separacao": string(domain.SeparacaoSeparando)}, err, http.StatusOK)
}

// ConcluirSeparacaoHandler lida com POST /v1/itens/{id}/separacao/concluir.
func (h *Handler) ConcluirSeparacaoHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.usuarioDaRequisicao(r); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var input separacaoservice.ConcluirSeparacaoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}
	input.ItemID = r.PathValue("id")

	err := h.Service.ConcluirSeparacao(r.Context(), input)
	h.handleServiceResponse(w, r, map[string]string{"item_id": input.ItemID, "status_separacao": string(input.Resultado)}, err, http.StatusOK)
}

// CancelarSeparacaoHandler lida com POST /v1/itens/{id}/separacao/cancelar.
func (h *Handler) CancelarSeparacaoHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.usuarioDaRequisicao(r); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	itemID := r.PathValue("id")
	err := h.Service.CancelarSeparacao(r.Context(), itemID)
	h.handleServiceResponse(w, r, map[string]string{"item_id": itemID, "status_separacao": string(domain.SeparacaoAguardando)}, err, http.StatusOK)
}

// IniciarEntregaHandler lida com POST /v1/itens/{id}/entrega/iniciar.
func (h *Handler) IniciarEntregaHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.usuarioDaRequisicao(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	itemID := r.PathValue("id")
	err = h.Service.IniciarEntrega(r.Context(), itemID, userID)
	h.handleServiceResponse(w, r, map[string]string{"item_id": itemID, "status_entrega": string(domain.EntregaEmEntrega)}, err, http.StatusOK)
}

// ConcluirEntregaHandler lida com POST /v1/itens/{id}/entrega/concluir.
func (h *Handler) ConcluirEntregaHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.usuarioDaRequisicao(r); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var input separacaoservice.ConcluirEntregaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}
	input.ItemID = r.PathValue("id")

	err := h.Service.ConcluirEntrega(r.Context(), input)
	h.handleServiceResponse(w, r, map[string]string{"item_id": input.ItemID, "status_entrega": string(input.Resultado)}, err, http.StatusOK)
}
