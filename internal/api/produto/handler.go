package produto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"restoque/internal/domain"
	apperror "restoque/internal/errors"
	"restoque/internal/pkg/logger"
	"restoque/internal/service/produtoservice"
)

// ProdutoService define o contrato que o Handler espera da camada de Serviço.
type ProdutoService interface {
	Criar(ctx context.Context, input produtoservice.ProdutoInput) (domain.Produto, error)
	BuscarPorID(ctx context.Context, id string) (domain.Produto, error)
	Listar(ctx context.Context, filtro domain.FiltroProduto) (produtoservice.Lista, error)
	Atualizar(ctx context.Context, id string, input produtoservice.ProdutoInput) error
	Desativar(ctx context.Context, id string) error
}

// Handler agrupa os métodos de Handler do catálogo de produtos.
type Handler struct {
	Service ProdutoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProdutoService, log logger.Logger) *Handler {
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

// CriarHandler lida com POST /v1/produtos.
func (h *Handler) CriarHandler(w http.ResponseWriter, r *http.Request) {
	var input produtoservice.ProdutoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	criado, err := h.Service.Criar(r.Context(), input)
	h.handleServiceResponse(w, r, criado, err, http.StatusCreated)
}

// BuscarHandler lida com GET /v1/produtos/{id}.
func (h *Handler) BuscarHandler(w http.ResponseWriter, r *http.Request) {
	produto, err := h.Service.BuscarPorID(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, produto, err, http.StatusOK)
}

// ListarHandler lida com GET /v1/produtos.
func (h *Handler) ListarHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filtro := domain.FiltroProduto{
		Nome:          q.Get("nome"),
		Categoria:     q.Get("categoria"),
		SomenteAtivos: q.Get("incluir_inativos") != "true",
		Page:          page,
		Limit:         limit,
	}

	lista, err := h.Service.Listar(r.Context(), filtro)
	h.handleServiceResponse(w, r, lista, err, http.StatusOK)
}

// AtualizarHandler lida com PUT /v1/produtos/{id}.
func (h *Handler) AtualizarHandler(w http.ResponseWriter, r *http.Request) {
	var input produtoservice.ProdutoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	err := h.Service.Atualizar(r.Context(), id, input)
	h.handleServiceResponse(w, r, map[string]string{"id": id}, err, http.StatusOK)
}

// DesativarHandler lida com DELETE /v1/produtos/{id}.
func (h *Handler) DesativarHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Desativar(r.Context(), r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
