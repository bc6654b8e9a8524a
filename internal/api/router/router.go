package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"restoque/internal/api/dashboard"
	"restoque/internal/api/estoque"
	"restoque/internal/api/ficha"
	"restoque/internal/api/praca"
	"restoque/internal/api/produto"
	"restoque/internal/api/separacao"
	"restoque/internal/api/solicitacao"
	"restoque/internal/api/user"
	"restoque/internal/pkg/cache"
	"restoque/internal/pkg/middleware"
)

// Handlers agrupa os handlers já montados pela injeção de dependências do main.
type Handlers struct {
	Solicitacao *solicitacao.Handler
	Separacao   *separacao.Handler
	Estoque     *estoque.Handler
	Produto     *produto.Handler
	Praca       *praca.Handler
	Ficha       *ficha.Handler
	Dashboard   *dashboard.Handler
	User        *user.Handler
}

// Options carrega os middlewares globais do roteador.
type Options struct {
	TokenService         middleware.TokenService
	CacheClient          cache.Client
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	// Autenticação JWT: toda a API v1 exige Bearer token, exceto o login.
	auth := middleware.NewAuthMiddleware(opts.TokenService)

	// Health check e documentação
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// Identidade
	mux.HandleFunc("POST /v1/login", h.User.LoginHandler)
	mux.HandleFunc("POST /v1/usuarios", auth(h.User.RegisterHandler))

	// Solicitações
	mux.HandleFunc("POST /v1/solicitacoes", auth(h.Solicitacao.CriarHandler))
	mux.HandleFunc("GET /v1/solicitacoes", auth(h.Solicitacao.ListarHandler))
	mux.HandleFunc("GET /v1/solicitacoes/{id}", auth(h.Solicitacao.BuscarHandler))
	mux.HandleFunc("PUT /v1/solicitacoes/{id}", auth(h.Solicitacao.AtualizarHandler))
	mux.HandleFunc("DELETE /v1/solicitacoes/{id}", auth(h.Solicitacao.ExcluirHandler))
	mux.HandleFunc("POST /v1/solicitacoes/{id}/cancelar", auth(h.Solicitacao.CancelarHandler))
	mux.HandleFunc("POST /v1/solicitacoes/{id}/ajustes", auth(h.Estoque.AplicarAjustesHandler))
	mux.HandleFunc("GET /v1/solicitacoes/{id}/percentual", auth(h.Dashboard.PercentualHandler))

	// Separação e entrega por item
	mux.HandleFunc("POST /v1/itens/{id}/separacao/iniciar", auth(h.Separacao.IniciarSeparacaoHandler))
	mux.HandleFunc("POST /v1/itens/{id}/separacao/concluir", auth(h.Separacao.ConcluirSeparacaoHandler))
	mux.HandleFunc("POST /v1/itens/{id}/separacao/cancelar", auth(h.Separacao.CancelarSeparacaoHandler))
	mux.HandleFunc("POST /v1/itens/{id}/entrega/iniciar", auth(h.Separacao.IniciarEntregaHandler))
	mux.HandleFunc("POST /v1/itens/{id}/entrega/concluir", auth(h.Separacao.ConcluirEntregaHandler))

	// Razão de movimentações
	mux.HandleFunc("GET /v1/movimentacoes", auth(h.Estoque.ListarHandler))
	mux.HandleFunc("POST /v1/movimentacoes", auth(h.Estoque.RegistrarHandler))

	// Catálogo de produtos
	mux.HandleFunc("POST /v1/produtos", auth(h.Produto.CriarHandler))
	mux.HandleFunc("GET /v1/produtos", auth(h.Produto.ListarHandler))
	mux.HandleFunc("GET /v1/produtos/{id}", auth(h.Produto.BuscarHandler))
	mux.HandleFunc("PUT /v1/produtos/{id}", auth(h.Produto.AtualizarHandler))
	mux.HandleFunc("DELETE /v1/produtos/{id}", auth(h.Produto.DesativarHandler))

	// Praças de destino
	mux.HandleFunc("POST /v1/pracas", auth(h.Praca.CriarHandler))
	mux.HandleFunc("GET /v1/pracas", auth(h.Praca.ListarHandler))
	mux.HandleFunc("GET /v1/pracas/{id}", auth(h.Praca.BuscarHandler))
	mux.HandleFunc("PUT /v1/pracas/{id}", auth(h.Praca.AtualizarHandler))
	mux.HandleFunc("DELETE /v1/pracas/{id}", auth(h.Praca.ExcluirHandler))

	// Fichas técnicas
	mux.HandleFunc("POST /v1/fichas", auth(h.Ficha.CriarHandler))
	mux.HandleFunc("GET /v1/fichas", auth(h.Ficha.ListarHandler))
	mux.HandleFunc("GET /v1/fichas/{id}", auth(h.Ficha.BuscarHandler))
	mux.HandleFunc("PUT /v1/fichas/{id}", auth(h.Ficha.AtualizarHandler))
	mux.HandleFunc("DELETE /v1/fichas/{id}", auth(h.Ficha.ExcluirHandler))

	// Dashboard
	mux.HandleFunc("GET /v1/dashboard/resumo", auth(h.Dashboard.ResumoHandler))

	// Rate limiting global por IP, apoiado no Redis
	limited := middleware.RateLimiter(opts.CacheClient, opts.RateLimitMaxRequests, opts.RateLimitPeriod)(mux)

	return limited
}

// PingHandler é o health check do serviço.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
