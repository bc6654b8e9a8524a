package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"restoque/config"
	"restoque/internal/pkg/cache"
	"restoque/internal/pkg/database"
	"restoque/internal/pkg/logger"
	"restoque/internal/pkg/token"
	"restoque/internal/pkg/validation"

	"restoque/internal/api/dashboard"
	"restoque/internal/api/estoque"
	"restoque/internal/api/ficha"
	"restoque/internal/api/praca"
	"restoque/internal/api/produto"
	"restoque/internal/api/router"
	"restoque/internal/api/separacao"
	"restoque/internal/api/solicitacao"
	"restoque/internal/api/user"

	"restoque/internal/repository/dashboardrepo"
	"restoque/internal/repository/ficharepo"
	"restoque/internal/repository/movimentacaorepo"
	"restoque/internal/repository/pracarepo"
	"restoque/internal/repository/produtorepo"
	"restoque/internal/repository/solicitacaorepo"
	"restoque/internal/repository/userrepo"

	"restoque/internal/service/ajusteservice"
	"restoque/internal/service/dashboardservice"
	"restoque/internal/service/fichaservice"
	"restoque/internal/service/pracaservice"
	"restoque/internal/service/produtoservice"
	"restoque/internal/service/separacaoservice"
	"restoque/internal/service/solicitacaoservice"
	"restoque/internal/service/userservice"
)

func main() {
	stdlog.Println("⚡ Inicializando serviço Restoque...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, as variáveis essenciais podem vir do ambiente (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// Infraestrutura: PostgreSQL e Redis
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	validator := validation.New()

	// Injeção de dependências: Repository -> Service -> Handler
	solicitacaoRepo := solicitacaorepo.NewSolicitacaoRepository(db, cfg.DBTimeout, log)
	movimentacaoRepo := movimentacaorepo.NewMovimentacaoRepository(db, cfg.DBTimeout, log)
	produtoRepo := produtorepo.NewProdutoRepository(db, cacheClient, cfg.DBTimeout, log)
	pracaRepo := pracarepo.NewPracaRepository(db, cfg.DBTimeout, log)
	fichaRepo := ficharepo.NewFichaRepository(db, cfg.DBTimeout, log)
	dashboardRepo := dashboardrepo.NewDashboardRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	solicitacaoSvc := solicitacaoservice.NewService(solicitacaoRepo, pracaRepo, validator, log)
	separacaoSvc := separacaoservice.NewService(solicitacaoRepo, validator, log)
	ajusteSvc := ajusteservice.NewService(movimentacaoRepo, validator, log)
	produtoSvc := produtoservice.NewService(produtoRepo, validator, log)
	pracaSvc := pracaservice.NewService(pracaRepo, log)
	fichaSvc := fichaservice.NewService(fichaRepo, validator, log)
	dashboardSvc := dashboardservice.NewService(dashboardRepo, cacheClient, cfg.CacheTTL, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, validator, log)
	log.Debug("Serviços inicializados.", nil)

	handlers := router.Handlers{
		Solicitacao: solicitacao.NewHandler(solicitacaoSvc, log),
		Separacao:   separacao.NewHandler(separacaoSvc, log),
		Estoque:     estoque.NewHandler(ajusteSvc, log),
		Produto:     produto.NewHandler(produtoSvc, log),
		Praca:       praca.NewHandler(pracaSvc, log),
		Ficha:       ficha.NewHandler(fichaSvc, log),
		Dashboard:   dashboard.NewHandler(dashboardSvc, log),
		User:        user.NewHandler(userSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	r := router.NewRouter(handlers, router.Options{
		TokenService:         tokenSvc,
		CacheClient:          cacheClient,
		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
		RateLimitPeriod:      cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Servidor Restoque ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
