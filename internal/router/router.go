package router

import (
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/config"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/handler"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/infra"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/middleware"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/service"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New monta todas as dependências e devolve o engine Gin configurado.
// Grafo: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Cadeia global de middleware (ordem importa)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min por IP

	// ── Repositórios ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	movRepo := repository.NewMovimentacaoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	fornecedorRepo := repository.NewFornecedorRepository(db)

	// ── Serviços ─────────────────────────────────────────────────────────────
	// Dispatcher — injetado nos serviços que enfileiram jobs assíncronos
	dispatcher := worker.NewDispatcher(rdb)
	carrinhoStore := service.NewRedisCarrinhoStore(rdb, time.Duration(cfg.CarrinhoTTLHoras)*time.Hour)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	estoqueSvc := service.NewEstoqueService(movRepo, produtoRepo, dispatcher)
	produtoSvc := service.NewProdutoService(produtoRepo, movRepo, estoqueSvc)
	carrinhoSvc := service.NewCarrinhoService(carrinhoStore, produtoRepo)
	vendaSvc := service.NewVendaService(carrinhoStore, produtoRepo, movRepo, clienteRepo, dispatcher)
	clienteSvc := service.NewClienteService(clienteRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	fornecedorSvc := service.NewFornecedorService(fornecedorRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc)
	movimentacoesH := handler.NewMovimentacoesHandler(estoqueSvc)
	pdvH := handler.NewPDVHandler(carrinhoSvc, vendaSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	fornecedoresH := handler.NewFornecedoresHandler(fornecedorSvc)

	// ── Rotas ────────────────────────────────────────────────────────────────

	// Públicas
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protegidas
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Papéis: operador, gerente, administrador — declarados por endpoint
		todos := middleware.RequireRole("operador", "gerente", "administrador")
		gestao := middleware.RequireRole("gerente", "administrador")
		admin := middleware.RequireRole("administrador")

		// Produtos — leitura para todos (o PDV consulta o catálogo)
		v1.GET("/produtos", todos, produtosH.Listar)
		v1.GET("/produtos/vencendo", gestao, produtosH.ListarVencendo)
		v1.GET("/produtos/:id", todos, produtosH.ObterPorID)
		v1.GET("/produtos/barras/:codigo", todos, produtosH.ObterPorCodigoBarras)
		prods := v1.Group("/produtos", gestao)
		{
			prods.POST("", produtosH.Criar)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.DELETE("/:id", produtosH.Desativar)
			prods.PATCH("/:id/reativar", produtosH.Reativar)
		}
		// Exclusão física só para administrador; recusada quando há histórico
		v1.DELETE("/produtos/:id/definitivo", admin, produtosH.Excluir)

		// Ledger de movimentações
		v1.GET("/movimentacoes", todos, movimentacoesH.Listar)
		v1.POST("/movimentacoes", gestao, movimentacoesH.Registrar)
		v1.DELETE("/movimentacoes/:id", gestao, movimentacoesH.Estornar)

		// PDV — ciclo de carrinho e fechamento
		pdv := v1.Group("/pdv", todos)
		{
			pdv.POST("/sessoes", pdvH.AbrirSessao)
			pdv.GET("/sessoes/:sessao_id", pdvH.Obter)
			pdv.POST("/sessoes/:sessao_id/itens", pdvH.AdicionarItem)
			pdv.PUT("/sessoes/:sessao_id/itens/:produto_id", pdvH.DefinirQuantidade)
			pdv.PUT("/sessoes/:sessao_id/itens/:produto_id/desconto", pdvH.DefinirDescontoItem)
			pdv.DELETE("/sessoes/:sessao_id/itens/:produto_id", pdvH.RemoverItem)
			pdv.PUT("/sessoes/:sessao_id/desconto", pdvH.DefinirDescontoGeral)
			pdv.PUT("/sessoes/:sessao_id/pagamento", pdvH.DefinirPagamento)
			pdv.DELETE("/sessoes/:sessao_id", pdvH.Limpar)
			pdv.POST("/sessoes/:sessao_id/finalizar", pdvH.Finalizar)
		}

		// Cadastros de apoio
		v1.GET("/clientes", todos, clientesH.Listar)
		v1.GET("/clientes/:id", todos, clientesH.ObterPorID)
		clientes := v1.Group("/clientes", gestao)
		{
			clientes.POST("", clientesH.Criar)
			clientes.PUT("/:id", clientesH.Atualizar)
			clientes.DELETE("/:id", clientesH.Desativar)
		}

		v1.GET("/categorias", todos, categoriasH.Listar)
		categorias := v1.Group("/categorias", admin)
		{
			categorias.POST("", categoriasH.Criar)
			categorias.PUT("/:id", categoriasH.Atualizar)
			categorias.DELETE("/:id", categoriasH.Desativar)
		}

		fornecedores := v1.Group("/fornecedores", gestao)
		{
			fornecedores.POST("", fornecedoresH.Criar)
			fornecedores.GET("", fornecedoresH.Listar)
			fornecedores.GET("/:id", fornecedoresH.ObterPorID)
			fornecedores.PUT("/:id", fornecedoresH.Atualizar)
			fornecedores.DELETE("/:id", fornecedoresH.Desativar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
		}
	}

	// Swagger UI — só fora de produção
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
