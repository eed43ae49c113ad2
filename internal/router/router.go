package router

import (
	"time"

	"merchquote/internal/config"
	"merchquote/internal/handler"
	"merchquote/internal/infra"
	"merchquote/internal/middleware"
	"merchquote/internal/repository"
	"merchquote/internal/service"
	"merchquote/internal/session"
	"merchquote/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	storefront *infra.StorefrontClient,
	registry *session.Registry,
	dispatcher *worker.Dispatcher,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	operatorRepo := repository.NewOperatorRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	exportRepo := repository.NewExportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(operatorRepo, cfg)
	catalogSvc := service.NewCatalogService(storefront)
	quoteSvc := service.NewQuoteService(registry, storefront, quoteRepo)
	settingsSvc := service.NewSettingsService(settingsRepo)
	exportSvc := service.NewExportService(registry, settingsSvc, exportRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	operatorsH := handler.NewOperatorsHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	quotesH := handler.NewQuotesHandler(quoteSvc)
	exportsH := handler.NewExportsHandler(exportSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, storefront))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog — read-only proxy over the storefront
		catalog := v1.Group("/catalog")
		{
			catalog.GET("/products", catalogH.Search)
			catalog.GET("/products/:id", catalogH.GetProduct)
			catalog.POST("/products/:id/resolve", catalogH.ResolvePrice)
			catalog.GET("/addons", catalogH.ListAddons)
		}

		// Quote sessions — in-memory working state, any operator role
		sessions := v1.Group("/quotes/sessions")
		{
			sessions.POST("", quotesH.CreateSession)
			sessions.GET("/:sid", quotesH.GetSession)
			sessions.DELETE("/:sid", quotesH.DeleteSession)

			sessions.POST("/:sid/lines", quotesH.CommitLine)
			sessions.POST("/:sid/lines/addon", quotesH.CommitAddonLine)
			sessions.POST("/:sid/lines/manual", quotesH.CommitManualLine)
			sessions.PATCH("/:sid/lines/:lineID", quotesH.UpdateLine)
			sessions.DELETE("/:sid/lines/:lineID", quotesH.RemoveLine)
			sessions.DELETE("/:sid/lines", quotesH.ClearLines)

			sessions.PUT("/:sid/lines/:lineID/override", quotesH.OverrideLine)
			sessions.DELETE("/:sid/lines/:lineID/override", quotesH.ClearOverride)

			sessions.PATCH("/:sid/settings", quotesH.UpdateSettings)
			sessions.GET("/:sid/preview", exportsH.Preview)
			sessions.POST("/:sid/save", quotesH.Save)
		}

		// Saved quotes
		v1.GET("/quotes", quotesH.ListSaved)
		v1.GET("/quotes/:id", quotesH.GetSaved)
		v1.DELETE("/quotes/:id", middleware.RequireRole("admin"), quotesH.DeleteSaved)

		// Exports
		exports := v1.Group("/exports")
		{
			exports.POST("", exportsH.Enqueue)
			exports.GET("", exportsH.List)
			exports.GET("/:id", exportsH.Get)
			exports.GET("/:id/download", exportsH.Download)
		}

		// Settings — letterheads and quote defaults are admin-managed
		v1.GET("/settings/letterheads/:key", settingsH.GetLetterhead)
		v1.GET("/settings/defaults", settingsH.GetDefaults)
		settings := v1.Group("/settings", middleware.RequireRole("admin"))
		{
			settings.PUT("/letterheads/:key", settingsH.UpdateLetterhead)
			settings.PUT("/defaults", settingsH.UpdateDefaults)
		}

		// Operators — admin only
		operators := v1.Group("/operators", middleware.RequireRole("admin"))
		{
			operators.POST("", operatorsH.Create)
			operators.GET("", operatorsH.List)
			operators.PUT("/:id", operatorsH.Update)
			operators.DELETE("/:id", operatorsH.Deactivate)
			operators.PATCH("/:id/reactivate", operatorsH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
