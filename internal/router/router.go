package router

import (
	"context"
	"time"

	"klikpos/internal/config"
	"klikpos/internal/handler"
	"klikpos/internal/infra"
	"klikpos/internal/middleware"
	"klikpos/internal/model"
	"klikpos/internal/money"
	"klikpos/internal/repository"
	"klikpos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide handles the router wires into services.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	// Queue receives notification jobs; nil disables automatic notifications.
	Queue service.JobQueue
	// WhatsAppCB is reported by /health.
	WhatsAppCB *infra.CircuitBreaker
	// EmailEnabled switches the receipt e-mail job on sale.
	EmailEnabled bool
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the background cleanup of the rate limiters.
func New(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})
	loginLimiter := middleware.NewLoginRateLimiter()
	apiLimiter.StartCleanup(ctx, 5*time.Minute)
	loginLimiter.StartCleanup(ctx, 5*time.Minute)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(deps.DB)
	profileRepo := repository.NewPOSProfileRepository(deps.DB)
	sessionRepo := repository.NewSessionRepository(deps.DB)
	invoiceRepo := repository.NewInvoiceRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	profileSvc := service.NewProfileService(profileRepo)
	sessionSvc := service.NewSessionService(sessionRepo, invoiceRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, sessionRepo, profileRepo, deps.Queue, service.InvoiceConfig{
		BaseCurrency: cfg.BaseCurrency,
		Policy: money.Policy{
			Precision: cfg.CurrencyPrecision,
			Epsilon:   cfg.Epsilon(),
			Tolerance: cfg.Tolerance(),
		},
		WhatsApp: cfg.WhatsAppEnabled && deps.Queue != nil,
		Email:    deps.EmailEnabled && deps.Queue != nil,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	profileH := handler.NewPOSProfileHandler(profileSvc)
	sessionsH := handler.NewSessionsHandler(sessionSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.Redis, deps.WhatsAppCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleAdmin)
	privileged := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/open", anyRole, sessionsH.Open)
			sessions.GET("/is-open", anyRole, sessionsH.IsOpen)
			sessions.GET("/active", anyRole, sessionsH.Active)
			sessions.GET("/history", privileged, sessionsH.History)
			sessions.POST("/:id/close", anyRole, sessionsH.Close)
			sessions.GET("/:id/report", anyRole, sessionsH.Report)
		}

		invoices := v1.Group("/invoices", anyRole)
		{
			invoices.POST("/totals", invoicesH.Totals)
			invoices.POST("", invoicesH.Create)
			invoices.GET("", invoicesH.List)
			invoices.GET("/:id", invoicesH.Get)
			invoices.GET("/:id/pdf", invoicesH.PDF)
			invoices.POST("/:id/submit", invoicesH.Submit)
			invoices.POST("/:id/return", invoicesH.Return)
			invoices.POST("/:id/whatsapp", invoicesH.WhatsApp)
		}

		profile := v1.Group("/pos-profile", anyRole)
		{
			profile.GET("", profileH.Current)
			profile.GET("/payment-modes", profileH.PaymentModes)
		}

		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
