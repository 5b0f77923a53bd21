package router

import (
	"log"

	"surveyhub/config"
	"surveyhub/internal/domain"
	"surveyhub/internal/handler"
	"surveyhub/internal/middleware"
	"surveyhub/internal/repository"
	"surveyhub/internal/service"
	"surveyhub/internal/ws"
	"surveyhub/pkg/provider"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine. It also
// returns the background poller so main can run it under its own context.
func Setup(cfg *config.Config, db *gorm.DB) (*gin.Engine, *service.Poller) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Webhook.PollfishSecret == "" {
			log.Fatalf("[router] POLLFISH_WEBHOOK_SECRET must be set in production")
		}
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	accountRepo := repository.NewProviderAccountRepository(db)
	surveyRepo := repository.NewCompletedSurveyRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	hub := ws.NewHub()

	// Provider gateways
	registry := provider.NewRegistry()
	registry.Register(domain.ProviderPollfish, provider.NewPollfishGateway(
		cfg.Providers.PollfishBaseURL,
		cfg.Providers.PollfishAPIKey,
		cfg.Providers.CallbackBaseURL,
	))
	registry.Register(domain.ProviderDynata, provider.NewStubGateway(domain.ProviderDynata))
	registry.Register(domain.ProviderLucid, provider.NewStubGateway(domain.ProviderLucid))
	registry.Register(domain.ProviderSurveyMonkey, provider.NewStubGateway(domain.ProviderSurveyMonkey))

	// Services
	emailSvc := service.NewEmailService(cfg.SMTP)
	authSvc := service.NewAuthService(cfg, userRepo, profileRepo, emailSvc)
	ledgerSvc := service.NewLedgerService(db)
	aggregatorSvc := service.NewAggregatorService(registry, accountRepo, surveyRepo, profileRepo)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, profileRepo, emailSvc, hub)
	poller := service.NewPoller(cfg.Poller, userRepo, aggregatorSvc, notifSvc)

	limiter := middleware.NewInMemoryRateLimiter()

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo, limiter)
	providerHandler := handler.NewProviderHandler(providerRepo, accountRepo, auditRepo, ledgerSvc)
	surveyHandler := handler.NewSurveyHandler(aggregatorSvc)
	meHandler := handler.NewMeHandler(userRepo, profileRepo, accountRepo, surveyRepo, transactionRepo, notificationRepo, ledgerSvc, notifSvc)
	webhookHandler := handler.NewPollfishWebhookHandler(cfg, accountRepo, auditRepo, ledgerSvc, notifSvc)
	healthHandler := handler.NewHealthHandler(db, &cfg.Health)

	authMw := middleware.AuthRequired(&cfg.JWT)
	loginLimitMw := middleware.RateLimit(limiter, "login", cfg.RateLimit.AuthMax, cfg.RateLimit.AuthWindow)
	webhookLimitMw := middleware.RateLimit(limiter, "webhook", cfg.RateLimit.WebhookMax, cfg.RateLimit.WebhookWindow)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", loginLimitMw, authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		api.GET("/providers", providerHandler.List)
		api.GET("/providers/:id/auth-url", authMw, providerHandler.AuthURL)

		api.GET("/surveys", authMw, surveyHandler.Available)
		api.GET("/surveys/:provider/:id/link", authMw, surveyHandler.Link)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.GET("/dashboard", meHandler.Dashboard)
			me.GET("/providers", providerHandler.Accounts)
			me.POST("/providers/:id/connect", providerHandler.Connect)
			me.DELETE("/providers/:id", providerHandler.Disconnect)
			me.GET("/surveys/completed", meHandler.CompletedSurveys)
			me.GET("/transactions", meHandler.Transactions)
			me.POST("/withdrawals", meHandler.RequestWithdrawal)
			me.GET("/notifications", meHandler.Notifications)
			me.PUT("/notifications/:id/read", meHandler.MarkNotificationRead)
		}
	}

	r.POST("/api/pollfish/webhook", webhookLimitMw, webhookHandler.Handle)
	r.GET("/ws/surveys", ws.UpgradeSurveyFeed(&cfg.JWT, hub))
	r.GET("/healthz", healthHandler.Check)

	return r, poller
}
