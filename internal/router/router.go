package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "farerules/docs"
	"farerules/internal/config"
	"farerules/internal/handler"
	"farerules/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	logger *zap.Logger,
	ticketH *handler.TicketHandler,
	quoteH *handler.QuoteHandler,
	ruleH *handler.RuleHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public read routes
	v1.GET("/rules", ruleH.List)
	v1.GET("/rules/export", ruleH.Export)
	v1.POST("/quote", quoteH.Quote)

	// Protected routes - require the ingest secret
	protected := v1.Group("")
	protected.Use(middleware.SecretAuth(cfg.Ingest.Secret, cfg.Ingest.SecretHash))

	// Ticket routes are rate limited before the secret is checked
	limiter := middleware.RateLimit(middleware.NewLimiter(cfg.Ingest.RatePerSec, cfg.Ingest.RateBurst))
	tickets := v1.Group("/tickets")
	tickets.Use(limiter, middleware.SecretAuth(cfg.Ingest.Secret, cfg.Ingest.SecretHash))
	tickets.POST("/ingest", ticketH.Ingest)
	tickets.POST("/text", ticketH.Text)
	tickets.POST("/parse", ticketH.Parse)

	protected.POST("/rules/import", ruleH.Import)

	return r
}
