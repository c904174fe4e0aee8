package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creditline/backend/internal/config"
	"github.com/creditline/backend/internal/http/handlers"
	"github.com/creditline/backend/internal/http/middleware"
	"github.com/creditline/backend/internal/observability"
	"github.com/creditline/backend/internal/version"
	"github.com/creditline/backend/internal/ws"
)

type Dependencies struct {
	Pinger          handlers.Pinger
	CustomerHandler *handlers.CustomerHandler
	LoanHandler     *handlers.LoanHandler
	WSHandler       *ws.Handler
	Metrics         *observability.Metrics
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestBodyLimit(cfg.MaxRequestBodyBytes))
	r.Use(func(c *gin.Context) {
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
		)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.CustomerHandler != nil {
		r.POST("/register", deps.CustomerHandler.Register)
	}
	if deps.LoanHandler != nil {
		r.POST("/check-eligibility", deps.LoanHandler.CheckEligibility)
		r.POST("/create-loan", deps.LoanHandler.CreateLoan)
		r.GET("/view-loan/:loanId", deps.LoanHandler.ViewLoan)
		r.GET("/view-loans/:customerId", deps.LoanHandler.ViewCustomerLoans)
	}
	if deps.WSHandler != nil {
		r.GET("/v1/ws", deps.WSHandler.HandleWebSocket)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
