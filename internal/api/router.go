package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/flowsuit/flowsuit-api/docs"
	"github.com/flowsuit/flowsuit-api/internal/api/handler"
	"github.com/flowsuit/flowsuit-api/internal/api/middleware"
	"github.com/flowsuit/flowsuit-api/internal/core/service"
	"github.com/flowsuit/flowsuit-api/internal/infrastructure/config"
	mongodb "github.com/flowsuit/flowsuit-api/internal/infrastructure/db/mongo"
	redisdb "github.com/flowsuit/flowsuit-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("flowsuit"))

	// --- Repositories ---
	authRepo := mongodb.NewAuthRepository(db)
	clientRepo := mongodb.NewClientRepository(db)
	proposalRepo := mongodb.NewProposalRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	milestoneRepo := mongodb.NewMilestoneRepository(db)
	tokenStore := redisdb.NewTokenStore(rdb)

	// --- Services ---
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour)
	clientService := service.NewClientService(clientRepo, log)
	proposalService := service.NewProposalService(proposalRepo, projectRepo, milestoneRepo, clientRepo, tokenStore, cfg.BaseURL, log)
	projectService := service.NewProjectService(projectRepo, log)
	milestoneService := service.NewMilestoneService(milestoneRepo, projectRepo, log)
	dashboardService := service.NewDashboardService(clientRepo, proposalRepo, projectRepo, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	proposalHandler := handler.NewProposalHandler(proposalService)
	projectHandler := handler.NewProjectHandler(projectService, milestoneService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	shareHandler := handler.NewShareHandler(proposalService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)
	if cfg.DevFallbackEnabled() {
		authMiddleware = middleware.DevOwner(cfg.DevOwnerID, log, authMiddleware)
	}

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Public magic link surface (the token is the credential) ---
	e.GET("/p/:token", shareHandler.View)
	e.POST("/p/:token/accept", shareHandler.Accept)

	// --- Authenticated API ---
	v1 := e.Group("/v1", authMiddleware)
	v1.POST("/clients", clientHandler.Create)
	v1.GET("/clients", clientHandler.List)
	v1.POST("/proposals", proposalHandler.Create)
	v1.GET("/proposals", proposalHandler.List)
	v1.GET("/proposals/:id", proposalHandler.Get)
	v1.POST("/proposals/:id/send", proposalHandler.Send)
	v1.PATCH("/projects/:id/status", projectHandler.UpdateStatus)
	v1.PATCH("/milestones/:id/paid", projectHandler.MarkMilestonePaid)
	v1.GET("/dashboard", dashboardHandler.Summary)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
