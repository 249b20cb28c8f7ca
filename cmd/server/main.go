package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/sharyyoru/medical-crm/internal/api"
	"github.com/sharyyoru/medical-crm/internal/auth"
	"github.com/sharyyoru/medical-crm/internal/config"
	"github.com/sharyyoru/medical-crm/internal/logging"
	"github.com/sharyyoru/medical-crm/internal/mcp"
	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/internal/scheduler"
	"github.com/sharyyoru/medical-crm/internal/services"
	"github.com/sharyyoru/medical-crm/internal/tls"
)

func main() {
	ctx := context.Background()

	logger := logging.NewLogger()

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		log.Fatalf("Configuration loading failed: %v", err)
	}
	logger.Info("Configuration loaded",
		"environment", cfg.Environment,
		"config_file", viper.ConfigFileUsed(),
	)

	logger.Info("Starting Medical CRM Service")

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer dbPool.Close()

	logger.Info("Database connected")

	repo := repository.NewPostgresStore(dbPool)

	completions := services.NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	workflowService := services.NewWorkflowService(repo, logger)
	chatService := services.NewChatService(completions)
	emailService := services.NewEmailService(repo, completions)
	crisalixClient := services.NewCrisalixClient(cfg.Crisalix.BaseURL)

	logger.Info("Service layer initialized")

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("medical-crm"))

	authz, err := auth.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize auth", "error", err)
		log.Fatalf("auth initialization failed: %v", err)
	}

	e.GET("/login", echo.WrapHandler(http.HandlerFunc(authz.LoginHandler)))
	e.GET("/auth/callback", echo.WrapHandler(http.HandlerFunc(authz.CallbackHandler)))
	e.GET("/logout", echo.WrapHandler(http.HandlerFunc(authz.LogoutHandler)))

	server := api.NewServer(repo, workflowService, chatService, emailService, crisalixClient, logger)
	e.GET("/health", server.HandleHealth)

	apiGroup := e.Group("/api/v1")
	apiGroup.Use(echo.WrapMiddleware(authz.RequireAuth))
	registerRoutes(apiGroup, server)

	logger.Info("REST API handlers mounted")

	mcpServer := mcp.NewServer(repo, workflowService)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enable {
		sched = scheduler.New(repo, logger)
		if err := sched.Start(); err != nil {
			logger.Error("failed to start draft scheduler", "error", err)
			log.Fatalf("scheduler start failed: %v", err)
		}
	}

	addr := ":8080"
	if cfg.TLS.Enable {
		addr = ":8443"
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- httpServer.ListenAndServe()
				return
			}
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert", "error", err)
					}
				}
			}
			serverErrors <- httpServer.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- httpServer.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		if sched != nil {
			sched.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := httpServer.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}

func registerRoutes(g *echo.Group, s *api.Server) {
	g.GET("/stages", s.ListStages)

	g.GET("/workflows", s.ListWorkflows)
	g.PUT("/workflows", s.PutWorkflow)
	g.GET("/workflows/:id", s.GetWorkflow)
	g.DELETE("/workflows/:id", s.DeleteWorkflow)

	g.POST("/events/deal-stage-changed", s.HandleStageChangeEvent)
	g.GET("/drafts", s.ListDrafts)

	g.GET("/catalog/categories", s.ListCategories)
	g.POST("/catalog/categories", s.CreateCategory)
	g.PUT("/catalog/categories/:id", s.UpdateCategory)
	g.DELETE("/catalog/categories/:id", s.DeleteCategory)
	g.GET("/catalog/services", s.ListServices)
	g.POST("/catalog/services", s.CreateService)
	g.PUT("/catalog/services/:id", s.UpdateService)
	g.DELETE("/catalog/services/:id", s.DeleteService)

	g.GET("/patients", s.ListPatients)
	g.POST("/patients", s.CreatePatient)
	g.POST("/patients/generate-email", s.GenerateEmail)
	g.GET("/patients/:id", s.GetPatient)
	g.PUT("/patients/:id", s.UpdatePatient)

	g.GET("/appointments", s.ListAppointments)
	g.POST("/appointments", s.CreateAppointment)

	g.POST("/chat", s.HandleChat)
	g.POST("/crisalix/patients", s.CreateCrisalixPatient)
	g.GET("/users", s.ListUsers)
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
