package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/3PLWinner/veracore-sync/config"
	handler "github.com/3PLWinner/veracore-sync/internal/handler/http"
	"github.com/3PLWinner/veracore-sync/internal/logger"
	"github.com/3PLWinner/veracore-sync/internal/middleware"
	"github.com/3PLWinner/veracore-sync/internal/repository"
	"github.com/3PLWinner/veracore-sync/internal/repository/postgres"
	"github.com/3PLWinner/veracore-sync/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	token := service.NewJWTToken([]byte(cfg.JWTSecret))

	// dependency injection
	// user
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, token)
	userHandler := handler.NewUserHandler(authService)

	// work order
	orderRepo := repository.NewWorkOrderRepository(db)
	orderService := service.NewWorkOrderService(orderRepo)
	orderHandler := handler.NewWorkOrderHandler(orderService)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))
	router.Use(chimw.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Post("/api/user/register", userHandler.RegisterUser())
	router.Post("/api/user/login", userHandler.LoginUser())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Post("/api/workorders", orderHandler.CreateWorkOrder())
		group.Get("/api/workorders", orderHandler.ListWorkOrders())
		group.Get("/api/workorders/stats", orderHandler.GetStats())
		group.Get("/api/workorders/syncs", orderHandler.GetRecentSyncs())
		group.Patch("/api/workorders/{id}/status", orderHandler.UpdateStatus())
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}
}
