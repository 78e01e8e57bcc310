package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enaran74/defrag-tracker/internal/config"
	"github.com/enaran74/defrag-tracker/internal/database"
	"github.com/enaran74/defrag-tracker/internal/handlers"
	"github.com/enaran74/defrag-tracker/internal/holidays"
	"github.com/enaran74/defrag-tracker/internal/logger"
	"github.com/enaran74/defrag-tracker/internal/middleware"
	"github.com/enaran74/defrag-tracker/internal/repository"
	"github.com/enaran74/defrag-tracker/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting Defrag Tracker API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Wire up the domain: calendar source -> holiday engine, store ->
	// property and ledger services.
	calendarClient := holidays.NewCalendarClient(cfg.Holiday.BaseURL, cfg.Holiday.FetchTimeout)
	engine := holidays.NewEngine(calendarClient, log)

	store := repository.NewStore(db)
	propertyService := services.NewPropertyService(store, log)
	ledgerService := services.NewLedgerService(store, engine, log,
		cfg.Holiday.WindowDays, cfg.Ledger.TransitionTimeout)

	propertyHandler := handlers.NewPropertyHandler(propertyService)
	batchHandler := handlers.NewBatchHandler(ledgerService)
	moveHandler := handlers.NewMoveHandler(ledgerService)
	holidayHandler := handlers.NewHolidayHandler(engine, cfg.Holiday.WindowDays)

	v1 := router.Group("/api/v1")
	{
		properties := v1.Group("/properties")
		{
			properties.POST("", propertyHandler.Ingest)
			properties.POST("/classify", propertyHandler.ClassifySweep)
			properties.GET("/:code", propertyHandler.Get)
			properties.POST("/:code/deactivate", propertyHandler.Deactivate)
			properties.GET("/:code/batches", batchHandler.ListByProperty)
		}

		batches := v1.Group("/batches")
		{
			batches.POST("", batchHandler.Create)
			batches.GET("/:id", batchHandler.Get)
		}

		moves := v1.Group("/moves")
		{
			moves.GET("", moveHandler.List)
			moves.GET("/:id", moveHandler.Get)
			moves.POST("/:id/transition", moveHandler.Transition)
		}

		v1.GET("/holidays", holidayHandler.ForwardPeriods)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
