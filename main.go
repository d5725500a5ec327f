package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contact-relay/pkg/api"
	"contact-relay/pkg/clients/crm"
	"contact-relay/pkg/config"
	"contact-relay/pkg/logger"
	"contact-relay/pkg/middleware"
	"contact-relay/pkg/services"
	"contact-relay/pkg/validation"
)

func main() {
	// Initialize configuration
	cfg, warnings, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zlog := logger.New(cfg.LoggerLevel, cfg.Environment)
	defer func() { _ = zlog.Sync() }()
	for _, w := range warnings {
		zlog.Warn(w)
	}

	// Initialize API clients
	crmClient := crm.NewClient(cfg.CRMAPIEndpoint, crm.WithTimeout(cfg.CRMTimeout))

	// Initialize services
	validator := validation.New(cfg.FormSubjects)
	relayService := services.NewRelayService(crmClient, zlog)
	intakeService := services.NewIntakeService(validator, cfg, zlog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(zlog), middleware.Logger(zlog))
	router.Use(middleware.CORS(cfg.AllowedOrigin))

	// Initialize handlers and register routes
	handlers := api.NewHandlers(relayService, intakeService, validator, cfg, zlog)
	handlers.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("form", cfg.FormName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("error starting server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RelayTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("error shutting down server", zap.Error(err))
	}
	if err := handlers.Wait(ctx); err != nil {
		zlog.Error("background relays still running at exit", zap.Error(err))
	}
	zlog.Info("server stopped")
}
