package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "dresshire-backend/internal/api/http"
	"dresshire-backend/internal/availability"
	"dresshire-backend/internal/booking"
	"dresshire-backend/internal/clock"
	"dresshire-backend/internal/config"
	"dresshire-backend/internal/deposit"
	"dresshire-backend/internal/lifecycle"
	"dresshire-backend/internal/logger"
	"dresshire-backend/internal/notify"
	"dresshire-backend/internal/payments"
	"dresshire-backend/internal/repository/postgres"
	"dresshire-backend/internal/security"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Dresshire Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db, cfg.Booking.LockTimeoutMS)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize notification channels
	channels := notify.Multi{notify.Log{}, notify.NewStoreNotifier(store.Repos().Notifications)}
	if cfg.SendGrid.Enabled {
		logger.Info("SendGrid notifications enabled", "ops_email", cfg.SendGrid.OpsEmail)
		channels = append(channels, notify.NewEmailNotifier(
			cfg.SendGrid.APIKey,
			cfg.SendGrid.FromEmail,
			cfg.SendGrid.FromName,
			cfg.SendGrid.OpsEmail,
		))
	}

	// Initialize core engine
	clk := clock.System()
	index := availability.NewIndex()
	engine := booking.NewEngine(store, index, clk, channels, cfg.Booking.MinLeadDays)
	machine := lifecycle.NewMachine(store, index, deposit.DefaultPolicy(), clk, channels)
	reconciler := payments.NewReconciler(store, machine, clk, channels, int32(cfg.Payments.RetryFlagThreshold))

	// Initialize HTTP handlers
	rentalHandler := httpapi.NewRentalHandler(engine, machine)
	productHandler := httpapi.NewProductHandler(store.Repos().Products)
	notificationHandler := httpapi.NewNotificationHandler(store.Repos().Notifications)
	paymentHandler := httpapi.NewPaymentHandler(reconciler)
	webhookHandler := httpapi.NewPaymentWebhookHandler(reconciler, cfg.Payments.WebhookSecret)
	router := httpapi.NewRouter(rentalHandler, productHandler, notificationHandler, paymentHandler, webhookHandler, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
