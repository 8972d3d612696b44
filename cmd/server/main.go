package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/forgo/bastion/internal/command"
	"github.com/forgo/bastion/internal/config"
	"github.com/forgo/bastion/internal/database"
	"github.com/forgo/bastion/internal/events"
	"github.com/forgo/bastion/internal/jobs"
	"github.com/forgo/bastion/internal/model"
	"github.com/forgo/bastion/internal/repository"
	"github.com/forgo/bastion/internal/service"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize persistence gateway
	gateway := repository.NewGateway(db)

	// Initialize background persistence workers
	persister := jobs.NewPersister(cfg.Persistence.Workers, cfg.Persistence.QueueSize, logger)
	persister.Start()

	// Initialize tier catalog
	catalog, err := model.NewTierCatalog(model.DefaultTiers())
	if err != nil {
		slog.Error("invalid tier catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize event bus for extension hooks
	bus := events.NewBus()

	// Initialize guild registry
	registry := service.NewRegistry(service.RegistryConfig{
		Gateway:      gateway,
		Catalog:      catalog,
		Tasks:        persister,
		Logger:       logger,
		WriteThrough: cfg.WriteThrough(),
	})
	if err := registry.LoadAll(ctx); err != nil {
		slog.Error("failed to load guilds", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize audit log manager
	audit := service.NewAuditLogManager(service.AuditConfig{
		Gateway:    gateway,
		Tasks:      persister,
		Logger:     logger,
		MaxEntries: cfg.Audit.MaxEntries,
	})

	// Initialize bank service. The dev economy stands in for the real
	// currency provider bridge.
	bank := service.NewBankService(service.BankConfig{
		Registry:         registry,
		Economy:          newDevEconomy(decimal.NewFromInt(1000)),
		Events:           bus,
		Audit:            audit,
		Logger:           logger,
		AuditWithdrawals: cfg.Bank.AuditWithdrawals,
	})

	// Initialize command facade for the external dispatcher
	bankCommands := command.NewBank(registry, bank)

	// Periodic dirty-guild flusher for write-behind mode
	var flusher *jobs.Flusher
	if !cfg.WriteThrough() {
		flusher = jobs.NewFlusher(registry, cfg.Registry.FlushInterval, logger)
		flusher.Start()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newRouter(registry, bankCommands),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("write_mode", cfg.Registry.WriteMode),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	if flusher != nil {
		flusher.Stop()
	}
	if err := registry.Flush(shutdownCtx); err != nil {
		slog.Error("final flush failed", slog.String("error", err.Error()))
	}
	persister.Stop()

	slog.Info("server exited")
}
