// Package main initializes and starts the contact directory server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/nexoft/contacts/internal/config"
	"github.com/nexoft/contacts/internal/db"
	"github.com/nexoft/contacts/internal/logger"
	"github.com/nexoft/contacts/internal/repository"
	"github.com/nexoft/contacts/internal/server/handler/http"
	"github.com/nexoft/contacts/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Purge soft-deleted contacts in the background.
	db.StartSoftDeleteCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Wire repository, service and handlers.
	contactRepo := repository.NewPostgresContactRepository(postgresDB)
	directoryService := service.NewDirectoryService(contactRepo)
	contactHandler := &http.ContactHandler{Service: directoryService}

	// Build the router with middleware and routes.
	router := http.NewRouter(contactHandler, options.APIKey, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting directory server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
