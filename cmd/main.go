/*
Package main is the entry point for the Ripple messaging core.

It loads configuration, initializes the global logging system, connects to
MongoDB, wires the connection registry, relationship/group/message services,
and fan-out dispatcher together, and runs the HTTP server with graceful
shutdown on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ripple/internal/app/db"
	"ripple/internal/app/dispatch"
	"ripple/internal/app/group"
	"ripple/internal/app/message"
	"ripple/internal/app/registry"
	"ripple/internal/app/relationship"
	"ripple/internal/configs"
	"ripple/internal/handler"
	"ripple/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the system of record
	database, err := db.Connect(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logx.Fatal(err, "Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Disconnect(database); err != nil {
			logx.Error(err, "Failed to disconnect from MongoDB")
		}
	}()

	// Wire the live-delivery core
	reg := registry.NewRegistry()
	dispatcher := dispatch.New(reg)

	deps := &handler.AppDeps{
		Config:        cfg,
		Registry:      reg,
		Dispatcher:    dispatcher,
		Relationships: relationship.NewService(relationship.NewMongoStore(database)),
		Groups:        group.NewService(group.NewMongoStore(database)),
		Messages:      message.NewMongoStore(database),
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Ripple server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	reg.Shutdown()

	logx.Info("Server gracefully stopped.")
}
