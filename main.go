package main

import (
	"context"
	"embed"
	"log"
	"os"
	"os/signal"
	"syscall"

	"csvdash/internal"
	"csvdash/internal/config"
	"csvdash/internal/container"
	"csvdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

//go:embed ui/templates/** ui/static/*
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	if appConfig.Session.GeneratedSecret {
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	// Initialize web server
	server, err := ui.NewServer(appContainer, embeddedFiles)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
