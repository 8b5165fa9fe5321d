package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"cropwise/internal"
	"cropwise/internal/config"
	"cropwise/internal/container"
	"cropwise/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	c, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Shutdown(context.Background())

	server := ui.NewServer(ui.Deps{
		Selector: c.Selector,
		Workflow: c.Workflow,
		Cache:    c.Cache,
		Chat:     c.Chat,
		Reports:  c.Reports,
		Activity: c.ActivityRepo,
		Logger:   logger,
	})

	if err := server.Start(appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
